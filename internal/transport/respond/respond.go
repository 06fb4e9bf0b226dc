package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	"github.com/alanyang/prompt-hub/internal/domain/snapshot"
	portgist "github.com/alanyang/prompt-hub/internal/port/gist"
	"github.com/alanyang/prompt-hub/internal/service/export"
	"github.com/alanyang/prompt-hub/internal/service/fault"
	"github.com/alanyang/prompt-hub/internal/service/gistsync"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{domainprompt.ErrNotFound, http.StatusNotFound},
	{domainprompt.ErrFolderNotFound, http.StatusNotFound},
	{portgist.ErrNotFound, http.StatusNotFound},
	{gistsync.ErrNothingToImport, http.StatusNotFound},
	{domainprompt.ErrFolderExists, http.StatusConflict},
	{domainprompt.ErrImmutable, http.StatusForbidden},
	{domainprompt.ErrInvalidVariableKind, http.StatusBadRequest},
	{domainprompt.ErrInvalidInput, http.StatusBadRequest},
	{snapshot.ErrInvalidSnapshot, http.StatusUnprocessableEntity},
	{export.ErrUnsupportedFormat, http.StatusBadRequest},
	{gistsync.ErrNotAuthenticated, http.StatusUnauthorized},
	{portgist.ErrUnauthorized, http.StatusUnauthorized},
	{gistsync.ErrNoGist, http.StatusConflict},
}

// Status maps err to an HTTP status code. Unknown errors are 500.
func Status(err error) int {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// Error writes err as {"error": ...}. A user-facing message, when the error
// carries one, is added as "message".
func Error(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	if msg := fault.UserMessage(err); msg != "" {
		body["message"] = msg
	}
	c.JSON(Status(err), body)
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
