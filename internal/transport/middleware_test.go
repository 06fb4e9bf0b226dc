package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/alanyang/prompt-hub/internal/service/csrf"
)

type staticToken string

func (s staticToken) Validate(token string) bool { return token != "" && token == string(s) }

func newMiddlewareRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/x", ok)
	r.POST("/x", ok)
	r.DELETE("/x", ok)
	return r
}

func TestCORSMiddleware(t *testing.T) {
	r := newMiddlewareRouter(CORSMiddleware())

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), csrf.HeaderName)
}

func TestCSRFMiddleware(t *testing.T) {
	r := newMiddlewareRouter(CSRFMiddleware(staticToken("secret")))

	tests := []struct {
		name   string
		method string
		token  string
		want   int
	}{
		{name: "get without token", method: http.MethodGet, want: http.StatusOK},
		{name: "post without token", method: http.MethodPost, want: http.StatusForbidden},
		{name: "post wrong token", method: http.MethodPost, token: "guess", want: http.StatusForbidden},
		{name: "post with token", method: http.MethodPost, token: "secret", want: http.StatusOK},
		{name: "delete without token", method: http.MethodDelete, want: http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/x", nil)
			if tc.token != "" {
				req.Header.Set(csrf.HeaderName, tc.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
