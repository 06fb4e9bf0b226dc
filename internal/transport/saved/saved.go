package saved

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	"github.com/alanyang/prompt-hub/internal/service/analytics"
	"github.com/alanyang/prompt-hub/internal/service/export"
	"github.com/alanyang/prompt-hub/internal/service/library"
	"github.com/alanyang/prompt-hub/internal/transport/respond"
)

// Register mounts saved prompt management and export on /saved.
func Register(rg *gin.RouterGroup, lib *library.Service, tracker *analytics.Service) {
	rg.GET("", func(c *gin.Context) { c.JSON(http.StatusOK, lib.SavedPrompts()) })
	rg.POST("", savePrompt(lib))
	rg.GET("/tags", func(c *gin.Context) { c.JSON(http.StatusOK, lib.AllSavedTags()) })
	rg.GET("/export", exportAll(lib, tracker))
	rg.PUT("/:id", updatePrompt(lib))
	rg.DELETE("/:id", removePrompt(lib))
	rg.PUT("/:id/folder", movePrompt(lib))
	rg.GET("/:id/export", exportOne(lib, tracker))
}

func savePrompt(lib *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p domainprompt.Prompt
		if err := c.ShouldBindJSON(&p); err != nil {
			respond.BadRequest(c, err.Error())
			return
		}
		saved, err := lib.SavePrompt(c.Request.Context(), p)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, saved)
	}
}

func updatePrompt(lib *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p domainprompt.Prompt
		if err := c.ShouldBindJSON(&p); err != nil {
			respond.BadRequest(c, err.Error())
			return
		}
		p.ID = c.Param("id")
		updated, err := lib.UpdateSavedPrompt(c.Request.Context(), p)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func removePrompt(lib *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := lib.RemoveSavedPrompt(c.Request.Context(), c.Param("id")); err != nil {
			respond.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type moveReq struct {
	// FolderID is empty to take the prompt out of its folder.
	FolderID string `json:"folderId"`
}

func movePrompt(lib *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req moveReq
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err.Error())
			return
		}
		p, err := lib.MovePromptToFolder(c.Request.Context(), c.Param("id"), req.FolderID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func exportAll(lib *library.Service, tracker *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		format := export.Format(c.DefaultQuery("format", string(export.FormatJSON)))
		doc, err := export.Prompts(lib.SavedPrompts(), format)
		if err != nil {
			respond.Error(c, err)
			return
		}
		tracker.TrackExport(c.Request.Context(), "export_saved", string(format))
		attach(c, doc)
	}
}

func exportOne(lib *library.Service, tracker *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := lib.Prompt(c.Param("id"))
		if err != nil {
			respond.Error(c, err)
			return
		}
		format := export.Format(c.DefaultQuery("format", string(export.FormatJSON)))
		doc, err := export.Prompt(p, format)
		if err != nil {
			respond.Error(c, err)
			return
		}
		tracker.TrackExport(c.Request.Context(), "export_prompt", string(format))
		attach(c, doc)
	}
}

func attach(c *gin.Context, doc export.Document) {
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, []byte(doc.Body))
}
