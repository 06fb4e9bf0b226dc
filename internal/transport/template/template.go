package template

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	"github.com/alanyang/prompt-hub/internal/service/library"
	"github.com/alanyang/prompt-hub/internal/transport/respond"
)

// Register mounts local template authoring on /templates.
func Register(rg *gin.RouterGroup, lib *library.Service) {
	rg.GET("", func(c *gin.Context) { c.JSON(http.StatusOK, lib.CustomPrompts()) })
	rg.POST("", createTemplate(lib))
	rg.PUT("/:id", updateTemplate(lib))
	rg.DELETE("/:id", deleteTemplate(lib))
}

func createTemplate(lib *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p domainprompt.Prompt
		if err := c.ShouldBindJSON(&p); err != nil {
			respond.BadRequest(c, err.Error())
			return
		}
		created, err := lib.CreateTemplate(c.Request.Context(), p)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func updateTemplate(lib *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p domainprompt.Prompt
		if err := c.ShouldBindJSON(&p); err != nil {
			respond.BadRequest(c, err.Error())
			return
		}
		p.ID = c.Param("id")
		updated, err := lib.UpdateTemplate(c.Request.Context(), p)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func deleteTemplate(lib *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := lib.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
			respond.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
