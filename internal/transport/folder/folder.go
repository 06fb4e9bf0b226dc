package folder

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/prompt-hub/internal/service/library"
	"github.com/alanyang/prompt-hub/internal/transport/respond"
)

func Register(rg *gin.RouterGroup, lib *library.Service) {
	rg.GET("", func(c *gin.Context) { c.JSON(http.StatusOK, lib.Folders()) })
	rg.POST("", createFolder(lib))
	rg.DELETE("/:id", deleteFolder(lib))
}

type createFolderReq struct {
	Name string `json:"name" binding:"required"`
}

func createFolder(lib *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createFolderReq
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err.Error())
			return
		}
		f, err := lib.CreateFolder(c.Request.Context(), req.Name)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, f)
	}
}

// deleteFolder clears the folder from its prompts; the prompts stay.
func deleteFolder(lib *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := lib.DeleteFolder(c.Request.Context(), c.Param("id")); err != nil {
			respond.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
