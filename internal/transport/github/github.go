package github

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/prompt-hub/internal/service/gistsync"
	"github.com/alanyang/prompt-hub/internal/transport/respond"
)

// Register mounts gist sync on /github.
func Register(rg *gin.RouterGroup, svc *gistsync.Service) {
	rg.POST("/login", login(svc))
	rg.POST("/logout", logout(svc))
	rg.GET("/status", status(svc))
	rg.GET("/gists", listGists(svc))
	rg.PUT("/gist", setGist(svc))
	rg.POST("/export", exportGist(svc))
	rg.POST("/import", importGist(svc))
}

type loginReq struct {
	Token string `json:"token" binding:"required"`
}

func login(svc *gistsync.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginReq
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err.Error())
			return
		}
		if err := svc.Login(c.Request.Context(), req.Token); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, svc.Status())
	}
}

func logout(svc *gistsync.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Logout(c.Request.Context()); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, svc.Status())
	}
}

// status revalidates a token close to expiry before answering.
func status(svc *gistsync.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc.CheckTokenValidity(c.Request.Context())
		c.JSON(http.StatusOK, svc.Status())
	}
}

func listGists(svc *gistsync.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		gists, err := svc.ListGists(c.Request.Context())
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gists)
	}
}

type setGistReq struct {
	GistID string `json:"gistId" binding:"required"`
}

func setGist(svc *gistsync.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setGistReq
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err.Error())
			return
		}
		if err := svc.SetGistID(c.Request.Context(), req.GistID); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, svc.Status())
	}
}

func exportGist(svc *gistsync.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		lastSynced, err := svc.Export(c.Request.Context())
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"lastSynced": lastSynced, "gistId": svc.GistID()})
	}
}

func importGist(svc *gistsync.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		lastSynced, err := svc.Import(c.Request.Context())
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"lastSynced": lastSynced})
	}
}
