package prompt

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	"github.com/alanyang/prompt-hub/internal/service/library"
	"github.com/alanyang/prompt-hub/internal/transport/respond"
)

// Register mounts the browse, render and rating endpoints on the api group.
// [SRP] HTTP handler only; the library does the work.
func Register(rg *gin.RouterGroup, lib *library.Service) {
	rg.GET("/prompts", listPrompts(lib))
	rg.POST("/prompts/refresh", refresh(lib))
	rg.GET("/prompts/:id", getPrompt(lib))
	rg.POST("/prompts/:id/render", render(lib))
	rg.POST("/prompts/:id/rating", rate(lib))
	rg.GET("/categories", func(c *gin.Context) { c.JSON(http.StatusOK, lib.Categories()) })
	rg.GET("/tags", func(c *gin.Context) { c.JSON(http.StatusOK, lib.Tags()) })
	rg.GET("/search", search(lib))
	rg.POST("/variables/extract", extractVariables(lib))
}

func listPrompts(lib *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := domainprompt.Filter{
			Search:   c.Query("q"),
			Category: c.Query("category"),
			Tags:     c.QueryArray("tag"),
		}
		c.JSON(http.StatusOK, lib.Filter(f))
	}
}

func getPrompt(lib *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := lib.Prompt(c.Param("id"))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func refresh(lib *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := lib.Refresh(c.Request.Context()); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, lib.Prompts())
	}
}

func search(lib *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				respond.BadRequest(c, "invalid limit")
				return
			}
			limit = n
		}
		hits, err := lib.Search(c.Request.Context(), c.Query("q"), limit)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, hits)
	}
}

type renderReq struct {
	Values map[string]string `json:"values"`
}

func render(lib *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req renderReq
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err.Error())
			return
		}
		content, err := lib.Render(c.Param("id"), req.Values)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"content": content})
	}
}

type rateReq struct {
	Rating *bool  `json:"rating" binding:"required"`
	UserID string `json:"userId"`
}

func rate(lib *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req rateReq
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err.Error())
			return
		}
		p, err := lib.Rate(c.Request.Context(), c.Param("id"), *req.Rating, req.UserID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

type extractReq struct {
	Content string `json:"content"`
}

func extractVariables(lib *library.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req extractReq
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err.Error())
			return
		}
		c.JSON(http.StatusOK, lib.ExtractVariables(req.Content))
	}
}
