package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/prompt-hub/internal/service/analytics"
	"github.com/alanyang/prompt-hub/internal/service/csrf"
	"github.com/alanyang/prompt-hub/internal/transport/respond"
)

// Register mounts /settings. csrfSvc may be nil when protection is off.
func Register(rg *gin.RouterGroup, tracker *analytics.Service, csrfSvc *csrf.Service) {
	rg.GET("/analytics", func(c *gin.Context) {
		c.JSON(http.StatusOK, tracker.Preferences(c.Request.Context()))
	})
	rg.PUT("/analytics", setAnalytics(tracker))
	rg.GET("/csrf", func(c *gin.Context) {
		if csrfSvc == nil {
			c.JSON(http.StatusOK, gin.H{"enabled": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"enabled": true, "header": csrf.HeaderName, "token": csrfSvc.Token()})
	})
}

type analyticsReq struct {
	GA      *bool `json:"ga" binding:"required"`
	Clarity *bool `json:"clarity" binding:"required"`
}

func setAnalytics(tracker *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req analyticsReq
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err.Error())
			return
		}
		prefs := analytics.Preferences{GA: *req.GA, Clarity: *req.Clarity}
		if err := tracker.SetPreferences(c.Request.Context(), prefs); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, prefs)
	}
}
