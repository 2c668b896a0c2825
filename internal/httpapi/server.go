/*
Package httpapi exposes the engagement state layer to the storefront's
client-rendered UI over HTTP.

The facade is deliberately thin: every endpoint maps onto one operation of
the history cache, the trending ranker, or the product search port. Nothing
here owns state beyond the per-server view limiter.
*/
package httpapi

import (
	"os"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with the engagement routes mounted.
func NewRouter(h *EngagementHandlers, allowedOrigin string) *gin.Engine {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(CORSMiddleware(allowedOrigin))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		engagement := api.Group("/engagement")
		{
			engagement.POST("/view", h.TrackView)
			engagement.GET("/recent", h.GetRecent)
			engagement.DELETE("/recent", h.ClearRecent)
			engagement.GET("/trending", h.GetTrending)
			engagement.GET("/suggest", h.Suggest)
			engagement.POST("/accept", h.AcceptSuggestion)
		}
	}

	return r
}
