package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecomdemo/datagen/middleware"
	"ecomdemo/datagen/utils"
)

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RegisterRoutes mounts the public auth endpoints and the protected track and
// stats endpoints under /api.
func RegisterRoutes(r *gin.Engine, auth *AuthHandlers, analytics *AnalyticsHandlers, issuer *utils.TokenIssuer, defaultToken string) {
	api := r.Group("/api")
	api.GET("/health", HealthCheck)
	api.POST("/signup", auth.Signup)
	api.POST("/login", auth.Login)
	api.POST("/logout", auth.Logout)

	protected := api.Group("/")
	protected.Use(middleware.AuthRequired(issuer, defaultToken))
	{
		protected.GET("/profile", auth.Profile)
		protected.POST("/track", analytics.TrackEvent)

		stats := protected.Group("/stats")
		{
			stats.GET("/funnel", analytics.GetFunnel)
			stats.GET("/event-counts", analytics.GetEventCountsOverTime)
			stats.GET("/unique-users", analytics.GetUniqueUsersOverTime)
			stats.GET("/revenue", analytics.GetRevenueOverTime)
			stats.GET("/top-products", analytics.GetTopProducts)
		}
	}
}
