package routes

import (
	"net/http"

	"journal-metrics-api/controllers"
	"journal-metrics-api/middleware"
	"journal-metrics-api/monitor"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, jwtSecret string) {
	monitor.RegisterMetricsRoute(router)

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"message": "Journal Metrics API is running",
			})
		})

		// Check routes; auth applies only when a JWT secret is configured
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			protected.GET("/publications/check", controllers.CheckPublication)
			protected.GET("/journals/metrics", controllers.GetJournalMetrics)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "route not found"})
	})
}
