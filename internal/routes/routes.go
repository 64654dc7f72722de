// Package routes provides HTTP route configuration
package routes

import (
	"isaraya-analytics/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(h *handlers.Handlers) *gin.Engine {
	router := gin.New()

	router.Use(h.RequestID())
	router.Use(h.Logger())
	router.Use(h.Metrics())
	router.Use(h.ErrorHandler())
	router.Use(h.CORS())

	router.GET("/health", h.Health)
	router.GET("/metrics", h.MetricsHandler())

	analyticsGroup := router.Group("/analytics")
	{
		analyticsGroup.GET("/top-products", h.TopProducts)
		analyticsGroup.GET("/merchants/:id/top-products", h.MerchantTopProducts)
		analyticsGroup.GET("/admin-stats", h.AdminStats)
		analyticsGroup.GET("/dashboard", h.Dashboard)
		analyticsGroup.POST("/refresh", h.Refresh)

		cacheGroup := analyticsGroup.Group("/cache")
		cacheGroup.POST("/clear", h.ClearCache)
		cacheGroup.GET("/stats", h.CacheStats)
	}

	return router
}
