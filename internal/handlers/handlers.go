// Package handlers provides HTTP request handlers
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"isaraya-analytics/internal/errors"
	"isaraya-analytics/internal/logger"
	"isaraya-analytics/internal/metrics"
	"isaraya-analytics/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	services     *service.Services
	defaultLimit int
}

// New creates a new handlers instance. defaultLimit applies when a request
// carries no limit query parameter.
func New(services *service.Services, defaultLimit int) *Handlers {
	return &Handlers{
		services:     services,
		defaultLimit: defaultLimit,
	}
}

// Analytics handlers

// TopProducts handles GET /analytics/top-products
func (h *Handlers) TopProducts(c *gin.Context) {
	limit, err := h.parseLimit(c)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	top, err := h.services.Analytics.TopProducts(c.Request.Context(), limit)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"top_products": top,
		"limit":        limit,
	})
}

// MerchantTopProducts handles GET /analytics/merchants/:id/top-products
func (h *Handlers) MerchantTopProducts(c *gin.Context) {
	limit, err := h.parseLimit(c)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	merchantID := c.Param("id")
	top, err := h.services.Analytics.MerchantTopProducts(c.Request.Context(), merchantID, limit)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"merchant_id":  merchantID,
		"top_products": top,
		"limit":        limit,
	})
}

// AdminStats handles GET /analytics/admin-stats
func (h *Handlers) AdminStats(c *gin.Context) {
	stats, err := h.services.Analytics.AdminStats(c.Request.Context())
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Dashboard handles GET /analytics/dashboard
func (h *Handlers) Dashboard(c *gin.Context) {
	limit, err := h.parseLimit(c)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	dashboard, err := h.services.Analytics.Dashboard(c.Request.Context(), limit)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// Refresh handles POST /analytics/refresh
func (h *Handlers) Refresh(c *gin.Context) {
	info, err := h.services.Analytics.Refresh(c.Request.Context())
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// ClearCache handles POST /analytics/cache/clear
func (h *Handlers) ClearCache(c *gin.Context) {
	if err := h.services.Analytics.ClearCache(c.Request.Context()); err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Analytics cache cleared",
	})
}

// CacheStats handles GET /analytics/cache/stats
func (h *Handlers) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Analytics.CacheStats(c.Request.Context()))
}

// Health handlers

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	ctx := c.Request.Context()

	health, err := h.services.Health.Check(ctx)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	statusCode := http.StatusOK
	if health.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, health)
}

// Middleware

// RequestID middleware adds a request ID to the context, reusing the
// caller's X-Request-ID when one is sent
func (h *Handlers) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Set("request_id", requestID)

		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

// Logger middleware logs HTTP requests
func (h *Handlers) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		if raw != "" {
			path = path + "?" + raw
		}

		logger.WithRequest(
			c.GetString("request_id"),
			c.Request.Method,
			path,
		).WithFields(map[string]interface{}{
			"status":     c.Writer.Status(),
			"latency_ms": latency.Milliseconds(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}).Info("HTTP request processed")
	}
}

// Metrics middleware records request counts and durations per route
func (h *Handlers) Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ErrorHandler middleware handles panics and converts them to errors
func (h *Handlers) ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.WithContext(c.Request.Context()).
					WithField("error", err).
					Error("Panic recovered")

				h.respondWithError(c, errors.ErrInternalError)
				c.Abort()
			}
		}()

		c.Next()
	}
}

// CORS middleware handles Cross-Origin Resource Sharing
func (h *Handlers) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// MetricsHandler returns Prometheus metrics
func (h *Handlers) MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Helper methods

// parseLimit reads the limit query parameter, falling back to the default
func (h *Handlers) parseLimit(c *gin.Context) (int, error) {
	raw, ok := c.GetQuery("limit")
	if !ok {
		return h.defaultLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationError("limit must be an integer")
	}
	if limit <= 0 {
		return 0, errors.NewInvalidParameterError("limit", "limit must be a positive integer")
	}

	return limit, nil
}

// respondWithError responds with an error in a consistent format
func (h *Handlers) respondWithError(c *gin.Context, err error) {
	statusCode := errors.GetStatusCode(err)
	response := errors.ToErrorResponse(err)

	c.JSON(statusCode, response)
}
