package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var corsHeaders = strings.Join([]string{
	"Accept",
	"Authorization",
	"Cache-Control",
	"Content-Type",
	"Origin",
	RequestIDHeader,
}, ", ")

// CorsMiddleware allows browser wallets on any origin to call the API.
func CorsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", corsHeaders)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Expose-Headers", RequestIDHeader+", Retry-After")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// HealthCheck returns the health status of the API
// @Summary Health Check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/healthz [get]
func HealthCheck(env, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"environment": env,
			"version":     version,
		})
	}
}
