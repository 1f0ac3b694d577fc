package server

import (
	"fmt"
	"net/http"
	"time"

	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// IdentityMiddleware resolves the acting user from the X-User-ID header set
// by the upstream identity provider and stores it on the context. Mutating
// routes are rejected when no identity is present.
func IdentityMiddleware(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		utils.JSONError(c, http.StatusUnauthorized, fmt.Errorf("missing X-User-ID header"), "missing user identity")
		c.Abort()
		return
	}
	c.Set("user_id", userID)
	c.Next()
}
