package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dbward/dbward/internal/monitoring"
	"github.com/dbward/dbward/pkg/logger"
)

// RequestLogger logs all HTTP requests with structured logging and records
// request metrics
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		// Route template, not the raw path, to keep metric cardinality bounded
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		monitoring.RecordAPIRequest(c.Request.Method, endpoint, strconv.Itoa(status), latency.Seconds())

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"status":     status,
			"latency_ms": latency.Milliseconds(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}

		message := "HTTP request"
		if status >= 500 {
			logger.Error(message, nil, fields)
		} else if status >= 400 {
			logger.Warn(message, fields)
		} else {
			logger.Info(message, fields)
		}
	}
}
