package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mongoapi/mongoapi/pkg/logger"
)

// RequestLogger logs one line per request through pkg/logger once the
// handler chain has finished. 5xx responses are logged at error level.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"size", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if status >= 500 {
			logger.Errorw("request", kv...)
			return
		}
		logger.Infow("request", kv...)
	}
}
