package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mongoapi/mongoapi/pkg/metrics"
)

// Names under which clients may send their API key.
const (
	APIKeyHeader = "X-API-Key"
	APIKeyQuery  = "api_key"
	APIKeyCookie = "api_key"

	// APIKeyContextKey is the gin context key holding the accepted key.
	APIKeyContextKey = "api_key"
)

// KeyVerifier is the minimal interface the middleware depends on.
// Candidates arrive in precedence order: header, query, cookie.
type KeyVerifier interface {
	Verify(header, query, cookie string) (string, error)
}

// APIKeyMiddleware rejects requests that carry no accepted API key with 403
// before any handler runs.
func APIKeyMiddleware(ver KeyVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(APIKeyCookie)
		key, err := ver.Verify(c.GetHeader(APIKeyHeader), c.Query(APIKeyQuery), cookie)
		if err != nil {
			metrics.AuthRejected.Inc()
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": err.Error()})
			return
		}
		c.Set(APIKeyContextKey, key)
		c.Next()
	}
}
