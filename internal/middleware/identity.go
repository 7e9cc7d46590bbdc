package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// userIDHeader is filled in by the authenticating gateway in front of this
// service. Authentication itself is an external trust boundary.
const userIDHeader = "X-User-ID"

const userIDContextKey = "userID"

// TrustedIdentityMiddleware requires the trusted user header on every
// request and exposes it to handlers.
func TrustedIdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(userIDHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}
		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

// GetUserID returns the user identity set by TrustedIdentityMiddleware, or
// an empty string when absent.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDContextKey)
}
