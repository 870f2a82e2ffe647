package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// callerCtxKey is the Gin context key used to store the authenticated caller ID.
const callerCtxKey = "caller_id"

// APIKeyMiddleware guards the outbound dispatcher and provisioning endpoints
// by mapping X-API-Key → callerID. The webhook receiver is not behind this:
// GHL authenticates deliveries by URL secrecy only.
func APIKeyMiddleware(keys map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := strings.TrimSpace(c.GetHeader("X-API-Key"))
		callerID, ok := keys[apiKey]
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}
		c.Set(callerCtxKey, callerID)
		c.Next()
	}
}

// CallerID returns the authenticated caller ID from the request context.
func CallerID(c *gin.Context) string {
	v, _ := c.Get(callerCtxKey)
	s, _ := v.(string)
	return s
}
