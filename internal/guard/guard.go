// Package guard implements the internal-access guard: the shared-secret
// check that gates service-to-service routes inside each downstream service.
package guard

import (
	"crypto/subtle"
	"net/http"

	"marketbay_backend/internal/auth"
	"marketbay_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// RequireInternal returns middleware for routes reserved to peer services.
// The request's X-INTERNAL-TOKEN header must match the configured secret;
// otherwise the request is rejected with 403 before any business logic runs,
// regardless of what identity headers the gateway may have injected.
//
// On success the caller context becomes the internal-service principal,
// which is scoped to internal routes only and never satisfies end-user
// role checks.
func RequireInternal(secret string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(auth.HeaderInternalToken)
		if presented == "" || secret == "" ||
			subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			if log != nil {
				log.AccessDenied("internal-service", c.Request.URL.Path, "invalid internal token")
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid internal token"})
			return
		}

		auth.SetCaller(c, auth.InternalService())
		c.Next()
	}
}
