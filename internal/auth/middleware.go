package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// IdentityFromHeaders returns middleware for downstream services that
// derives the end-user caller from the identity headers the gateway
// injected. Requests without a parsable identity simply carry no caller;
// role checks further down the chain reject them.
//
// These headers are only trustworthy because the gateway overwrites them
// on every proxied request. The services must not be reachable from the
// public internet directly; that is a deployment-topology invariant.
func IdentityFromHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetHeader(HeaderUserEmail)
		role, err := ParseRole(c.GetHeader(HeaderUserRole))
		if email != "" && err == nil {
			SetCaller(c, EndUser(email, role))
		}
		c.Next()
	}
}

// RequireRole returns middleware that allows only end-user callers holding
// one of the given roles. Internal-service callers are rejected here by
// construction: they carry no end-user role.
func RequireRole(roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok || caller.Kind != CallerEndUser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		for _, role := range roles {
			if caller.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}
