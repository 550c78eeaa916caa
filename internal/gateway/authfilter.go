// Package gateway implements the internet-facing entry point: bearer-token
// termination, identity-header injection, login rate limiting, and the
// reverse proxy to the downstream services.
package gateway

import (
	"net/http"
	"strings"

	"marketbay_backend/internal/auth"
	"marketbay_backend/internal/auth/token"
	"marketbay_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// AuthFilter is the single trust boundary from the public internet.
// Requests to the public allowlist pass through untouched. Every other
// request must carry a valid bearer token; on success the Authorization
// header is dropped and the identity headers are overwritten with the
// verified subject and role before the request is proxied downstream.
// That replacement is what lets downstream services trust the headers
// without re-verifying tokens.
func AuthFilter(secret string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		raw, ok := extractBearer(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := token.Verify(raw, secret)
		if err != nil {
			if log != nil {
				log.AuthEvent("token_verify", "", false, "invalid or expired token")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// Replace, never merge: any client-supplied identity headers are
		// discarded in favour of the verified claims.
		c.Request.Header.Del("Authorization")
		c.Request.Header.Set(auth.HeaderUserEmail, claims.Email)
		c.Request.Header.Set(auth.HeaderUserRole, claims.Role.String())

		c.Next()
	}
}

// IsPublicPath reports whether a path is reachable without a bearer token.
func IsPublicPath(path string) bool {
	return strings.HasPrefix(path, "/api/auth/") || path == "/"
}

func extractBearer(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if raw == "" {
		return "", false
	}
	return raw, true
}
