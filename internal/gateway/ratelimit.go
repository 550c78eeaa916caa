package gateway

import (
	"net"
	"net/http"
	"strings"

	"marketbay_backend/internal/gateway/loginlimit"
	"marketbay_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// LoginPath is the only route the login limiter applies to.
const LoginPath = "/api/auth/login"

// LoginRateLimit returns middleware that throttles login attempts per
// client IP. All other routes bypass the limiter entirely.
func LoginRateLimit(limiter *loginlimit.Limiter, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path != LoginPath {
			c.Next()
			return
		}

		key := clientKey(c.Request)
		if !limiter.Allow(key) {
			if log != nil {
				log.RateLimitExceeded(key, c.Request.URL.Path)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many login attempts, retry later",
			})
			return
		}

		c.Next()
	}
}

// clientKey derives the rate-limit key: the first X-Forwarded-For entry if
// present, else the socket's remote host, else a shared "unknown" bucket.
// Clients behind one NAT with no forwarded-for contend on a single bucket;
// that coarseness is accepted.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
