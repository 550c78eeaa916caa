package gateway

import (
	"net/http"
	"time"

	"marketbay_backend/internal/config"
	"marketbay_backend/internal/gateway/loginlimit"
	"marketbay_backend/platform/httpkit"
	"marketbay_backend/platform/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Login limiter policy: 5 attempts, refilled in full every minute,
// buckets evicted after 10 idle minutes.
const (
	LoginLimitCapacity = 5
	LoginLimitWindow   = time.Minute
	LoginLimitTTL      = 10 * time.Minute
)

// NewRouter assembles the gateway engine. Filter order is fixed:
// recovery -> logging -> CORS -> rate limit (login only) -> authentication
// -> proxy. If any stage rejects, the rest of the chain is skipped.
func NewRouter(cfg *config.Config, limiter *loginlimit.Limiter, log *logger.Logger) (*gin.Engine, error) {
	proxy, err := NewProxy(cfg.UserServiceURL, cfg.ProductServiceURL, cfg.MediaServiceURL)
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(log))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(newCORS(cfg))
	engine.Use(LoginRateLimit(limiter, log))
	engine.Use(AuthFilter(cfg.JWTSecret, log))

	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.NoRoute(proxy.Handler())

	return engine, nil
}

func newCORS(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: !cfg.CORSAllowAll,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowAll {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	return cors.New(corsCfg)
}
