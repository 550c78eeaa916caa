// Package product provides the catalog bounded context: public reads,
// seller-scoped mutations, the internal ownership check consumed by the
// media service, and the cascade on account deletion.
package product

import (
	"time"

	"marketbay_backend/internal/auth"
	"marketbay_backend/internal/config"
	"marketbay_backend/internal/guard"
	"marketbay_backend/internal/product/client"
	"marketbay_backend/internal/product/handler"
	"marketbay_backend/internal/product/repository"
	"marketbay_backend/internal/product/service"
	"marketbay_backend/platform/logger"
	"marketbay_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

const peerTimeout = 3 * time.Second

// Module is the product bounded context.
type Module struct {
	handler *handler.Handler
	service *service.Service
	cfg     *config.Config
	log     *logger.Logger
}

// NewModule wires the product module's dependencies.
func NewModule(db *mongo.Database, cfg *config.Config, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(db)
	users := client.NewUserClient(cfg.UserServiceURL, cfg.InternalToken, peerTimeout)
	media := client.NewMediaClient(cfg.MediaServiceURL, cfg.InternalToken, peerTimeout)
	svc := service.New(repo, users, media, cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		cfg:     cfg,
		log:     log,
	}
}

// RegisterRoutes mounts the module's routes on the service engine.
func (m *Module) RegisterRoutes(engine *gin.Engine) {
	products := engine.Group("/api/products")
	products.Use(auth.IdentityFromHeaders())
	products.GET("", m.handler.List)
	products.GET("/:id", m.handler.Get)
	products.GET("/mine", auth.RequireRole(auth.RoleSeller, auth.RoleAdmin), m.handler.ListMine)
	products.POST("", auth.RequireRole(auth.RoleSeller, auth.RoleAdmin), m.handler.Create)
	products.PUT("/:id", auth.RequireRole(auth.RoleSeller, auth.RoleAdmin), m.handler.Update)
	products.DELETE("/:id", auth.RequireRole(auth.RoleSeller, auth.RoleAdmin), m.handler.Delete)

	internal := engine.Group("/api/products/internal")
	internal.Use(guard.RequireInternal(m.cfg.InternalToken, m.log))
	internal.GET("/validate/:productId", m.handler.ValidateOwnership)
}
