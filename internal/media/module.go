// Package media provides the image bounded context: uploads, downloads
// and replacements for product images, plus the internal endpoints the
// product service drives during creation and cascade deletes.
package media

import (
	"context"
	"time"

	"marketbay_backend/internal/auth"
	"marketbay_backend/internal/config"
	"marketbay_backend/internal/guard"
	"marketbay_backend/internal/media/client"
	"marketbay_backend/internal/media/handler"
	"marketbay_backend/internal/media/repository"
	"marketbay_backend/internal/media/service"
	"marketbay_backend/platform/logger"
	"marketbay_backend/platform/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

const peerTimeout = 3 * time.Second

// Module is the media bounded context.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
	cfg     *config.Config
	log     *logger.Logger
}

// NewModule wires the media module's dependencies.
func NewModule(db *mongo.Database, store storage.ObjectStore, cfg *config.Config, log *logger.Logger) *Module {
	repo := repository.New(db)
	products := client.NewProductClient(cfg.ProductServiceURL, cfg.InternalToken, peerTimeout)
	svc := service.New(repo, store, products, cfg, log)
	h := handler.New(svc)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
		cfg:     cfg,
		log:     log,
	}
}

// Init prepares storage indexes.
func (m *Module) Init(ctx context.Context) error {
	return m.repo.EnsureIndexes(ctx)
}

// RegisterRoutes mounts the module's routes on the service engine.
func (m *Module) RegisterRoutes(engine *gin.Engine) {
	mediaGroup := engine.Group("/api/media")
	mediaGroup.Use(auth.IdentityFromHeaders())
	mediaGroup.GET("/product/:productId", m.handler.ListByProduct)
	mediaGroup.GET("/:mediaId/file", m.handler.Download)
	mediaGroup.POST("/:productId", auth.RequireRole(auth.RoleSeller, auth.RoleAdmin), m.handler.Upload)
	mediaGroup.PUT("/:mediaId", auth.RequireRole(auth.RoleSeller, auth.RoleAdmin), m.handler.Replace)
	mediaGroup.DELETE("/:mediaId", auth.RequireRole(auth.RoleSeller, auth.RoleAdmin), m.handler.Delete)

	internal := engine.Group("/api/media/internal")
	internal.Use(guard.RequireInternal(m.cfg.InternalToken, m.log))
	internal.POST("/:productId", m.handler.InternalUpload)
	internal.GET("/product/:productId", m.handler.InternalListByProduct)
	internal.DELETE("/product/:productId", m.handler.InternalDeleteByProduct)
}
