// Package user provides the account bounded context: registration, login
// and token issuance, profile CRUD, admin operations, and the internal
// email-to-id lookup consumed by the product service.
package user

import (
	"context"

	"marketbay_backend/internal/auth"
	"marketbay_backend/internal/config"
	"marketbay_backend/internal/guard"
	"marketbay_backend/internal/user/handler"
	"marketbay_backend/internal/user/repository"
	"marketbay_backend/internal/user/service"
	"marketbay_backend/platform/logger"
	"marketbay_backend/platform/storage"
	"marketbay_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// Module is the user bounded context.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
	cfg     *config.Config
	log     *logger.Logger
}

// NewModule wires the user module's dependencies.
func NewModule(db *mongo.Database, store storage.ObjectStore, events service.EventPublisher, cfg *config.Config, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(db)
	svc := service.New(repo, store, events, cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
		cfg:     cfg,
		log:     log,
	}
}

// Init prepares storage indexes and the root admin account.
func (m *Module) Init(ctx context.Context) error {
	if err := m.repo.EnsureIndexes(ctx); err != nil {
		return err
	}
	return m.service.EnsureRootAdmin(ctx)
}

// RegisterRoutes mounts the module's routes on the service engine.
func (m *Module) RegisterRoutes(engine *gin.Engine) {
	authGroup := engine.Group("/api/auth")
	authGroup.POST("/register", m.handler.Register)
	authGroup.POST("/login", m.handler.Login)

	users := engine.Group("/api/users")
	users.Use(auth.IdentityFromHeaders())
	users.GET("/me", m.handler.GetMe)
	users.GET("/:id", m.handler.GetByID)
	users.PUT("/:id", m.handler.Update)

	internal := engine.Group("/api/users/internal")
	internal.Use(guard.RequireInternal(m.cfg.InternalToken, m.log))
	internal.GET("/by-email/:email", m.handler.GetInternalByEmail)

	admin := engine.Group("/api/admin")
	admin.Use(auth.IdentityFromHeaders(), auth.RequireRole(auth.RoleAdmin))
	admin.GET("/users", m.handler.ListUsers)
	admin.DELETE("/users/:id", m.handler.DeleteUser)
}
