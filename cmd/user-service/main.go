package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"marketbay_backend/internal/config"
	"marketbay_backend/internal/events"
	"marketbay_backend/internal/user"
	"marketbay_backend/platform/httpkit"
	"marketbay_backend/platform/logger"
	"marketbay_backend/platform/mongo"
	"marketbay_backend/platform/storage"
	"marketbay_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := cfg.ValidateUserService(); err != nil {
		panic("invalid user service config: " + err.Error())
	}

	log := logger.New(cfg.Env).WithService("user-service")
	log.Info("starting user service", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mongo.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Error("failed to connect to mongo", "error", err)
		panic("failed to connect to mongo: " + err.Error())
	}
	defer func() { _ = mongo.Disconnect(context.Background(), client) }()
	db := client.Database(cfg.MongoDatabase)
	log.Info("document store connection established")

	store, err := storage.New(storage.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		log.Error("failed to initialize object store", "error", err)
		panic("failed to initialize object store: " + err.Error())
	}
	if err := store.EnsureBucket(ctx, cfg.AvatarBucket); err != nil {
		log.Error("failed to ensure avatar bucket", "error", err, "bucket", cfg.AvatarBucket)
		panic("failed to ensure avatar bucket: " + err.Error())
	}

	producer, err := events.NewProducer(cfg.RedisURL, "default")
	if err != nil {
		log.Error("failed to initialize event producer", "error", err)
		panic("failed to initialize event producer: " + err.Error())
	}
	defer func() { _ = producer.Close() }()

	val := validator.New()

	module := user.NewModule(db, store, producer, cfg, val, log)
	if err := module.Init(ctx); err != nil {
		log.Error("failed to initialize user module", "error", err)
		panic("failed to initialize user module: " + err.Error())
	}

	if !strings.EqualFold(cfg.Env, "development") {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(log))
	engine.Use(httpkit.SecurityHeaders())
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	module.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("user service listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown incomplete", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}
