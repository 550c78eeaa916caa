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
	"marketbay_backend/internal/product"
	"marketbay_backend/platform/httpkit"
	"marketbay_backend/platform/logger"
	"marketbay_backend/platform/mongo"
	"marketbay_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := cfg.ValidateDownstream(); err != nil {
		panic("invalid product service config: " + err.Error())
	}

	log := logger.New(cfg.Env).WithService("product-service")
	log.Info("starting product service", "env", cfg.Env, "addr", cfg.HTTPAddr)

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

	val := validator.New()
	module := product.NewModule(db, cfg, val, log)

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

	redisOpt, err := events.RedisClientOpt(cfg.RedisURL)
	if err != nil {
		log.Error("failed to parse redis url", "error", err)
		panic("failed to parse redis url: " + err.Error())
	}
	worker := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{"default": 1},
	})
	mux := asynq.NewServeMux()
	product.NewConsumer(module, log).Register(mux)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("product service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("event consumer running")
		return worker.Run(mux)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		worker.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("service stopped with error", "error", err)
		panic("service stopped with error: " + err.Error())
	}
}
