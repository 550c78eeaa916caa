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
	"marketbay_backend/internal/gateway"
	"marketbay_backend/internal/gateway/loginlimit"
	"marketbay_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := cfg.ValidateGateway(); err != nil {
		panic("invalid gateway config: " + err.Error())
	}

	log := logger.New(cfg.Env).WithService("gateway")
	log.Info("starting gateway", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := loginlimit.New(gateway.LoginLimitCapacity, gateway.LoginLimitWindow, gateway.LoginLimitTTL, time.Now)
	go sweepLoop(ctx, limiter)

	if !strings.EqualFold(cfg.Env, "development") {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := gateway.NewRouter(cfg, limiter, log)
	if err != nil {
		log.Error("failed to assemble router", "error", err)
		panic("failed to assemble router: " + err.Error())
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("gateway listening", "addr", cfg.HTTPAddr)
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

// sweepLoop evicts idle rate-limit buckets until the context ends.
func sweepLoop(ctx context.Context, limiter *loginlimit.Limiter) {
	ticker := time.NewTicker(gateway.LoginLimitTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}
