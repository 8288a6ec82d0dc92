package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"silant-backend/config"
	"silant-backend/internal/api"
	"silant-backend/internal/auth"
	"silant-backend/internal/db"
	"silant-backend/internal/logger"
	"silant-backend/internal/service"
	"silant-backend/internal/store"
)

func main() {
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "./config/config.yaml" // Default path for local development
	}
	configPath := pflag.StringP("config", "c", defaultPath, "path to the YAML configuration file")
	pflag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.L()
	log.Info("configuration loaded", zap.String("path", *configPath), zap.Stringer("log_level", logger.Level()))

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	log.Info("database initialized", zap.String("driver", cfg.Database.Driver))

	appStore := store.NewGormStore(gormDB)
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	svc := service.New(appStore, tokens, service.Options{Location: cfg.Server.Location})

	if cfg.Log.Format != "console" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := api.NewRouter(svc, api.Options{
		PageSize:           cfg.Server.PageSize,
		MaxPageSize:        cfg.Server.MaxPageSize,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		GuestRateLimit:     cfg.Server.GuestRateLimitPerSec,
		GuestBurst:         cfg.Server.GuestRateBurst,
		TrustedProxies:     cfg.Server.TrustedProxies,
	})
	if err != nil {
		log.Fatal("failed to build router", zap.Error(err))
	}
	server := &http.Server{
		Addr:     fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:  router,
		ErrorLog: logger.StdLog(zap.WarnLevel),
	}

	// Start the server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	log.Info("shutdown signal received, stopping server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server Shutdown", zap.Error(err))
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("server gracefully stopped")
}
