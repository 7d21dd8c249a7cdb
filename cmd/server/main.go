package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adminsys/backoffice/internal/bootstrap"
	"github.com/adminsys/backoffice/internal/config"
	"github.com/adminsys/backoffice/internal/handler"
	"github.com/adminsys/backoffice/internal/pkg/logger"
	"github.com/adminsys/backoffice/internal/service"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ./config.yaml or ./configs/config.yaml)")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Logger
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	appLog := logger.Get()
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	// 3. Initialize Persistence
	ctx := context.Background()
	stores, err := bootstrap.OpenStores(ctx, cfg, appLog)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}

	// 4. Initialize Services
	svcs := bootstrap.NewServices(cfg, stores, appLog)
	if err := bootstrap.Seed(ctx, cfg, svcs, stores.Users, appLog); err != nil {
		logger.Error("seeding failed", "error", err)
	}

	var retention *service.RetentionJob
	if cfg.Audit.CleanupCron != "" {
		retention, err = service.NewRetentionJob(svcs.Logs, svcs.Audit, cfg.Audit.CleanupCron, cfg.Audit.RetentionDays, appLog)
		if err != nil {
			log.Fatalf("Failed to configure retention job: %v", err)
		}
		if err := retention.Start(); err != nil {
			log.Fatalf("Failed to start retention job: %v", err)
		}
	}

	// 5. Setup Router
	r := handler.NewRouter(cfg, svcs)

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("backoffice started", "port", cfg.Server.Port, "mode", cfg.Server.Mode, "audit_store", cfg.Audit.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if retention != nil {
		retention.Stop()
	}
	// 等待未完成的审计写入
	svcs.Audit.Close()
	if err := stores.Close(shutdownCtx); err != nil {
		logger.Error("failed to close stores", "error", err)
	}

	logger.Info("server exiting")
}
