package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/MRsanjuedit/FPMS-Backend/config"
	"github.com/MRsanjuedit/FPMS-Backend/internal/api/handler"
	"github.com/MRsanjuedit/FPMS-Backend/internal/api/router"
	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
	"github.com/MRsanjuedit/FPMS-Backend/internal/repository"
	"github.com/MRsanjuedit/FPMS-Backend/internal/service"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/database"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/jwt"
	applogger "github.com/MRsanjuedit/FPMS-Backend/pkg/logger"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/metrics"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/redis"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/storage"
)

func main() {
	// 1. config
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting FPMS backend",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. database
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, cfg.Database.Driver, logger, model.All()...); err != nil {
			logger.Fatal("migrate database", zap.Error(err))
		}
	}

	// 4. redis (optional: logout revocation and rate limiting degrade without it)
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, token blacklist and rate limiting disabled", zap.Error(err))
			rdb = nil
		}
	}

	// 5. evidence store
	ctx := context.Background()
	evidence, err := storage.New(ctx, &cfg.Evidence)
	if err != nil {
		logger.Fatal("init evidence store", zap.Error(err))
	}
	var uploadsDir string
	if local, ok := evidence.(*storage.LocalStore); ok {
		uploadsDir = local.Dir()
	}

	// 6. metrics
	registry := metrics.NewRegistry()
	wfMetrics := metrics.NewWorkflow(registry)

	// 7. Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db, repository.Options{
		MaxSaveAttempts: cfg.Workflow.MaxSaveAttempts,
		OnConflict:      wfMetrics.Conflict,
	})

	deps := service.Deps{JWT: jwtMgr, Evidence: evidence, Metrics: wfMetrics}
	if rdb != nil {
		deps.Blacklist = rdb
	}
	svc := service.NewService(cfg, repo, deps, logger)
	h := handler.NewHandler(svc)

	engine := router.Setup(cfg, h, router.Options{
		Auth:       jwtMgr,
		Redis:      rdb,
		Identity:   svc.Identity,
		Metrics:    registry,
		UploadsDir: uploadsDir,
	}, logger)

	// 8. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if err := evidence.Close(); err != nil {
		logger.Warn("close evidence store", zap.Error(err))
	}
	if sqlDB, _ := db.DB(); sqlDB != nil {
		sqlDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
