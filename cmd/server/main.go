// Package main is the entry point for the application
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"isaraya-analytics/internal/analytics"
	"isaraya-analytics/internal/config"
	"isaraya-analytics/internal/database"
	"isaraya-analytics/internal/handlers"
	"isaraya-analytics/internal/logger"
	"isaraya-analytics/internal/repository"
	"isaraya-analytics/internal/routes"
	"isaraya-analytics/internal/service"
	"isaraya-analytics/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)

	logger.Info("Starting iSaraya analytics service")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	snapshots := store.New(store.Sources{
		Orders:     repository.NewOrderRepository(db.DB),
		Products:   repository.NewProductRepository(db.DB),
		Users:      repository.NewUserRepository(db.DB),
		Categories: repository.NewCategoryRepository(db.DB),
	})

	engine := analytics.NewEngine(
		analytics.WithCache(analytics.NewMemoryCache()),
		analytics.WithPeriod(cfg.Analytics.Period),
		analytics.WithStatsTopN(cfg.Analytics.StatsTopN),
	)

	services := service.NewServices(&service.Dependencies{
		DB:     db,
		Store:  snapshots,
		Engine: engine,
	})

	// A failed first load leaves the service answering 503 until a refresh succeeds.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.Analytics.RefreshInterval)
	if _, err := snapshots.Refresh(loadCtx); err != nil {
		logger.WithError(err).Warn("Initial snapshot load failed")
	}
	cancelLoad()

	refresher := store.NewRefresher(snapshots, cfg.Analytics.RefreshInterval)
	refresher.Start()
	defer refresher.Stop()

	h := handlers.New(services, cfg.Analytics.DefaultLimit)

	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := routes.SetupRoutes(h)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	} else {
		logger.Info("Server shutdown complete")
	}
}
