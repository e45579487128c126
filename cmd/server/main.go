// Package main is the entry point for the bakehouse API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bakehouse/internal/domain/alerts"
	"bakehouse/internal/domain/catalogs/item"
	"bakehouse/internal/domain/catalogs/supplier"
	"bakehouse/internal/domain/inventory"
	"bakehouse/internal/domain/recipes"
	"bakehouse/internal/domain/reports"
	v1 "bakehouse/internal/infrastructure/http/v1"
	"bakehouse/internal/infrastructure/http/v1/handlers"
	"bakehouse/internal/infrastructure/storage/postgres"
	"bakehouse/internal/infrastructure/storage/postgres/catalog_repo"
	"bakehouse/internal/infrastructure/storage/postgres/register_repo"
	"bakehouse/pkg/config"
	"bakehouse/pkg/logger"
	"bakehouse/pkg/numerator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting bakehouse server")

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.ConnectionString()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	itemRepo := catalog_repo.NewItemRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	recipeRepo := catalog_repo.NewRecipeRepo(txManager)
	stockRepo := register_repo.NewStockRepo(txManager)

	// --- Services ---
	numeratorService := numerator.New(pool)

	itemService := item.NewService(itemRepo, numeratorService, txManager)
	supplierService := supplier.NewService(supplierRepo, txManager)
	recipeService := recipes.NewService(recipeRepo, itemRepo, txManager)
	stockService := inventory.NewService(stockRepo, itemRepo, recipeRepo, txManager)

	alertEngine, err := alerts.NewEngine(alerts.DefaultRules())
	if err != nil {
		log.Fatalw("failed to compile alert rules", "error", err)
	}
	reportService := reports.NewService(itemRepo, stockRepo, stockService, alertEngine)

	// --- Router ---
	base := handlers.NewBaseHandler()
	router := v1.NewRouter(v1.RouterConfig{
		Logger:    log,
		JWTSecret: cfg.JWT.Secret,
		Health:    handlers.NewHealthHandler(pool),
		Items:     handlers.NewItemHandler(base, itemService),
		Suppliers: handlers.NewSupplierHandler(base, supplierService),
		Recipes:   handlers.NewRecipeHandler(base, recipeService, stockService),
		Stock:     handlers.NewStockHandler(base, stockService),
		Reports:   handlers.NewReportsHandler(base, reportService),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTP.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
