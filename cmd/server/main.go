// Package main is the entry point for the lemonpos API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lemonpos/internal/core/tx"
	"lemonpos/internal/domain/catalog/ingredient"
	"lemonpos/internal/domain/catalog/product"
	"lemonpos/internal/domain/ledger"
	"lemonpos/internal/domain/order"
	"lemonpos/internal/domain/pricing"
	"lemonpos/internal/domain/reports"
	v1 "lemonpos/internal/infrastructure/http/v1"
	"lemonpos/internal/infrastructure/http/v1/handlers"
	"lemonpos/internal/infrastructure/storage/memory"
	"lemonpos/internal/infrastructure/storage/postgres"
	"lemonpos/internal/infrastructure/storage/postgres/catalog_repo"
	"lemonpos/internal/infrastructure/storage/postgres/ledger_repo"
	"lemonpos/internal/infrastructure/storage/postgres/order_repo"
	"lemonpos/internal/infrastructure/storage/postgres/report_repo"
	"lemonpos/pkg/logger"
	"lemonpos/pkg/numerator"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting lemonpos server")

	// Store timezone drives order business timestamps and daily cutoffs.
	loc, err := time.LoadLocation(getEnv("STORE_TZ", "Local"))
	if err != nil {
		log.Fatalw("invalid STORE_TZ", "error", err)
	}

	var (
		productRepo    product.Repository
		ingredientRepo ingredient.Repository
		ledgerRepo     ledger.Repository
		orderRepo      order.Repository
		reportRepo     reports.Repository
		txManager      tx.Manager
		numbers        numerator.Generator
		storage        handlers.Pinger
	)

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()
		log.Info("database connection established")

		tm := postgres.NewTxManager(pool)
		productRepo = catalog_repo.NewProductRepo(tm)
		ingredientRepo = catalog_repo.NewIngredientRepo(tm)
		ledgerRepo = ledger_repo.NewLedgerRepo(tm)
		orderRepo = order_repo.NewOrderRepo(tm)
		reportRepo = report_repo.NewReportRepo(tm)
		txManager = tm
		numbers = numerator.New(pool)
		storage = pool
	} else {
		// No DATABASE_URL: run fully in-memory (demo and test mode).
		log.Warn("DATABASE_URL not set, using in-memory storage")

		store := memory.New()
		productRepo = store.Products()
		ingredientRepo = store.Ingredients()
		ledgerRepo = store.Ledger()
		orderRepo = store.Orders()
		reportRepo = store.Reports()
		txManager = store
		numbers = numerator.NewMock()
	}

	productService := product.NewService(productRepo)
	ingredientService := ingredient.NewService(ingredientRepo)
	stockService := ledger.NewService(ledgerRepo, txManager)
	reportService := reports.NewService(reportRepo)
	coordinator := order.NewCoordinator(
		productRepo,
		orderRepo,
		stockService,
		pricing.NewEngine(),
		numbers,
		txManager,
		loc,
	)

	router := v1.NewRouter(v1.RouterConfig{
		Logger:      log,
		Products:    productService,
		Ingredients: ingredientService,
		Stock:       stockService,
		Orders:      coordinator,
		Reports:     reportService,
		Storage:     storage,
	})

	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port, "store_tz", loc.String())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
