// Package main is the entry point for the lemonpos background worker.
// It runs periodic maintenance: ledger projection reconciliation and
// pool health reporting.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lemonpos/internal/domain/ledger"
	"lemonpos/internal/infrastructure/storage/postgres"
	"lemonpos/internal/infrastructure/storage/postgres/ledger_repo"
	"lemonpos/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting lemonpos worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	stockService := ledger.NewService(ledger_repo.NewLedgerRepo(txManager), txManager)

	worker := NewMaintenanceWorker(stockService, pool, log)
	worker.reconcileEvery = getEnvDuration("RECONCILE_INTERVAL", 15*time.Minute)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// MaintenanceWorker periodically repairs ingredient projections that
// drifted from the movement ledger and reports pool statistics.
type MaintenanceWorker struct {
	stock *ledger.Service
	pool  *postgres.Pool
	log   *logger.Logger

	reconcileEvery time.Duration
}

func NewMaintenanceWorker(stock *ledger.Service, pool *postgres.Pool, log *logger.Logger) *MaintenanceWorker {
	return &MaintenanceWorker{
		stock:          stock,
		pool:           pool,
		log:            log.WithComponent("worker"),
		reconcileEvery: 15 * time.Minute,
	}
}

// Run blocks until ctx is cancelled.
func (w *MaintenanceWorker) Run(ctx context.Context) {
	reconcileTicker := time.NewTicker(w.reconcileEvery)
	defer reconcileTicker.Stop()

	statsTicker := time.NewTicker(1 * time.Minute)
	defer statsTicker.Stop()

	// Run one sweep on startup so a crashed commit is repaired promptly.
	w.reconcile(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-reconcileTicker.C:
			w.reconcile(ctx)
		case <-statsTicker.C:
			postgres.LogPoolStats(ctx, w.pool.Unwrap())
		}
	}
}

func (w *MaintenanceWorker) reconcile(ctx context.Context) {
	start := time.Now()
	repaired, err := w.stock.ReconcileAll(ctx)
	if err != nil {
		w.log.Errorw("reconcile sweep failed", "error", err)
		return
	}

	if repaired > 0 {
		w.log.Warnw("repaired drifted projections",
			"repaired", repaired,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}

	w.log.Debugw("reconcile sweep clean", "duration_ms", time.Since(start).Milliseconds())
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
