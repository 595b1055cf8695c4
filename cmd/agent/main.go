package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-edge-agent/config"
	"github.com/fekuna/omnipos-edge-agent/internal/server"
	"github.com/fekuna/omnipos-edge-agent/internal/store"
	syncPkg "github.com/fekuna/omnipos-edge-agent/internal/sync"

	expensePkg "github.com/fekuna/omnipos-edge-agent/internal/expense"

	invH "github.com/fekuna/omnipos-edge-agent/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/omnipos-edge-agent/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-edge-agent/internal/inventory/usecase"

	obRepoPkg "github.com/fekuna/omnipos-edge-agent/internal/outbox/repository"

	prodH "github.com/fekuna/omnipos-edge-agent/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-edge-agent/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-edge-agent/internal/product/usecase"

	saleH "github.com/fekuna/omnipos-edge-agent/internal/sale/handler"
	saleRepoPkg "github.com/fekuna/omnipos-edge-agent/internal/sale/repository"
	saleUCPkg "github.com/fekuna/omnipos-edge-agent/internal/sale/usecase"

	supH "github.com/fekuna/omnipos-edge-agent/internal/supplier/handler"
	supRepoPkg "github.com/fekuna/omnipos-edge-agent/internal/supplier/repository"
	supUCPkg "github.com/fekuna/omnipos-edge-agent/internal/supplier/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	appLogger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Could not initialize logger: %v", err)
	}
	defer appLogger.Sync()

	// 3. Open the local replica
	db, err := store.Open(&store.Config{
		Path:        cfg.SQLite.Path,
		BusyTimeout: cfg.SQLite.BusyTimeout,
	})
	if err != nil {
		appLogger.Fatal("Could not open local database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Opened local SQLite replica", zap.String("path", cfg.SQLite.Path))

	// 4. Initialize Repositories
	prodRepo := prodRepoPkg.NewSQLiteRepository(db)
	invRepo := invRepoPkg.NewSQLiteRepository(db)
	saleRepo := saleRepoPkg.NewSQLiteRepository(db)
	supRepo := supRepoPkg.NewSQLiteRepository(db)
	expRepo := expensePkg.NewSQLiteRepository(db)
	obRepo := obRepoPkg.NewSQLiteRepository(db)
	stateRepo := syncPkg.NewStateRepository(db)

	// 5. Initialize UseCases
	prodUC := prodUCPkg.NewProductUseCase(db, prodRepo, obRepo, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(db, invRepo, prodRepo, obRepo, appLogger)
	saleUC := saleUCPkg.NewSaleUseCase(db, saleRepo, prodRepo, invRepo, obRepo, appLogger)
	supUC := supUCPkg.NewSupplierUseCase(db, supRepo, obRepo, appLogger)
	expUC := expensePkg.NewUseCase(db, expRepo, obRepo)

	// 6. Initialize the Sync Engine
	client := syncPkg.NewClient(&syncPkg.ClientConfig{
		BaseURL: cfg.Remote.BaseURL,
		Token:   cfg.Remote.Token,
		Timeout: cfg.Remote.Timeout,
	})
	pusher := syncPkg.NewPusher(syncPkg.PusherConfig{
		InitialBackoff: cfg.Sync.InitialBackoff,
		MaxBackoff:     cfg.Sync.MaxBackoff,
		MaxAttempts:    cfg.Sync.MaxAttempts,
		Retention:      cfg.Sync.Retention,
	}, obRepo, client, prodRepo, invRepo, saleRepo, supRepo, expRepo, appLogger)
	puller := syncPkg.NewPuller(db, stateRepo, obRepo, client, prodRepo, invRepo, saleRepo, supRepo, expRepo, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 7. First run bootstraps the replica from a full server snapshot
	watermark, err := stateRepo.Watermark(ctx)
	if err != nil {
		appLogger.Fatal("Could not read sync state", zap.Error(err))
	}
	if watermark == nil {
		appLogger.Info("Empty replica, running initial sync", zap.String("role", cfg.Sync.Role))
		if err := puller.InitialSync(ctx, cfg.Sync.Role); err != nil {
			// Not fatal: the agent is useful offline and will catch up when
			// connectivity returns.
			appLogger.Warn("Initial sync failed, starting with empty replica", zap.Error(err))
		}
	}

	// 8. Start the background sync loop
	runner := syncPkg.NewRunner(syncPkg.RunnerConfig{
		Interval:    cfg.Sync.Interval,
		MaxAttempts: cfg.Sync.MaxAttempts,
	}, pusher, puller, obRepo, client, appLogger)
	runner.Start(ctx)

	// 9. Initialize Handlers and the local HTTP surface
	srv := server.New(server.Config{
		Addr:   cfg.Server.HTTPAddr,
		AppEnv: cfg.Server.AppEnv,
	}, server.Handlers{
		Products:  prodH.NewProductHandler(prodUC, appLogger),
		Inventory: invH.NewInventoryHandler(invUC, appLogger),
		Sales:     saleH.NewSaleHandler(saleUC, appLogger),
		Suppliers: supH.NewSupplierHandler(supUC, appLogger),
		Expenses:  expensePkg.NewHandler(expUC),
		Runner:    runner,
	}, appLogger)

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down agent...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown failed", zap.Error(err))
	}
	cancel()
	runner.Stop()
	appLogger.Info("Agent stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Server.AppEnv == "dev" {
		zapCfg := zap.NewDevelopmentConfig()
		zapCfg.DisableCaller = cfg.Logger.DisableCaller
		zapCfg.DisableStacktrace = cfg.Logger.DisableStacktrace
		return zapCfg.Build()
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Encoding = cfg.Logger.Encoding
	if lvl, err := zap.ParseAtomicLevel(cfg.Logger.Level); err == nil {
		zapCfg.Level = lvl
	}
	zapCfg.DisableCaller = cfg.Logger.DisableCaller
	zapCfg.DisableStacktrace = cfg.Logger.DisableStacktrace
	return zapCfg.Build()
}
