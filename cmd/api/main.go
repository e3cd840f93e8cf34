package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/event"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/usecase/purchase"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/usecase/settlement"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/broadcast"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/database/migration"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/fulfillment"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/httpclient"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/idgen"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/lock"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/memory"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/messaging"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/metrics"
	timeProvider "github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/config"
)

const healthCheckTimeout = 2 * time.Second

// persistenceLayer is what the selected database driver provides
type persistenceLayer struct {
	uow    persistence.UnitOfWork
	locker persistence.ConfirmationLocker
	checks map[string]handler.HealthCheck
	// run starts background maintenance, if any
	run   func(ctx context.Context)
	close func()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	warnings, err := cfg.Validate()
	if err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger, err := logger.NewZapLogger(logger.Options{
		Production: cfg.Logger.Format == "json",
		Level:      core.ParseLogLevel(cfg.Logger.Level),
		Service:    cfg.Logger.Service,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = appLogger.Flush() }()

	for _, w := range warnings {
		appLogger.Warn("Configuration warning", map[string]any{"warning": w})
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Service terminated with error", map[string]any{"error": err.Error()})
		_ = appLogger.Flush()
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger core.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp := timeProvider.NewRealTimeProvider()
	appMetrics := metrics.NewMetrics()

	store, err := setupPersistence(ctx, cfg, appLogger, tp, appMetrics)
	if err != nil {
		return err
	}
	defer store.close()

	if cfg.Redis.Enabled {
		client, err := lock.NewRedisClient(ctx, lock.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()

		store.locker = lock.NewRedisLocker(client, appLogger)
		store.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		appLogger.Info("Confirmation locks kept in redis", map[string]any{"addr": cfg.Redis.Addr})
	}

	ids, err := idgen.NewGenerator(cfg.Server.NodeID)
	if err != nil {
		return fmt.Errorf("failed to create id generator: %w", err)
	}

	ledgerService := ledger.NewLedger(store.uow, appMetrics, appLogger)

	gateway := fulfillment.NewHTTPGateway(
		httpclient.NewHTTPClient(cfg.Fulfillment.Timeout),
		fulfillment.Config{
			BaseURL: cfg.Fulfillment.BaseURL,
			APIKey:  cfg.Fulfillment.APIKey,
		},
		appLogger,
	)

	purchaseService := purchase.NewService(
		store.uow,
		ledgerService,
		gateway,
		store.locker,
		ids,
		tp,
		appMetrics,
		appLogger,
		purchase.Options{
			GatewayTimeout: cfg.Fulfillment.Timeout,
			LockTTL:        cfg.Confirmation.LockTTL,
		},
	)

	if cfg.Catalog.SeedDemo {
		if err := migration.SeedDemoCatalog(ctx, store.uow, ledgerService, appLogger); err != nil {
			return fmt.Errorf("failed to seed demo catalog: %w", err)
		}
	}

	hub := broadcast.NewHub(appLogger)
	publisher, closePublisher, err := setupPublisher(cfg, appLogger, hub)
	if err != nil {
		return err
	}
	defer closePublisher()

	relay := settlement.NewRelay(store.uow, publisher, tp, appMetrics, appLogger, settlement.Options{
		PollInterval: cfg.Settlement.PollInterval,
		BatchSize:    cfg.Settlement.BatchSize,
	})

	router := gin.New()
	routes.SetupMiddlewares(router, appLogger, tp, appMetrics, cfg.Server.AllowedOrigins)
	routes.SetupRoutes(router, routes.Handlers{
		Purchase:   handler.NewPurchaseHandler(purchaseService, appLogger),
		Balance:    handler.NewBalanceHandler(ledgerService, appLogger),
		Settlement: handler.NewSettlementHandler(hub, appLogger, cfg.Settlement.StreamHeartbeat),
		Health:     handler.NewHealthHandler(store.checks, tp, healthCheckTimeout, appLogger),
		Metrics:    appMetrics.Handler(),
	}, routes.AuthConfig{
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		AdminAPIKey: cfg.Auth.AdminAPIKey,
	}, appLogger)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	var background sync.WaitGroup
	background.Add(1)
	go func() {
		defer background.Done()
		if err := relay.Run(ctx); err != nil {
			appLogger.Error("Settlement relay stopped with error", map[string]any{"error": err.Error()})
		}
	}()
	if store.run != nil {
		background.Add(1)
		go func() {
			defer background.Done()
			store.run(ctx)
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr": server.Addr,
			"env":  cfg.Environment,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		appLogger.Info("Shutting down server...", nil)
	case err := <-serverErr:
		stop()
		background.Wait()
		return fmt.Errorf("failed to start server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{"error": err.Error()})
	}

	// one last flush so events committed just before shutdown are not left behind
	if _, err := relay.Flush(shutdownCtx); err != nil {
		appLogger.Warn("Final settlement flush failed", map[string]any{"error": err.Error()})
	}
	background.Wait()

	appLogger.Info("Server exited gracefully", nil)
	return nil
}

// setupPersistence connects the configured store and prepares its schema
func setupPersistence(
	ctx context.Context,
	cfg *config.Config,
	appLogger core.Logger,
	tp core.TimeProvider,
	appMetrics *metrics.Metrics,
) (*persistenceLayer, error) {
	if cfg.Database.Driver == database.DriverMemory {
		store := memory.NewStore(tp, appLogger)
		appLogger.Warn("Using in-memory store, data is lost on restart", nil)
		return &persistenceLayer{
			uow:    store,
			locker: store,
			checks: map[string]handler.HealthCheck{},
			close:  func() {},
		}, nil
	}

	dbManager := database.NewManager(&database.Config{
		Driver:          database.DriverPostgres,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		LogLevel:        cfg.Logger.Level,
		RetryAttempts:   cfg.Database.RetryAttempts,
		RetryDelay:      cfg.Database.RetryDelay,
	}, appLogger, tp)

	if _, err := dbManager.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := dbManager.MigrationManager().MigrateAll(ctx); err != nil {
		_ = dbManager.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if sqlDB, err := dbManager.SQLDB(); err == nil {
		appMetrics.Registry().MustRegister(collectors.NewDBStatsCollector(sqlDB, cfg.Database.Database))
	}

	lockRepo := dbManager.CreateConfirmationLocker()
	cleanupInterval := cfg.Confirmation.CleanupInterval

	return &persistenceLayer{
		uow:    dbManager.CreateUnitOfWork(),
		locker: lockRepo,
		checks: map[string]handler.HealthCheck{
			"database": dbManager.Ping,
		},
		run: func(ctx context.Context) {
			if cleanupInterval <= 0 {
				return
			}
			runLockCleanup(ctx, lockRepo, cleanupInterval, appLogger)
		},
		close: func() {
			if err := dbManager.Close(); err != nil {
				appLogger.Error("Failed to close database", map[string]any{"error": err.Error()})
			}
		},
	}, nil
}

type expiredLockCleaner interface {
	CleanupExpiredLocks(ctx context.Context) (int64, error)
}

// runLockCleanup purges expired confirmation locks until ctx is cancelled
func runLockCleanup(ctx context.Context, cleaner expiredLockCleaner, interval time.Duration, appLogger core.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := cleaner.CleanupExpiredLocks(ctx)
			if err != nil {
				continue
			}
			if removed > 0 {
				appLogger.Debug("Expired confirmation locks removed", map[string]any{"count": removed})
			}
		}
	}
}

// setupPublisher returns the settlement publisher: the broker (or the log when
// the broker is disabled) followed by the live stream hub
func setupPublisher(cfg *config.Config, appLogger core.Logger, hub *broadcast.Hub) (event.Publisher, func(), error) {
	if !cfg.RabbitMQ.Enabled {
		appLogger.Warn("RabbitMQ disabled, settlement events are only logged", nil)
		return messaging.NewFanoutPublisher(appLogger, messaging.NewLogPublisher(appLogger), hub), func() {}, nil
	}

	rmq, err := messaging.NewConnection(messaging.Config{
		URL:      cfg.RabbitMQ.URL,
		Exchange: cfg.RabbitMQ.Exchange,
	}, appLogger)
	if err != nil {
		return nil, nil, err
	}

	if err := rmq.DeclareExchange(cfg.RabbitMQ.Exchange); err != nil {
		_ = rmq.Close()
		return nil, nil, err
	}

	rabbitPublisher, err := rmq.CreateSettlementPublisher(cfg.RabbitMQ.Exchange)
	if err != nil {
		_ = rmq.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := rabbitPublisher.Close(); err != nil {
			appLogger.Warn("Failed to close settlement publisher", map[string]any{"error": err.Error()})
		}
		if err := rmq.Close(); err != nil {
			appLogger.Warn("Failed to close RabbitMQ connection", map[string]any{"error": err.Error()})
		}
	}

	return messaging.NewFanoutPublisher(appLogger, rabbitPublisher, hub), closeFn, nil
}
