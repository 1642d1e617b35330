// Package app wires configuration, storage and services together for the
// binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"club-recon/internal/bank"
	"club-recon/internal/config"
	"club-recon/internal/events"
	"club-recon/internal/handler"
	"club-recon/internal/lease"
	"club-recon/internal/matcher"
	"club-recon/internal/repository"
	"club-recon/internal/repository/memory"
	"club-recon/internal/scheduler"
	"club-recon/internal/service"
	"club-recon/pkg/logger"
)

type App struct {
	Config    *config.Config
	Location  *time.Location
	DB        *sql.DB
	Store     *repository.Store
	Registry  *bank.Registry
	Publisher events.Publisher

	Ingest          service.IngestService
	Transactions    service.TransactionService
	Reconciliation  service.ReconciliationService
	ManualMatch     service.ManualMatchService
	Expiry          service.ExpiryService
	Ledger          service.LedgerService
	PaymentRequests service.PaymentRequestService
	Sync            service.SyncService
	Scheduler       *scheduler.Scheduler

	redis *redis.Client
}

// New connects to every configured backend. Close releases them.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Location: loc}

	switch cfg.App.Store {
	case "memory":
		logger.GetLogger().Warn("Using in-memory store, data is lost on exit")
		a.Store = memory.NewStore().Repositories()
	default:
		db, err := ConnectDB(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.DB = db
		a.Store = repository.NewPostgresStore(db)
		logger.GetLogger().Info("Database connection established")
	}

	providers, err := config.LoadProviders(cfg.Sync.ProvidersFile)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Registry, err = bank.NewRegistry(providers, loc)
	if err != nil {
		a.Close()
		return nil, err
	}

	var leases lease.Manager = lease.NewLocalManager()
	if cfg.Redis.Enabled() {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		leases = lease.NewRedisManager(a.redis, "club-recon:")
		logger.GetLogger().WithField("addr", cfg.Redis.Addr).Info("Redis sync leases enabled")
	}

	a.Publisher = events.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		a.Publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		logger.GetLogger().WithFields(map[string]interface{}{
			"brokers": cfg.Kafka.Brokers,
			"topic":   cfg.Kafka.Topic,
		}).Info("Kafka event publishing enabled")
	}

	engine := matcher.NewReconciliationEngine(nil, loc)
	retries := cfg.App.MatchMaxRetries

	a.Ingest = service.NewIngestService(a.Store.Transactions)
	a.Transactions = service.NewTransactionService(a.Store.Transactions)
	a.Reconciliation = service.NewReconciliationService(a.Store, engine, a.Publisher, retries)
	a.ManualMatch = service.NewManualMatchService(a.Store, a.Publisher, retries)
	a.Expiry = service.NewExpiryService(a.Store.Requests, a.Publisher)
	a.Ledger = service.NewLedgerService(a.Store.Ledger)
	a.PaymentRequests = service.NewPaymentRequestService(a.Store.Requests)
	a.Sync = service.NewSyncService(a.Registry, a.Store.Ledger, a.Ingest, a.Reconciliation, leases, a.Publisher, service.SyncOptions{
		FetchTimeout:    cfg.Sync.FetchTimeout,
		DefaultLookback: cfg.Sync.DefaultLookback,
		LeaseTTL:        cfg.Sync.LeaseTTL,
		Location:        loc,
	})
	a.Scheduler = scheduler.New(a.Registry, a.Sync, a.Expiry, scheduler.Config{
		SyncInterval:   cfg.Sync.Interval,
		ExpiryInterval: cfg.Sync.ExpiryInterval,
		MaxConcurrent:  cfg.Sync.MaxConcurrentSync,
	})

	return a, nil
}

func (a *App) Router() *gin.Engine {
	return handler.SetupRouter(handler.Handlers{
		Transactions:    handler.NewTransactionHandler(a.Ingest, a.Transactions),
		Reconciliation:  handler.NewReconciliationHandler(a.Sync, a.Reconciliation, a.ManualMatch, a.Expiry),
		PaymentRequests: handler.NewPaymentRequestHandler(a.PaymentRequests),
		Ledger:          handler.NewLedgerHandler(a.Ledger),
		Health:          a.health,
	})
}

// Migrate applies the schema. It is a no-op for the memory store.
func (a *App) Migrate(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	return repository.Migrate(ctx, a.DB)
}

func (a *App) Close() {
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			logger.GetLogger().WithError(err).Warn("Failed to close event publisher")
		}
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func (a *App) health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if a.DB != nil {
		if err := a.DB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func ConnectDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}
