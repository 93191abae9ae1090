package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"ledger-service/internal/api"
	"ledger-service/internal/database"
	"ledger-service/internal/metrics"
	"ledger-service/internal/models"
	"ledger-service/internal/store"
	"ledger-service/internal/store/memory"
)

type Services struct {
	Logger  *zap.Logger
	Store   store.Store
	Ledger  *api.LedgerService
	Metrics *metrics.Collector
}

// InitializeLogger builds a production logger at the given level and
// installs it as the global logger
func InitializeLogger(level string) (*zap.Logger, func()) {
	zapConfig := zap.NewProductionConfig()
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			log.Fatalf("Invalid log level %q: %v", level, err)
		}
		zapConfig.Level = zap.NewAtomicLevelAt(parsed)
	}

	logger, err := zapConfig.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	undo := zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
		undo()
	}

	return logger, cleanup
}

// OpenStore opens the storage backend selected by cfg.Driver
func OpenStore(ctx context.Context, logger *zap.Logger, cfg models.DatabaseConfig) (store.Store, error) {
	switch cfg.Driver {
	case models.DriverSQLite, "":
		logger.Info("Connecting to database", zap.String("path", cfg.Path))
		dbService, err := database.NewService(ctx, logger, cfg)
		if err != nil {
			return nil, err
		}
		return dbService, nil
	case models.DriverMemory:
		logger.Info("Using in-memory store")
		return memory.NewStore(logger), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

func InitializeServices(ctx context.Context, logger *zap.Logger, cfg *models.Config) (*Services, error) {
	st, err := OpenStore(ctx, logger, cfg.Database)
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector(logger)
	ledger := api.NewLedgerService(st, logger, collector)

	if err := ledger.HealthCheck(ctx); err != nil {
		st.Close()
		return nil, err
	}

	return &Services{
		Logger:  logger,
		Store:   st,
		Ledger:  ledger,
		Metrics: collector,
	}, nil
}

func (cs *Services) Close() {
	if cs.Store != nil {
		if err := cs.Store.Close(); err != nil {
			cs.Logger.Warn("Failed to close store", zap.Error(err))
		}
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
