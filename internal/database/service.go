package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"ledger-service/internal/models"
	"ledger-service/internal/store"
)

// Service is the SQLite backed store.Store
type Service struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    models.DatabaseConfig
}

func NewService(ctx context.Context, logger *zap.Logger, cfg models.DatabaseConfig) (*Service, error) {
	logger.Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", dataSourceName(cfg))
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db, logger: logger, cfg: cfg}
	if err := service.InitSchema(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	logger.Info("Database service initialized successfully")
	return service, nil
}

// dataSourceName builds the go-sqlite3 DSN. _txlock=immediate makes every
// BeginTx take the database write lock up front, so a unit of work never
// observes a row another writer is about to change.
func dataSourceName(cfg models.DatabaseConfig) string {
	return fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_foreign_keys=on&_txlock=immediate&_busy_timeout=%d",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
}

func (s *Service) InitSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, querySchema)
	return err
}

func (s *Service) Close() error {
	return s.db.Close()
}

func (s *Service) Accounts() store.AccountStore {
	return &accountRepo{q: s.db, logger: s.logger}
}

func (s *Service) Ledger() store.TransactionLedger {
	return &ledgerRepo{q: s.db, logger: s.logger}
}

var _ store.Store = (*Service)(nil)
