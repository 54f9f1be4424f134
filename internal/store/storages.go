package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-pseudo-ledger/internal/config"
	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
)

// Storages groups the repositories of the core behind one value that is
// handed to the service layer. All repositories share the same [DB], so a
// transaction opened through TxManager spans every one of them.
type Storages struct {
	TxManager          TxManager
	GroupRepository    GroupRepository
	IdentityRepository IdentityRepository
	LedgerRepository   LedgerRepository

	// Classificator tells retryable driver errors apart from final ones.
	Classificator ErrorClassificator

	db *DB
}

// NewStorages connects to the configured database, applies migrations and
// wires the repositories.
func NewStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Str("driver", cfg.DB.Driver).Msg("creating new storages...")

	db, err := NewConnect(ctx, cfg.DB, logger)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return NewStoragesFromDB(db, logger), nil
}

// NewStoragesFromDB wires the repositories to an already migrated database.
func NewStoragesFromDB(db *DB, logger *logger.Logger) *Storages {
	return &Storages{
		TxManager:          db,
		GroupRepository:    NewGroupRepository(db, logger),
		IdentityRepository: NewIdentityRepository(db, logger),
		LedgerRepository:   NewLedgerRepository(db, logger),
		Classificator:      db,
		db:                 db,
	}
}

// Ping checks that the database answers.
func (s *Storages) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrNoConnection
	}
	return s.db.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewConnect opens a connection for cfg.Driver.
func NewConnect(ctx context.Context, cfg config.DB, logger *logger.Logger) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := NewConnectPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("postgres connection error: %w", err)
		}
		return db, nil
	case config.DriverSQLite:
		db, err := NewConnectSQLite(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("sqlite connection error: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}
