package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/go-pseudo-ledger/internal/config"
	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
)

// sqliteParams are forced onto every SQLite DSN: foreign keys for the
// cascades, IMMEDIATE transactions so a read-then-write transaction holds
// the write lock from BEGIN, and a busy timeout instead of instant SQLITE_BUSY.
var sqliteParams = []string{"_foreign_keys=on", "_txlock=immediate", "_busy_timeout=5000"}

func NewConnectSQLite(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite3", sqliteDSN(cfg.DSN))
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	// one writer at a time; also keeps an in-memory database alive
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	// ping database
	err = conn.PingContext(ctx)
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database (ping)")
		conn.Close()
		return nil, err
	}
	log.Debug().Str("func", "NewConnectSQLite").Msg("connected to database successfully")

	// construct a DB struct
	db := &DB{
		DB:                 conn,
		dialect:            DialectSQLite,
		logger:             log,
		errorClassificator: NewSQLiteErrorClassifier(),
	}

	return db, nil
}

func sqliteDSN(dsn string) string {
	var b strings.Builder
	b.WriteString(dsn)

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	for _, p := range sqliteParams {
		name := p[:strings.IndexByte(p, '=')+1]
		if strings.Contains(dsn, name) {
			continue
		}
		b.WriteString(sep)
		b.WriteString(p)
		sep = "&"
	}

	return b.String()
}

func sqliteError(err error) (sqlite3.Error, bool) {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr, true
	}
	return sqlite3.Error{}, false
}
