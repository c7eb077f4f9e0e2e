// Package sqlite implementa el adapter SQLite (modernc, sin cgo) para dev, tests
// y despliegues de un solo nodo.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	sqlite3 "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
	store "github.com/dropDatabas3/keyward/internal/store"
	sqlitemigrations "github.com/dropDatabas3/keyward/migrations/sqlite"
)

func init() {
	store.RegisterAdapter(&sqliteAdapter{})
}

type sqliteAdapter struct{}

func (a *sqliteAdapter) Name() string { return "sqlite" }

func (a *sqliteAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	db, err := sql.Open("sqlite", withPragmas(cfg.DSN))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// Un único writer: las transacciones quedan serializadas por el pool.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return &sqliteConnection{db: db}, nil
}

// withPragmas agrega busy_timeout y foreign_keys al DSN si no vienen.
func withPragmas(dsn string) string {
	if dsn == "" {
		dsn = "file::memory:"
	}
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

type sqliteConnection struct {
	db *sql.DB
}

func (c *sqliteConnection) Name() string { return "sqlite" }

func (c *sqliteConnection) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }

func (c *sqliteConnection) Close() error { return c.db.Close() }

func (c *sqliteConnection) Keys() repository.KeyRepository       { return &keyRepo{db: c.db} }
func (c *sqliteConnection) Clients() repository.ClientRepository { return &clientRepo{db: c.db} }

// Migrate aplica las migraciones embebidas con goose.
func (c *sqliteConnection) Migrate(ctx context.Context) error {
	provider, err := goose.NewProvider(database.DialectSQLite3, c.db, sqlitemigrations.FS)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func rollback(tx *sql.Tx) { _ = tx.Rollback() }
