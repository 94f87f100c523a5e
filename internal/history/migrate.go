package history

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"fjacquet/statement-compare/internal/logging"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var historyMigrations embed.FS

// schemaTable keeps the history schema version apart from any other
// migrations sharing the database file.
const schemaTable = "history_schema_migrations"

// ErrDirtySchema is returned when an earlier migration stopped half way.
var ErrDirtySchema = errors.New("history schema is dirty")

// RunMigrations brings the history schema of the database at dbPath up to
// date and returns the resulting schema version. The migrator gets its own
// connection because it closes the handle it is given.
func RunMigrations(dbPath string, logger logging.Logger) (uint, error) {
	logger = logging.OrDefault(logger)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open migration database: %w", err)
	}
	defer func() { _ = conn.Close() }()

	target, err := sqlite.WithInstance(conn, &sqlite.Config{MigrationsTable: schemaTable})
	if err != nil {
		return 0, fmt.Errorf("create sqlite migration driver: %w", err)
	}
	scripts, err := iofs.New(historyMigrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("load history migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", scripts, "sqlite", target)
	if err != nil {
		return 0, fmt.Errorf("create migrator: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	before, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		before = 0
	case err != nil:
		return 0, fmt.Errorf("read history schema version: %w", err)
	case dirty:
		return before, fmt.Errorf("%w at version %d", ErrDirtySchema, before)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return before, fmt.Errorf("migrate history schema: %w", err)
	}

	after, _, err := m.Version()
	if err != nil {
		return before, fmt.Errorf("read history schema version: %w", err)
	}
	if after != before {
		logger.Info("History schema migrated",
			logging.F(logging.FieldPath, dbPath),
			logging.F("from_version", before),
			logging.F("to_version", after))
	}
	return after, nil
}
