package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/httpfs"
)

// LatestMigrationVersion is the latest migration version of the
// database, used to implement downgrade protection.
//
// NOTE: This MUST be updated when a new migration is added.
const LatestMigrationVersion uint = 1

// ErrMigrationDowngrade is returned when a database downgrade is
// detected.
var ErrMigrationDowngrade = errors.New("database downgrade detected")

// sqlSchemas embeds the SQL migration files at compile time for
// portability.
//
//go:embed migrations/*.sql
var sqlSchemas embed.FS

// migrationLogger wraps slog.Logger to implement the migrate.Logger
// interface.
type migrationLogger struct {
	log *slog.Logger
}

// Printf implements the migrate.Logger interface.
func (m *migrationLogger) Printf(format string, v ...any) {
	m.log.Info(fmt.Sprintf(strings.TrimRight(format, "\n"), v...))
}

// Verbose returns true when verbose logging is enabled.
func (m *migrationLogger) Verbose() bool {
	return true
}

// ApplyMigrations brings the database schema up to the latest version
// using the embedded migration files. Databases newer than this binary
// understands are refused rather than downgraded, since down
// migrations can drop data.
func ApplyMigrations(sqlDB *sql.DB, log *slog.Logger) error {
	driver, err := migratesqlite.WithInstance(
		sqlDB, &migratesqlite.Config{},
	)
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	src, err := httpfs.New(http.FS(sqlSchemas), "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	mig, err := migrate.NewWithInstance(
		"migrations", src, "agrisense", driver,
	)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	mig.Log = &migrationLogger{log}

	version, dirty, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("unable to determine current migration "+
			"version: %w", err)
	}

	// A dirty version means a previous migration died halfway and
	// needs manual intervention before we touch anything else.
	if dirty {
		return fmt.Errorf("database is in a dirty state at "+
			"version %v, manual intervention required", version)
	}

	if version > LatestMigrationVersion {
		return fmt.Errorf("%w: db_version=%v, "+
			"latest_migration_version=%v",
			ErrMigrationDowngrade, version,
			LatestMigrationVersion)
	}

	if err := mig.Up(); err != nil &&
		!errors.Is(err, migrate.ErrNoChange) {

		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
