package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/hashicorp/go-multierror"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies all pending up migrations for the client's dialect.
func (c *Client) Migrate() error {
	return c.withMigrator(func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration failed: %w", err)
		}
		return nil
	})
}

// MigrateDown rolls back every applied migration.
func (c *Client) MigrateDown() error {
	return c.withMigrator(func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration rollback failed: %w", err)
		}
		return nil
	})
}

// MigrationVersion reports the applied schema version. ok is false when no
// migration has run yet.
func (c *Client) MigrationVersion() (version uint, dirty bool, ok bool, err error) {
	err = c.withMigrator(func(m *migrate.Migrate) error {
		var verr error
		version, dirty, verr = m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			return nil
		}
		if verr != nil {
			return fmt.Errorf("failed to read migration version: %w", verr)
		}
		ok = true
		return nil
	})
	if err != nil {
		return 0, false, false, err
	}
	return version, dirty, ok, nil
}

// withMigrator runs fn on a migrator backed by a pool of its own, closed when
// fn returns. Closing a migrator closes its *sql.DB, and the postgres driver
// pins one connection for the migrator's lifetime.
//
// In-memory SQLite and pools wrapped by NewClient have no reopenable DSN; those
// migrate on the shared pool and the migrator is left open.
func (c *Client) withMigrator(fn func(m *migrate.Migrate) error) (err error) {
	db, shared := c.db, true
	if c.dsn != "" && !strings.Contains(c.dsn, ":memory:") {
		db, err = sql.Open(c.driver, c.dsn)
		if err != nil {
			return fmt.Errorf("failed to open migration connection: %w", err)
		}
		shared = false
	}

	m, err := newMigrator(db, c.driver)
	if err != nil {
		if !shared {
			_ = db.Close()
		}
		return err
	}
	if shared {
		return fn(m)
	}

	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr == nil && dbErr == nil {
			return
		}
		var result *multierror.Error
		if err != nil {
			result = multierror.Append(result, err)
		}
		if srcErr != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close migration source: %w", srcErr))
		}
		if dbErr != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close migration connection: %w", dbErr))
		}
		err = result.ErrorOrNil()
	}()
	return fn(m)
}

func newMigrator(db *sql.DB, driverName string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations/"+driverName)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations for %s: %w", driverName, err)
	}

	var driver migratedb.Driver
	switch driverName {
	case DriverPostgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	case DriverSQLite:
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driverName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}
