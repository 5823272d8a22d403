package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrMigrationFailed indicates a migration failure.
var ErrMigrationFailed = errors.New("postgres: migration failed")

// Migration is one schema step.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

// Keys are compared as raw bytes, so ORDER BY key matches the ordering of
// the embedded backend.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_kv_records",
		UpSQL: `
CREATE TABLE IF NOT EXISTS kv_records (
    key BYTEA PRIMARY KEY,
    value BYTEA NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);`,
		DownSQL: `DROP TABLE IF EXISTS kv_records;`,
	},
}

const migrationTable = "schema_migrations"

// Migrator applies the embedded migrations and tracks them in
// schema_migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
}

// NewMigrator creates a migrator over the embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn, migrations: migrations}
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	return m.conn.WithTx(ctx, schemaTx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS `+migrationTable+` (
				version INTEGER PRIMARY KEY,
				name TEXT NOT NULL,
				applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			)`)
		if err != nil {
			return fmt.Errorf("failed to create migrations table: %w", err)
		}
		return nil
	})
}

func (m *Migrator) applied(ctx context.Context) (map[int]time.Time, error) {
	out := make(map[int]time.Time)
	err := m.conn.WithTx(ctx, readTx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, "SELECT version, applied_at FROM "+migrationTable+" ORDER BY version")
		if err != nil {
			return fmt.Errorf("failed to query applied migrations: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				version int
				at      time.Time
			)
			if err := rows.Scan(&version, &at); err != nil {
				return fmt.Errorf("failed to scan migration row: %w", err)
			}
			out[version] = at
		}
		return rows.Err()
	})
	return out, err
}

// Migrate applies all pending migrations, each in its own transaction.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, ok := done[mig.Version]; ok {
			continue
		}
		err := m.conn.WithTx(ctx, schemaTx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, "INSERT INTO "+migrationTable+" (version, name) VALUES ($1, $2)", mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}
	return nil
}

// Rollback reverts the last applied migration. No-op when nothing is applied.
func (m *Migrator) Rollback(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}

	last := 0
	for v := range done {
		if v > last {
			last = v
		}
	}
	if last == 0 {
		return nil
	}

	var mig *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == last {
			mig = &m.migrations[i]
			break
		}
	}
	if mig == nil || mig.DownSQL == "" {
		return fmt.Errorf("%w: missing down SQL for migration %d", ErrMigrationFailed, last)
	}

	return m.conn.WithTx(ctx, schemaTx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, mig.DownSQL); err != nil {
			return fmt.Errorf("failed to rollback migration %d: %w", last, err)
		}
		_, err := tx.Exec(ctx, "DELETE FROM "+migrationTable+" WHERE version = $1", last)
		return err
	})
}

// Status lists every known migration with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Migration, len(m.migrations))
	copy(out, m.migrations)
	for i := range out {
		if at, ok := done[out[i].Version]; ok {
			out[i].IsApplied = true
			out[i].AppliedAt = at
		}
	}
	return out, nil
}
