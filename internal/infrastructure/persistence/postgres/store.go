package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/studyhub/internal/infrastructure/persistence/kv"
	"github.com/alem-hub/studyhub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// KV STORE
// ══════════════════════════════════════════════════════════════════════════════

// Store is a kv.Store on the kv_records table.
type Store struct {
	conn *Connection
}

var _ kv.Store = (*Store)(nil)

// NewStore wraps an open connection. Run the Migrator first.
func NewStore(conn *Connection) *Store {
	return &Store{conn: conn}
}

// View runs fn in a read-only repeatable-read snapshot.
func (s *Store) View(ctx context.Context, fn func(kv.Txn) error) error {
	if s.conn.IsClosed() {
		return kv.ErrClosed
	}
	return s.conn.WithTx(ctx, readTx, func(tx pgx.Tx) error {
		return fn(&pgTxn{tx: tx, readOnly: true})
	})
}

// Update runs fn in a serializable transaction. Serialization failures are
// reported as a retryable kv.ErrConflict.
func (s *Store) Update(ctx context.Context, fn func(kv.Txn) error) error {
	if s.conn.IsClosed() {
		return kv.ErrClosed
	}
	err := s.conn.WithTx(ctx, writeTx, func(tx pgx.Tx) error {
		return fn(&pgTxn{tx: tx})
	})
	if err != nil && IsSerializationFailure(err) {
		return retry.Retryable(fmt.Errorf("%w: %v", kv.ErrConflict, err))
	}
	return err
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the pool.
func (s *Store) Close() error {
	s.conn.Close()
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────

type pgTxn struct {
	tx       pgx.Tx
	readOnly bool
}

func (t *pgTxn) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := t.tx.QueryRow(ctx, `SELECT value FROM kv_records WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if IsNoRows(err) {
			return nil, kv.ErrKeyNotFound
		}
		return nil, fmt.Errorf("postgres: get: %w", err)
	}
	return value, nil
}

func (t *pgTxn) Set(ctx context.Context, key, value []byte) error {
	if t.readOnly {
		return kv.ErrReadOnly
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO kv_records (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	if err != nil {
		return fmt.Errorf("postgres: set: %w", err)
	}
	return nil
}

func (t *pgTxn) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error {
	var (
		rows pgx.Rows
		err  error
	)
	if end := kv.PrefixEnd(prefix); end != nil {
		rows, err = t.tx.Query(ctx,
			`SELECT key, value FROM kv_records WHERE key >= $1 AND key < $2 ORDER BY key`, prefix, end)
	} else {
		rows, err = t.tx.Query(ctx,
			`SELECT key, value FROM kv_records WHERE key >= $1 ORDER BY key`, prefix)
	}
	if err != nil {
		return fmt.Errorf("postgres: scan: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("postgres: scan row: %w", err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return rows.Err()
}
