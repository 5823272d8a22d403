// Package badger implements the kv.Store contract on an embedded BadgerDB.
//
// BadgerDB runs optimistic serializable transactions: a commit that read a
// key written by a concurrent commit fails with a retryable kv.ErrConflict
// and the caller retries the whole unit of work.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/alem-hub/studyhub/internal/infrastructure/persistence/kv"
	"github.com/alem-hub/studyhub/pkg/logger"
	"github.com/alem-hub/studyhub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds configuration for a BadgerDB instance.
type Config struct {
	// Path is the directory for database files. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// GCInterval is how often value log GC runs. Zero disables it.
	GCInterval time.Duration

	// GCDiscardRatio is the garbage ratio that triggers a rewrite.
	GCDiscardRatio float64

	// Logger receives BadgerDB's internal messages. Nil silences them.
	Logger *logger.Logger
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts the service logger to BadgerDB's Logger interface.
type badgerLogger struct {
	log *logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.log.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.log.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.log.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.log.Debugf(format, args...) }

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Store is a kv.Store backed by BadgerDB.
type Store struct {
	db     *badger.DB
	log    *logger.Logger
	stopGC chan struct{}
	gcDone chan struct{}

	mu     sync.RWMutex
	closed bool
}

var _ kv.Store = (*Store)(nil)

// Open opens the database and starts value log GC when configured.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger: path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("badger: create directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	log := cfg.Logger
	if log != nil {
		opts = opts.WithLogger(&badgerLogger{log: log.Named("badger")})
	} else {
		log = logger.Nop()
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open: %w", err)
	}

	s := &Store{db: db, log: log}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.stopGC = make(chan struct{})
		s.gcDone = make(chan struct{})
		go s.runGC(cfg.GCInterval, cfg.GCDiscardRatio)
	}
	return s, nil
}

// OpenInMemory opens an in-memory store.
func OpenInMemory() (*Store, error) {
	return Open(InMemoryConfig())
}

// View runs fn in a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(kv.Txn) error) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	defer s.mu.RUnlock()

	return s.db.View(func(txn *badger.Txn) error {
		return fn(&badgerTxn{txn: txn, readOnly: true})
	})
}

// Update runs fn in a read-write transaction.
func (s *Store) Update(ctx context.Context, fn func(kv.Txn) error) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	defer s.mu.RUnlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		return fn(&badgerTxn{txn: txn})
	})
	if errors.Is(err, badger.ErrConflict) {
		return retry.Retryable(kv.ErrConflict)
	}
	return err
}

// Ping reports whether the store is open.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mu.RUnlock()
	return nil
}

// Close stops GC and closes the database. Safe to call twice.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.stopGC != nil {
		close(s.stopGC)
		<-s.gcDone
	}
	return s.db.Close()
}

// check takes the read lock on success; the caller must release it.
func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return kv.ErrClosed
	}
	return nil
}

func (s *Store) runGC(interval time.Duration, ratio float64) {
	defer close(s.gcDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			err := s.db.RunValueLogGC(ratio)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				s.log.Warn("value log GC failed", logger.Err(err))
			}
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSACTION
// ══════════════════════════════════════════════════════════════════════════════

type badgerTxn struct {
	txn      *badger.Txn
	readOnly bool
}

func (t *badgerTxn) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	item, err := t.txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, kv.ErrKeyNotFound
		}
		return nil, fmt.Errorf("badger: get: %w", err)
	}
	return item.ValueCopy(nil)
}

func (t *badgerTxn) Set(ctx context.Context, key, value []byte) error {
	if t.readOnly {
		return kv.ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.txn.Set(key, value); err != nil {
		return fmt.Errorf("badger: set: %w", err)
	}
	return nil
}

func (t *badgerTxn) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := t.txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		item := it.Item()
		value, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("badger: scan value: %w", err)
		}
		if err := fn(item.KeyCopy(nil), value); err != nil {
			return err
		}
	}
	return nil
}
