// Package kv defines the ordered key-value contract that every record store
// backend implements. Keys are compared bytewise; scans return keys in
// ascending order.
package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/alem-hub/studyhub/internal/domain/shared"
)

var (
	// ErrKeyNotFound is returned by Txn.Get for absent keys.
	ErrKeyNotFound = errors.New("kv: key not found")

	// ErrConflict is returned by Store.Update when a concurrent writer won.
	// The unit of work is safe to retry; backends return it marked with
	// retry.Retryable.
	ErrConflict = fmt.Errorf("kv: transaction conflict: %w", shared.ErrConcurrentModification)

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("kv: store closed")

	// ErrReadOnly is returned by Set inside View.
	ErrReadOnly = errors.New("kv: read-only transaction")
)

// Txn is one transaction. It is not safe for concurrent use.
type Txn interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Set(ctx context.Context, key, value []byte) error
	// Scan calls fn for every key with prefix, in ascending key order.
	// Returning an error from fn stops the scan and is returned as is.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error
}

// Store runs transactions.
type Store interface {
	View(ctx context.Context, fn func(Txn) error) error
	// Update commits when fn returns nil and discards every write otherwise.
	Update(ctx context.Context, fn func(Txn) error) error
	Ping(ctx context.Context) error
	Close() error
}

// PrefixEnd returns the smallest key greater than every key with prefix,
// or nil when no such key exists.
func PrefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
