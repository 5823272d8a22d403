// Package lock serializes writers per entity key.
//
// Command handlers lock every key they mutate before opening a unit of work,
// so at most one writer per key is in flight. Keys are always acquired in
// sorted order, which rules out lock-order deadlocks between handlers that
// touch overlapping sets (a transfer locks both balances).
package lock

import (
	"context"
	"sort"
	"sync"
)

// Locker acquires a set of keys at once.
type Locker interface {
	// Lock blocks until every key is held or ctx is done. The returned
	// function releases all keys and is safe to call once.
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

// Keys normalizes a key set: drops blanks and duplicates and sorts.
func Keys(keys ...string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// IN-PROCESS KEYED MUTEX
// ══════════════════════════════════════════════════════════════════════════════

type entry struct {
	ch   chan struct{} // buffered(1); holding the token means holding the lock
	refs int
}

// Keyed is an in-process Locker. Entries are reference counted and removed
// when the last waiter leaves, so memory tracks only contended keys.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
}

var _ Locker = (*Keyed)(nil)

// NewKeyed creates an empty keyed mutex.
func NewKeyed() *Keyed {
	return &Keyed{entries: make(map[string]*entry)}
}

// Lock implements Locker.
func (k *Keyed) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = Keys(keys...)
	held := make([]string, 0, len(keys))

	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			k.release(held[i])
		}
	}

	for _, key := range keys {
		e := k.acquireRef(key)
		select {
		case e.ch <- struct{}{}:
			held = append(held, key)
		case <-ctx.Done():
			k.dropRef(key)
			release()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}

func (k *Keyed) acquireRef(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	return e
}

func (k *Keyed) dropRef(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e := k.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

func (k *Keyed) release(key string) {
	k.mu.Lock()
	e := k.entries[key]
	k.mu.Unlock()
	<-e.ch
	k.dropRef(key)
}

// Len returns the number of tracked keys.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
