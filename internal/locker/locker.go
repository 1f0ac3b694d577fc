package locker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auction-house/internal/auctionerrors"
)

// KeyedLock provides mutual exclusion scoped to a string key. Sections for
// different keys never block each other. Entries are reference-counted and
// removed from the table once no caller holds or waits on them, so the table
// only grows with the number of concurrently contended keys.
type KeyedLock struct {
	mu      sync.Mutex
	maxWait time.Duration
	entries map[string]*lockEntry
}

type lockEntry struct {
	sem  chan struct{} // buffered size 1, holding the token means holding the lock
	refs int
}

// NewKeyedLock creates an empty lock table. maxWait bounds how long Acquire
// blocks waiting for a contended key; zero means waiting is bounded only by
// the caller's context.
func NewKeyedLock(maxWait time.Duration) *KeyedLock {
	return &KeyedLock{
		maxWait: maxWait,
		entries: make(map[string]*lockEntry),
	}
}

// Acquire obtains the lock for key, blocking until the current holder releases
// it, ctx expires, or the wait bound passes. On success it returns an unlock
// function that must be called exactly when the exclusive section completes;
// the function is safe to call more than once. A timed-out wait returns
// ErrBusy.
func (kl *KeyedLock) Acquire(ctx context.Context, key string) (func(), error) {
	if kl.maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, kl.maxWait)
		defer cancel()
	}

	kl.mu.Lock()
	e, ok := kl.entries[key]
	if !ok {
		e = &lockEntry{sem: make(chan struct{}, 1)}
		kl.entries[key] = e
	}
	e.refs++
	kl.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		kl.release(key, e)
		return nil, fmt.Errorf("acquire lock for %s: %w", key, auctionerrors.ErrBusy)
	}

	released := false
	unlock := func() {
		if released {
			return
		}
		released = true
		<-e.sem
		kl.release(key, e)
	}
	return unlock, nil
}

// release drops one reference and deletes the entry when uncontended
func (kl *KeyedLock) release(key string, e *lockEntry) {
	kl.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(kl.entries, key)
	}
	kl.mu.Unlock()
}

// Len reports the number of live lock entries. Intended for tests.
func (kl *KeyedLock) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.entries)
}
