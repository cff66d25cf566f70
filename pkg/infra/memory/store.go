// Package memory provides a process-local time-bounded key-value store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/ci-preview/pkg/utils/async"
)

type config struct {
	now func() time.Time
}

// Option configures a Store
type Option func(*config)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store is an in-memory map whose entries expire ttl after insertion.
// Expiry is checked on every read, so a sweep is only needed to
// reclaim memory.
type Store[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]entry[V]
}

// New creates a Store with the given time-to-live
func New[V any](ttl time.Duration, opts ...Option) *Store[V] {
	cfg := &config{now: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Store[V]{
		ttl:     ttl,
		now:     cfg.now,
		entries: make(map[string]entry[V]),
	}
}

// Put inserts or replaces value under key with a fresh expiry
func (s *Store[V]) Put(_ context.Context, key string, value V) error {
	expiresAt := s.now().Add(s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[V]{value: value, expiresAt: expiresAt}
	return nil
}

// Get returns the value under key unless it is missing or expired
func (s *Store[V]) Get(_ context.Context, key string) (V, bool, error) {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		var zero V
		return zero, false, nil
	}
	return e.value, true, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store[V]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Len returns the number of stored entries, including expired ones not yet swept
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes expired entries and returns how many were removed
func (s *Store[V]) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is cancelled. The
// returned channel is closed when the sweeper has stopped.
func (s *Store[V]) StartSweeper(ctx context.Context, name string, interval time.Duration) <-chan struct{} {
	return async.Run(ctx, name, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				s.Sweep()
			}
		}
	})
}
