// Package firestore provides a time-bounded key-value store shared by
// several service instances.
package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewClient creates a Firestore client for the given project and database.
// An empty databaseID selects the default database.
func NewClient(ctx context.Context, projectID, databaseID string) (*firestore.Client, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID),
		)
	}
	return client, nil
}

type document[V any] struct {
	Value     V         `firestore:"value"`
	ExpiresAt time.Time `firestore:"expires_at"`
}

// Store keeps entries as documents of one collection. Each document
// carries an expires_at field; reads treat expired documents as absent,
// and a Firestore TTL policy on expires_at reclaims them server side.
type Store[V any] struct {
	client     *firestore.Client
	collection string
	ttl        time.Duration
	now        func() time.Time
}

// Option configures a Store
type Option func(*config)

type config struct {
	now func() time.Time
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// New creates a Store on collection with the given time-to-live
func New[V any](client *firestore.Client, collection string, ttl time.Duration, opts ...Option) *Store[V] {
	cfg := &config{now: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Store[V]{
		client:     client,
		collection: collection,
		ttl:        ttl,
		now:        cfg.now,
	}
}

func (s *Store[V]) doc(key string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(strings.ReplaceAll(key, "/", "_"))
}

// Put writes value under key with a fresh expiry
func (s *Store[V]) Put(ctx context.Context, key string, value V) error {
	d := document[V]{
		Value:     value,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}
	if _, err := s.doc(key).Set(ctx, d); err != nil {
		return goerr.Wrap(err, "failed to put document",
			goerr.V("collection", s.collection),
			goerr.V("key", key),
		)
	}
	return nil
}

// Get reads the value under key unless it is missing or expired
func (s *Store[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V

	snap, err := s.doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return zero, false, nil
		}
		return zero, false, goerr.Wrap(err, "failed to get document",
			goerr.V("collection", s.collection),
			goerr.V("key", key),
		)
	}

	var d document[V]
	if err := snap.DataTo(&d); err != nil {
		return zero, false, goerr.Wrap(err, "failed to decode document",
			goerr.V("collection", s.collection),
			goerr.V("key", key),
		)
	}

	if !s.now().Before(d.ExpiresAt) {
		return zero, false, nil
	}
	return d.Value, true, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store[V]) Delete(ctx context.Context, key string) error {
	if _, err := s.doc(key).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete document",
			goerr.V("collection", s.collection),
			goerr.V("key", key),
		)
	}
	return nil
}
