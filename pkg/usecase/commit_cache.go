package usecase

import (
	"context"

	"github.com/m-mizutani/ci-preview/pkg/domain/interfaces"
	"github.com/m-mizutani/ci-preview/pkg/domain/model"
	"github.com/m-mizutani/ci-preview/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// CommitCache remembers the commits of recent pushes by head SHA, so a
// workflow run for that SHA can list what it builds.
type CommitCache struct {
	store interfaces.KVStore[[]model.CommitRecord]
}

// NewCommitCache creates a CommitCache on top of a time-bounded store
func NewCommitCache(store interfaces.KVStore[[]model.CommitRecord]) *CommitCache {
	return &CommitCache{store: store}
}

// Put stores commits under sha. An existing entry is replaced, never modified.
func (c *CommitCache) Put(ctx context.Context, sha types.CommitSHA, commits []model.CommitRecord) error {
	if err := c.store.Put(ctx, sha.String(), commits); err != nil {
		return goerr.Wrap(err, "failed to cache commits", goerr.V("sha", sha), goerr.V("count", len(commits)))
	}
	return nil
}

// Get returns the commits cached for sha
func (c *CommitCache) Get(ctx context.Context, sha types.CommitSHA) ([]model.CommitRecord, bool, error) {
	commits, ok, err := c.store.Get(ctx, sha.String())
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to get cached commits", goerr.V("sha", sha))
	}
	return commits, ok, nil
}
