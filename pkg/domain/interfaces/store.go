package interfaces

import (
	"context"

	"github.com/m-mizutani/ci-preview/pkg/domain/model"
)

// ConfigStore provides the current repository configuration snapshot
type ConfigStore interface {
	// Get returns the configuration for a repository URL, or false when absent
	Get(repositoryURL string) (*model.RepoAuth, bool)
}

// KVStore is a time-bounded key-value store. Entries expire a fixed
// duration after Put; expired entries are reported absent by Get.
// Implementations must be safe for concurrent use.
type KVStore[V any] interface {
	Put(ctx context.Context, key string, value V) error
	Get(ctx context.Context, key string) (V, bool, error)
	Delete(ctx context.Context, key string) error
}
