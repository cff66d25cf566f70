// Package repoauth loads per-repository webhook secrets and target
// channels from a local file and keeps them current as the file changes.
package repoauth

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/m-mizutani/ci-preview/pkg/domain/model"
	"github.com/m-mizutani/ci-preview/pkg/utils/async"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Snapshot is an immutable view of the configuration file
type Snapshot struct {
	Version uint64
	entries map[string]*model.RepoAuth
}

// Len returns the number of configured repositories
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Entries returns a copy of all entries keyed by repository URL
func (s *Snapshot) Entries() map[string]model.RepoAuth {
	out := make(map[string]model.RepoAuth, len(s.entries))
	for k, v := range s.entries {
		out[k] = *v
	}
	return out
}

// Store owns the current snapshot. Readers always observe a complete
// snapshot; Reload publishes a new one only after it is fully built.
type Store struct {
	path     string
	current  atomic.Pointer[Snapshot]
	versions atomic.Uint64
}

// New creates a Store and loads path once. A load failure is returned
// to the caller; use Reload for keep-previous-on-failure behavior.
func New(path string) (*Store, error) {
	s := &Store{path: path}

	entries, err := Load(path)
	if err != nil {
		return nil, err
	}
	s.publish(entries)

	return s, nil
}

// Path returns the watched file path
func (s *Store) Path() string {
	return s.path
}

// Get returns the configuration for repositoryURL
func (s *Store) Get(repositoryURL string) (*model.RepoAuth, bool) {
	snap := s.current.Load()
	if snap == nil {
		return nil, false
	}

	auth, ok := snap.entries[model.NormalizeRepositoryURL(repositoryURL)]
	if !ok {
		return nil, false
	}
	copied := *auth
	return &copied, true
}

// Snapshot returns the currently published snapshot
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Reload reads the file again. On failure the previous snapshot stays
// in place and the error is returned.
func (s *Store) Reload(ctx context.Context) error {
	entries, err := Load(s.path)
	if err != nil {
		return err
	}

	snap := s.publish(entries)
	ctxlog.From(ctx).Info("Configuration reloaded",
		"path", s.path,
		"version", snap.Version,
		"repositories", snap.Len(),
	)
	return nil
}

func (s *Store) publish(entries map[string]*model.RepoAuth) *Snapshot {
	snap := &Snapshot{
		Version: s.versions.Add(1),
		entries: entries,
	}
	s.current.Store(snap)
	return snap
}

// Watch reloads the configuration whenever the file is written or
// replaced, until ctx is cancelled. The parent directory is watched so
// that editors replacing the file by rename are noticed.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create file watcher")
	}

	abs, err := filepath.Abs(s.path)
	if err != nil {
		_ = watcher.Close()
		return nil, goerr.Wrap(err, "failed to resolve config path", goerr.V("path", s.path))
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, goerr.Wrap(err, "failed to watch config directory", goerr.V("path", abs))
	}

	return async.Run(ctx, "config-watcher", func(ctx context.Context) error {
		defer watcher.Close()
		logger := ctxlog.From(ctx)

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				logger.Info("Config file changed, reloading", "path", abs, "op", event.Op.String())
				if err := s.Reload(ctx); err != nil {
					logger.Error("Failed to reload config, keeping existing config", "error", err)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn("File watcher error", "error", err)
			}
		}
	}), nil
}

// Load reads path and returns entries keyed by normalized repository
// URL. The format is chosen by extension: .toml for TOML, anything
// else is parsed as YAML.
func Load(path string) (map[string]*model.RepoAuth, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	named := map[string]model.RepoAuth{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(raw, &named); err != nil {
			return nil, goerr.Wrap(err, "failed to deserialize config file", goerr.V("path", path))
		}
	default:
		if err := yaml.Unmarshal(raw, &named); err != nil {
			return nil, goerr.Wrap(err, "failed to deserialize config file", goerr.V("path", path))
		}
	}

	if len(named) == 0 {
		return nil, goerr.New("no repository configured", goerr.V("path", path))
	}

	entries := make(map[string]*model.RepoAuth, len(named))
	for name, auth := range named {
		if err := auth.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid config entry", goerr.V("name", name), goerr.V("path", path))
		}

		auth.RepositoryURL = model.NormalizeRepositoryURL(auth.RepositoryURL)
		if _, dup := entries[auth.RepositoryURL]; dup {
			return nil, goerr.New("duplicated repository_url",
				goerr.V("name", name),
				goerr.V("repository_url", auth.RepositoryURL),
			)
		}
		entries[auth.RepositoryURL] = &auth
	}

	return entries, nil
}
