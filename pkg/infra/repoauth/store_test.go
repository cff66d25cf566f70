package repoauth_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/ci-preview/pkg/domain/types"
	"github.com/m-mizutani/ci-preview/pkg/infra/repoauth"
	"github.com/m-mizutani/gt"
)

const configYAML = `
example:
  repository_url: https://github.com/example/mod/
  webhook_secret: example-secret
  channel_id: C0001
other:
  repository_url: https://github.com/example/other
  webhook_secret: other-secret
  channel_id: C0002
`

const configTOML = `
[example]
repository_url = "https://github.com/example/mod"
webhook_secret = "example-secret"
channel_id = "C0001"
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestNew_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	writeFile(t, path, configYAML)

	store, err := repoauth.New(path)
	gt.NoError(t, err)
	gt.Equal(t, store.Snapshot().Len(), 2)

	auth, ok := store.Get("https://github.com/example/mod")
	gt.True(t, ok)
	gt.Equal(t, auth.WebhookSecret, "example-secret")
	gt.Equal(t, auth.ChannelID, types.ChannelID("C0001"))

	// Lookup is insensitive to a trailing slash
	_, ok = store.Get("https://github.com/example/other/")
	gt.True(t, ok)

	_, ok = store.Get("https://github.com/example/unknown")
	gt.False(t, ok)
}

func TestNew_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, configTOML)

	store, err := repoauth.New(path)
	gt.NoError(t, err)

	auth, ok := store.Get("https://github.com/example/mod")
	gt.True(t, ok)
	gt.Equal(t, auth.ChannelID, types.ChannelID("C0001"))
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "broken yaml", content: "example: ["},
		{name: "empty file", content: ""},
		{name: "missing secret", content: "a:\n  repository_url: https://github.com/a/b\n  channel_id: C1\n"},
		{
			name: "duplicated url",
			content: "a:\n  repository_url: https://github.com/a/b\n  webhook_secret: s\n  channel_id: C1\n" +
				"b:\n  repository_url: https://github.com/a/b/\n  webhook_secret: s\n  channel_id: C2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yml")
			writeFile(t, path, tt.content)

			_, err := repoauth.New(path)
			gt.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := repoauth.New(filepath.Join(t.TempDir(), "none.yml"))
		gt.Error(t, err)
	})
}

func TestStore_Get_ReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	writeFile(t, path, configYAML)

	store, err := repoauth.New(path)
	gt.NoError(t, err)

	auth, _ := store.Get("https://github.com/example/mod")
	auth.WebhookSecret = "mutated"

	again, _ := store.Get("https://github.com/example/mod")
	gt.Equal(t, again.WebhookSecret, "example-secret")
}

func TestStore_Reload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "config.yml")
	writeFile(t, path, configYAML)

	store, err := repoauth.New(path)
	gt.NoError(t, err)
	first := store.Snapshot()

	t.Run("failed reload keeps previous snapshot", func(t *testing.T) {
		writeFile(t, path, "example: [")
		gt.Error(t, store.Reload(ctx))
		gt.Equal(t, store.Snapshot(), first)

		_, ok := store.Get("https://github.com/example/mod")
		gt.True(t, ok)
	})

	t.Run("successful reload publishes new snapshot", func(t *testing.T) {
		writeFile(t, path, rotatedYAML)
		gt.NoError(t, store.Reload(ctx))

		snap := store.Snapshot()
		gt.True(t, snap.Version > first.Version)
		gt.Equal(t, snap.Len(), 1)

		_, ok := store.Get("https://github.com/example/other")
		gt.False(t, ok)
	})
}

const rotatedYAML = `
example:
  repository_url: https://github.com/example/mod
  webhook_secret: rotated-secret
  channel_id: C0009
`

func TestStore_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "config.yml")
	writeFile(t, path, configYAML)

	store, err := repoauth.New(path)
	gt.NoError(t, err)

	done, err := store.Watch(ctx)
	gt.NoError(t, err)

	writeFile(t, path, rotatedYAML)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if auth, ok := store.Get("https://github.com/example/mod"); ok && auth.WebhookSecret == "rotated-secret" {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	auth, ok := store.Get("https://github.com/example/mod")
	gt.True(t, ok)
	gt.Equal(t, auth.WebhookSecret, "rotated-secret")
	gt.Equal(t, auth.ChannelID, types.ChannelID("C0009"))

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
