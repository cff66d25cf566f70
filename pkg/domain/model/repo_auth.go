package model

import (
	"strings"

	"github.com/m-mizutani/ci-preview/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// RepoAuth binds a repository to its webhook secret and target channel
type RepoAuth struct {
	RepositoryURL string          `yaml:"repository_url" toml:"repository_url"`
	WebhookSecret string          `yaml:"webhook_secret" toml:"webhook_secret" masq:"secret"`
	ChannelID     types.ChannelID `yaml:"channel_id" toml:"channel_id"`
}

// Validate checks that all fields are set
func (x *RepoAuth) Validate() error {
	if x.RepositoryURL == "" {
		return goerr.New("repository_url is required")
	}
	if x.WebhookSecret == "" {
		return goerr.New("webhook_secret is required", goerr.V("repository_url", x.RepositoryURL))
	}
	if x.ChannelID == "" {
		return goerr.New("channel_id is required", goerr.V("repository_url", x.RepositoryURL))
	}
	return nil
}

// NormalizeRepositoryURL returns the form used as lookup key
func NormalizeRepositoryURL(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}
