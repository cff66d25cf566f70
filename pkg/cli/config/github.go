package config

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	githubinfra "github.com/m-mizutani/ci-preview/pkg/infra/github"
)

// GitHub holds GitHub API credentials. A GitHub App installation takes
// precedence over a token.
type GitHub struct {
	Token          string `masq:"secret"`
	AppID          int64
	InstallationID int64
	PrivateKey     string `masq:"secret"`
	BaseURL        string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token for reading repository contents",
			Destination: &c.Token,
			Sources:     cli.EnvVars("CI_PREVIEW_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("CI_PREVIEW_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("CI_PREVIEW_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "GitHub App private key in PEM, or a path to the PEM file",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("CI_PREVIEW_GITHUB_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub REST API base URL",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("CI_PREVIEW_GITHUB_API_URL"),
		},
	}
}

// NewClient creates a GitHub client from the configured credentials
func (c *GitHub) NewClient() (*githubinfra.Client, error) {
	var opts []githubinfra.Option

	switch {
	case c.AppID != 0:
		if c.InstallationID == 0 || c.PrivateKey == "" {
			return nil, goerr.New("github-installation-id and github-private-key are required with github-app-id")
		}
		key, err := c.privateKey()
		if err != nil {
			return nil, err
		}
		opts = append(opts, githubinfra.WithApp(c.AppID, c.InstallationID, key))

	case c.Token != "":
		opts = append(opts, githubinfra.WithToken(c.Token))
	}

	if c.BaseURL != "" {
		opts = append(opts, githubinfra.WithBaseURL(c.BaseURL))
	}

	return githubinfra.NewClient(opts...)
}

func (c *GitHub) privateKey() ([]byte, error) {
	if strings.Contains(c.PrivateKey, "-----BEGIN") {
		return []byte(c.PrivateKey), nil
	}

	key, err := os.ReadFile(c.PrivateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read GitHub App private key file", goerr.V("path", c.PrivateKey))
	}
	return key, nil
}
