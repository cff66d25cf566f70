package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
)

type config struct {
	token          string
	appID          int64
	installationID int64
	privateKey     []byte
	baseURL        string
}

// Option configures the GitHub client
type Option func(*config)

// WithToken authenticates with a personal access token
func WithToken(token string) Option {
	return func(c *config) {
		c.token = token
	}
}

// WithApp authenticates as a GitHub App installation
func WithApp(appID, installationID int64, privateKey []byte) Option {
	return func(c *config) {
		c.appID = appID
		c.installationID = installationID
		c.privateKey = privateKey
	}
}

// WithBaseURL overrides the REST API endpoint
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// Client reads repository contents and workflow jobs
type Client struct {
	githubClient *github.Client
}

// NewClient creates a GitHub client. App credentials take precedence
// over a token; with neither, requests are unauthenticated.
func NewClient(opts ...Option) (*Client, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	var githubClient *github.Client
	switch {
	case cfg.appID != 0:
		itr, err := ghinstallation.New(http.DefaultTransport, cfg.appID, cfg.installationID, cfg.privateKey)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create GitHub App transport",
				goerr.V("app_id", cfg.appID),
				goerr.V("installation_id", cfg.installationID),
			)
		}
		if cfg.baseURL != "" {
			itr.BaseURL = strings.TrimSuffix(cfg.baseURL, "/")
		}
		githubClient = github.NewClient(&http.Client{Transport: itr})

	case cfg.token != "":
		githubClient = github.NewClient(nil).WithAuthToken(cfg.token)

	default:
		githubClient = github.NewClient(nil)
	}

	if cfg.baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(cfg.baseURL, "/") + "/")
		if err != nil {
			return nil, goerr.Wrap(err, "invalid GitHub API base URL", goerr.V("base_url", cfg.baseURL))
		}
		githubClient.BaseURL = u
	}

	return &Client{githubClient: githubClient}, nil
}

// FetchFileAtRef returns the decoded content of path at ref. It returns
// nil content without error when the path does not exist or is a directory.
func (c *Client) FetchFileAtRef(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}

	file, _, resp, err := c.githubClient.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get repository content",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("path", path),
			goerr.V("ref", ref),
		)
	}
	if file == nil {
		return nil, nil
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode repository content",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("path", path),
		)
	}

	return []byte(content), nil
}

// ListWorkflowJobs returns the first page of jobs of a workflow run
func (c *Client) ListWorkflowJobs(ctx context.Context, owner, repo string, runID int64) ([]*github.WorkflowJob, error) {
	jobs, _, err := c.githubClient.Actions.ListWorkflowJobs(ctx, owner, repo, runID, &github.ListWorkflowJobsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list workflow jobs",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("run_id", runID),
		)
	}

	return jobs.Jobs, nil
}
