package interfaces

import (
	"context"

	"github.com/google/go-github/v75/github"
)

// RepoClient defines read operations against the source hosting API
type RepoClient interface {
	// FetchFileAtRef returns the content of path at ref. A missing file
	// returns nil content and nil error. An empty ref means the default branch.
	FetchFileAtRef(ctx context.Context, owner, repo, path, ref string) ([]byte, error)

	// ListWorkflowJobs returns jobs of a workflow run
	ListWorkflowJobs(ctx context.Context, owner, repo string, runID int64) ([]*github.WorkflowJob, error)
}
