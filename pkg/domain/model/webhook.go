package model

import (
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ci-preview/pkg/domain/types"
)

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypePush        WebhookEventType = "push"
	EventTypeWorkflowRun WebhookEventType = "workflow_run"
)

// Workflow run actions handled by the dispatcher
const (
	WorkflowRunActionInProgress = "in_progress"
	WorkflowRunActionCompleted  = "completed"
)

// Payload is the closed set of decoded webhook bodies. Only types in
// this package implement it.
type Payload interface {
	payload()
}

// PushPayload wraps a push event
type PushPayload struct {
	*github.PushEvent
}

// WorkflowRunPayload wraps a workflow_run event
type WorkflowRunPayload struct {
	*github.WorkflowRunEvent
}

// OtherPayload holds any other recognized event. It is accepted but ignored.
type OtherPayload struct {
	Type  WebhookEventType
	Event any
}

func (PushPayload) payload()        {}
func (WorkflowRunPayload) payload() {}
func (OtherPayload) payload()       {}

// WebhookEvent is an authenticated event with its repository configuration attached
type WebhookEvent struct {
	ID         string           // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Payload    Payload
	Repository *github.Repository
	Sender     *github.User
	ChannelID  types.ChannelID
	Branch     string           // Empty when the event carries no branch
	Settings   *PreviewSettings // Nil when not fetched or not available
	ReceivedAt time.Time
}

// BranchOrUnknown returns the branch name for display
func (e *WebhookEvent) BranchOrUnknown() string {
	if e.Branch == "" {
		return "unknown branch"
	}
	return e.Branch
}
