package github

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/google/uuid"
	"github.com/m-mizutani/ci-preview/pkg/domain/interfaces"
	"github.com/m-mizutani/ci-preview/pkg/domain/model"
	"github.com/m-mizutani/ci-preview/pkg/domain/types"
	"github.com/m-mizutani/ci-preview/pkg/utils/signature"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// GitHub webhook headers
const (
	HeaderEvent     = "X-GitHub-Event"
	HeaderDelivery  = "X-GitHub-Delivery"
	HeaderSignature = "X-Hub-Signature-256"
)

// Authenticator validates GitHub webhook deliveries against the
// repository configuration and attaches the repository's preview settings
type Authenticator struct {
	configs interfaces.ConfigStore
	repo    interfaces.RepoClient
	now     func() time.Time
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(configs interfaces.ConfigStore, repo interfaces.RepoClient) *Authenticator {
	return &Authenticator{
		configs: configs,
		repo:    repo,
		now:     time.Now,
	}
}

// Authenticate checks a delivery step by step and stops at the first failure:
// event header, payload, repository configuration, signature, then
// preview settings.
func (a *Authenticator) Authenticate(ctx context.Context, body []byte, header http.Header) (*model.WebhookEvent, error) {
	logger := ctxlog.From(ctx)

	// Identify event type
	eventType := header.Get(HeaderEvent)
	if eventType == "" || github.EventForType(eventType) == nil {
		return nil, goerr.Wrap(types.ErrInvalidHeader, "unknown event type", goerr.V("event", eventType))
	}

	// Decode payload
	raw, err := github.ParseWebHook(eventType, body)
	if err != nil {
		return nil, goerr.Wrap(types.ErrDeserialization, "failed to parse webhook payload",
			goerr.V("event", eventType),
			goerr.V("cause", err.Error()),
		)
	}

	event := &model.WebhookEvent{
		ID:         header.Get(HeaderDelivery),
		Type:       model.WebhookEventType(eventType),
		Payload:    toPayload(eventType, raw),
		Repository: repositoryOf(raw),
		ReceivedAt: a.now(),
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if s, ok := raw.(interface{ GetSender() *github.User }); ok {
		event.Sender = s.GetSender()
	}

	// Look up repository configuration
	repoURL := event.Repository.GetHTMLURL()
	if repoURL == "" {
		return nil, goerr.Wrap(types.ErrInvalidRepository, "event has no repository",
			goerr.V("event", eventType),
			goerr.V("delivery", event.ID),
		)
	}

	auth, ok := a.configs.Get(repoURL)
	if !ok {
		return nil, goerr.Wrap(types.ErrInvalidConfig, "repository is not configured", goerr.V("repository", repoURL))
	}
	event.ChannelID = auth.ChannelID

	// Verify signature
	provided := header.Get(HeaderSignature)
	if provided == "" {
		return nil, goerr.Wrap(types.ErrMissingSignatureHeader, "signature header is empty", goerr.V("repository", repoURL))
	}

	valid, err := signature.Verify(body, auth.WebhookSecret, provided)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to verify signature", goerr.V("repository", repoURL))
	}
	if !valid {
		return nil, goerr.Wrap(types.ErrInvalidSignature, "signature mismatch", goerr.V("repository", repoURL))
	}

	// Resolve branch and preview settings
	switch p := event.Payload.(type) {
	case model.PushPayload:
		event.Branch = strings.TrimPrefix(p.GetRef(), "refs/heads/")

		settings, err := a.fetchSettings(ctx, event)
		if err != nil {
			// Push events only feed the commit cache
			logger.Warn("Preview settings unavailable for push", "error", err, "repository", repoURL)
		}
		event.Settings = settings

	case model.WorkflowRunPayload:
		event.Branch = p.GetWorkflowRun().GetHeadBranch()

		settings, err := a.fetchSettings(ctx, event)
		if err != nil {
			return nil, err
		}
		event.Settings = settings
	}

	return event, nil
}

func (a *Authenticator) fetchSettings(ctx context.Context, event *model.WebhookEvent) (*model.PreviewSettings, error) {
	repo := event.Repository
	data, err := a.repo.FetchFileAtRef(ctx, repo.GetOwner().GetLogin(), repo.GetName(), model.PreviewSettingsPath, event.Branch)
	if err != nil {
		return nil, goerr.Wrap(types.ErrFailedToGetRepoConfig, "failed to fetch preview settings",
			goerr.V("repository", repo.GetFullName()),
			goerr.V("branch", event.Branch),
			goerr.V("cause", err.Error()),
		)
	}
	if data == nil {
		return nil, goerr.Wrap(types.ErrFailedToGetRepoConfig, "preview settings file not found",
			goerr.V("repository", repo.GetFullName()),
			goerr.V("branch", event.Branch),
		)
	}

	settings, err := model.ParsePreviewSettings(data)
	if err != nil {
		return nil, goerr.Wrap(types.ErrFailedToGetRepoConfig, "invalid preview settings",
			goerr.V("repository", repo.GetFullName()),
			goerr.V("branch", event.Branch),
			goerr.V("cause", err.Error()),
		)
	}

	return settings, nil
}

func toPayload(eventType string, raw any) model.Payload {
	switch e := raw.(type) {
	case *github.PushEvent:
		return model.PushPayload{PushEvent: e}
	case *github.WorkflowRunEvent:
		return model.WorkflowRunPayload{WorkflowRunEvent: e}
	default:
		return model.OtherPayload{Type: model.WebhookEventType(eventType), Event: raw}
	}
}

// repositoryOf extracts the repository of any event that carries one.
// Push events use a distinct repository type that is converted here.
func repositoryOf(raw any) *github.Repository {
	switch e := raw.(type) {
	case *github.PushEvent:
		r := e.GetRepo()
		if r == nil {
			return nil
		}
		return &github.Repository{
			ID:            r.ID,
			Name:          r.Name,
			FullName:      r.FullName,
			HTMLURL:       r.HTMLURL,
			DefaultBranch: r.DefaultBranch,
			Owner:         r.Owner,
		}
	case interface{ GetRepo() *github.Repository }:
		return e.GetRepo()
	default:
		return nil
	}
}
