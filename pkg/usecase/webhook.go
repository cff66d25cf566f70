package usecase

import (
	"context"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ci-preview/pkg/domain/interfaces"
	"github.com/m-mizutani/ci-preview/pkg/domain/model"
	"github.com/m-mizutani/ci-preview/pkg/domain/types"
	"github.com/m-mizutani/ci-preview/pkg/utils/errs"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

type webhookUseCase struct {
	commits  *CommitCache
	runs     *RunCorrelator
	composer *Composer
	chat     interfaces.ChatClient
}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook(commits *CommitCache, runs *RunCorrelator, composer *Composer, chat interfaces.ChatClient) *webhookUseCase {
	return &webhookUseCase{
		commits:  commits,
		runs:     runs,
		composer: composer,
		chat:     chat,
	}
}

// ProcessEvent routes an authenticated event. Push events feed the
// commit cache; workflow_run events post or update the status card.
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("Processing webhook event",
		"id", event.ID,
		"type", event.Type,
		"repository", event.Repository.GetFullName(),
		"sender", event.Sender.GetLogin(),
		"branch", event.Branch,
	)

	switch p := event.Payload.(type) {
	case model.PushPayload:
		return uc.handlePush(ctx, p.PushEvent)
	case model.WorkflowRunPayload:
		return uc.handleWorkflowRun(ctx, event, p.WorkflowRunEvent)
	default:
		logger.Debug("Ignoring unsupported event type", "type", event.Type)
		return nil
	}
}

func (uc *webhookUseCase) handlePush(ctx context.Context, push *github.PushEvent) error {
	logger := ctxlog.From(ctx)

	head := push.GetHeadCommit()
	if head == nil {
		logger.Info("Push has no head commit, skip caching", "ref", push.GetRef())
		return nil
	}
	if model.HasSkipMarker(head.GetMessage()) {
		logger.Info("Head commit has skip marker, skip caching", "sha", push.GetAfter())
		return nil
	}

	commits := model.CommitsFromPush(push)
	if err := uc.commits.Put(ctx, types.CommitSHA(push.GetAfter()), commits); err != nil {
		return err
	}

	logger.Debug("Cached push commits", "sha", push.GetAfter(), "count", len(commits))
	return nil
}

func (uc *webhookUseCase) handleWorkflowRun(ctx context.Context, event *model.WebhookEvent, payload *github.WorkflowRunEvent) error {
	logger := ctxlog.From(ctx)

	run := payload.GetWorkflowRun()
	if run == nil {
		return goerr.Wrap(types.ErrInvalidBody, "workflow_run event has no run")
	}

	action := payload.GetAction()
	if action != model.WorkflowRunActionInProgress && action != model.WorkflowRunActionCompleted {
		logger.Debug("Ignoring workflow_run action", "action", action, "run_id", run.GetID())
		return nil
	}

	if !uc.composer.Tracks(event.Settings, run) {
		logger.Debug("Workflow is not tracked", "path", run.GetPath(), "run_id", run.GetID())
		return nil
	}

	commits, _, err := uc.commits.Get(ctx, types.CommitSHA(run.GetHeadSHA()))
	if err != nil {
		errs.Handle(ctx, "failed to read commit cache", err)
		commits = nil
	}

	in := &ComposeInput{
		Event:    event,
		Run:      run,
		Settings: event.Settings,
		Commits:  commits,
	}

	switch action {
	case model.WorkflowRunActionInProgress:
		return uc.notifyStarted(ctx, event, in)
	default:
		return uc.notifyCompleted(ctx, event, in)
	}
}

func (uc *webhookUseCase) notifyStarted(ctx context.Context, event *model.WebhookEvent, in *ComposeInput) error {
	runID := types.RunID(in.Run.GetID())

	msg, err := uc.composer.ComposeStarted(ctx, in)
	if err != nil {
		return err
	}

	messageID, err := uc.chat.SendMessage(ctx, event.ChannelID, msg)
	if err != nil {
		return goerr.Wrap(types.ErrFailedToSendMessage, "failed to post run status",
			goerr.V("run_id", runID),
			goerr.V("channel", event.ChannelID),
			goerr.V("cause", err.Error()),
		)
	}

	if err := uc.runs.Record(ctx, runID, messageID); err != nil {
		return err
	}

	ctxlog.From(ctx).Info("Posted run status",
		"run_id", runID,
		"message_id", messageID,
		"channel", event.ChannelID,
	)
	return nil
}

func (uc *webhookUseCase) notifyCompleted(ctx context.Context, event *model.WebhookEvent, in *ComposeInput) error {
	runID := types.RunID(in.Run.GetID())

	messageID, ok, err := uc.runs.Resolve(ctx, runID)
	if err != nil {
		return err
	}
	if !ok {
		return goerr.Wrap(types.ErrCannotFindMessage, "no message recorded for run", goerr.V("run_id", runID))
	}

	defer func() {
		if err := uc.runs.Forget(ctx, runID); err != nil {
			errs.Handle(ctx, "failed to forget run correlation", err)
		}
	}()

	if _, err := uc.chat.FetchMessage(ctx, event.ChannelID, messageID); err != nil {
		return goerr.Wrap(types.ErrFailedToSendMessage, "failed to fetch run status message",
			goerr.V("run_id", runID),
			goerr.V("message_id", messageID),
			goerr.V("cause", err.Error()),
		)
	}

	msg, err := uc.composer.ComposeCompleted(ctx, in)
	if err != nil {
		return err
	}

	// The run is over either way, so an edit failure is reported but not returned
	if err := uc.chat.EditMessage(ctx, event.ChannelID, messageID, msg); err != nil {
		errs.Handle(ctx, "failed to edit run status message", err)
		return nil
	}

	ctxlog.From(ctx).Info("Updated run status",
		"run_id", runID,
		"message_id", messageID,
		"conclusion", in.Run.GetConclusion(),
	)
	return nil
}
