package usecase_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ci-preview/pkg/domain/model"
	"github.com/m-mizutani/ci-preview/pkg/domain/types"
)

const (
	buildWorkflow = ".github/workflows/build.yml"
	repoURL       = "https://github.com/example/mod"
)

var runStartedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type mockRepoClient struct {
	fetchFileAtRefFunc   func(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
	listWorkflowJobsFunc func(ctx context.Context, owner, repo string, runID int64) ([]*github.WorkflowJob, error)
}

func (m *mockRepoClient) FetchFileAtRef(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	if m.fetchFileAtRefFunc != nil {
		return m.fetchFileAtRefFunc(ctx, owner, repo, path, ref)
	}
	return []byte("mod_version=1.2.3\n"), nil
}

func (m *mockRepoClient) ListWorkflowJobs(ctx context.Context, owner, repo string, runID int64) ([]*github.WorkflowJob, error) {
	if m.listWorkflowJobsFunc != nil {
		return m.listWorkflowJobsFunc(ctx, owner, repo, runID)
	}
	return []*github.WorkflowJob{
		{ID: github.Ptr(int64(1)), HTMLURL: github.Ptr(repoURL + "/actions/runs/42/job/1")},
	}, nil
}

type sentMessage struct {
	Channel types.ChannelID
	Message *model.ChatMessage
}

type editedMessage struct {
	Channel types.ChannelID
	ID      types.MessageID
	Message *model.ChatMessage
}

type mockChatClient struct {
	sendMessageFunc  func(ctx context.Context, channel types.ChannelID, msg *model.ChatMessage) (types.MessageID, error)
	editMessageFunc  func(ctx context.Context, channel types.ChannelID, id types.MessageID, msg *model.ChatMessage) error
	fetchMessageFunc func(ctx context.Context, channel types.ChannelID, id types.MessageID) (*model.PostedMessage, error)
	resolveEmojiFunc func(ctx context.Context, id string) (string, error)

	sent   []sentMessage
	edited []editedMessage
}

func (m *mockChatClient) SendMessage(ctx context.Context, channel types.ChannelID, msg *model.ChatMessage) (types.MessageID, error) {
	m.sent = append(m.sent, sentMessage{Channel: channel, Message: msg})
	if m.sendMessageFunc != nil {
		return m.sendMessageFunc(ctx, channel, msg)
	}
	return "1700000000.000100", nil
}

func (m *mockChatClient) EditMessage(ctx context.Context, channel types.ChannelID, id types.MessageID, msg *model.ChatMessage) error {
	m.edited = append(m.edited, editedMessage{Channel: channel, ID: id, Message: msg})
	if m.editMessageFunc != nil {
		return m.editMessageFunc(ctx, channel, id, msg)
	}
	return nil
}

func (m *mockChatClient) FetchMessage(ctx context.Context, channel types.ChannelID, id types.MessageID) (*model.PostedMessage, error) {
	if m.fetchMessageFunc != nil {
		return m.fetchMessageFunc(ctx, channel, id)
	}
	return &model.PostedMessage{ID: id}, nil
}

func (m *mockChatClient) ResolveEmoji(ctx context.Context, id string) (string, error) {
	if m.resolveEmojiFunc != nil {
		return m.resolveEmojiFunc(ctx, id)
	}
	if id == "" {
		return "", errors.New("emoji is not configured")
	}
	return ":" + id + ":", nil
}

var testEmojis = model.Emojis{
	Processing: "loading",
	Success:    "white_check_mark",
	Failed:     "x",
}

func newSettings() *model.PreviewSettings {
	format := "${mod_version}+mc${minecraft_version}-build.${build_number}"
	return &model.PreviewSettings{
		MinecraftVersion: "1.20.1",
		Workflows:        []string{buildWorkflow},
		ModVersion: model.VersionRule{
			Path:   "gradle.properties",
			Regex:  `mod_version=(\S+)`,
			Group:  1,
			Format: &format,
		},
		Buttons: map[string]model.ButtonSpec{
			"modrinth": {
				Style: model.ButtonStyleLink,
				URL:   github.Ptr("https://modrinth.com/mod/example/version/${version}"),
				Label: github.Ptr("Modrinth"),
				Emoji: github.Ptr("modrinth"),
			},
			"approve": {
				Style: model.ButtonStyleSuccess,
				Label: github.Ptr("Approve"),
			},
		},
	}
}

func newRun(action, conclusion string) *github.WorkflowRunEvent {
	run := &github.WorkflowRun{
		ID:           github.Ptr(int64(42)),
		RunNumber:    github.Ptr(7),
		HeadBranch:   github.Ptr("main"),
		HeadSHA:      github.Ptr("abc123"),
		Path:         github.Ptr(buildWorkflow),
		CreatedAt:    &github.Timestamp{Time: runStartedAt},
		RunStartedAt: &github.Timestamp{Time: runStartedAt},
		UpdatedAt:    &github.Timestamp{Time: runStartedAt.Add(3661 * time.Second)},
	}
	if conclusion != "" {
		run.Conclusion = github.Ptr(conclusion)
	}
	return &github.WorkflowRunEvent{
		Action:      github.Ptr(action),
		WorkflowRun: run,
	}
}

func newEvent(payload model.Payload, settings *model.PreviewSettings) *model.WebhookEvent {
	return &model.WebhookEvent{
		ID:      "delivery-1",
		Type:    model.EventTypeWorkflowRun,
		Payload: payload,
		Repository: &github.Repository{
			Name:     github.Ptr("mod"),
			FullName: github.Ptr("example/mod"),
			HTMLURL:  github.Ptr(repoURL),
			Owner:    &github.User{Login: github.Ptr("example"), AvatarURL: github.Ptr("https://avatars.example/example")},
		},
		Sender:    &github.User{Login: github.Ptr("octocat"), AvatarURL: github.Ptr("https://avatars.example/octocat")},
		ChannelID: "C0001",
		Branch:    "main",
		Settings:  settings,
	}
}
