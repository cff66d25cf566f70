package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ci-preview/pkg/domain/interfaces"
	"github.com/m-mizutani/ci-preview/pkg/domain/model"
	"github.com/m-mizutani/ci-preview/pkg/domain/types"
	"github.com/m-mizutani/ci-preview/pkg/utils/timefmt"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// MaxCommitSummaryLength is the longest commit list rendered inline.
// A longer list is replaced by a link to the commit history.
const MaxCommitSummaryLength = 3072

const (
	conclusionSuccess = "success"
	conclusionFailure = "failure"
)

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// ComposeInput is everything a status card is built from
type ComposeInput struct {
	Event    *model.WebhookEvent
	Run      *github.WorkflowRun
	Settings *model.PreviewSettings
	Commits  []model.CommitRecord
}

// Version is the resolved version of the build
type Version struct {
	Mod              string // raw captured value
	Formatted        string // after format template substitution
	MinecraftVersion string
	BuildNumber      string
}

// Composer builds status cards for workflow runs
type Composer struct {
	repo   interfaces.RepoClient
	chat   interfaces.ChatClient
	emojis model.Emojis
}

// NewComposer creates a Composer
func NewComposer(repo interfaces.RepoClient, chat interfaces.ChatClient, emojis model.Emojis) *Composer {
	return &Composer{
		repo:   repo,
		chat:   chat,
		emojis: emojis,
	}
}

// Tracks reports whether notifications are enabled for the run's workflow file
func (c *Composer) Tracks(settings *model.PreviewSettings, run *github.WorkflowRun) bool {
	if settings == nil || run == nil {
		return false
	}
	return settings.Tracks(run.GetPath())
}

// ComposeStarted builds the card posted when a run starts
func (c *Composer) ComposeStarted(ctx context.Context, in *ComposeInput) (*model.ChatMessage, error) {
	version, err := c.ResolveVersion(ctx, in)
	if err != nil {
		return nil, err
	}

	emoji, err := c.resolveEmoji(ctx, c.emojis.Processing)
	if err != nil {
		return nil, err
	}

	status := fmt.Sprintf("Build is running for *#%d* %s", in.Run.GetRunNumber(), emoji)
	return &model.ChatMessage{
		Card: c.card(in, model.ColorNeutral, status, version, ""),
	}, nil
}

// ComposeCompleted builds the card replacing the started card once the
// run has a conclusion
func (c *Composer) ComposeCompleted(ctx context.Context, in *ComposeInput) (*model.ChatMessage, error) {
	version, err := c.ResolveVersion(ctx, in)
	if err != nil {
		return nil, err
	}

	var (
		label   string
		extra   string
		color   = model.ColorNeutral
		buttons []model.Button
	)

	switch in.Run.GetConclusion() {
	case conclusionSuccess:
		emoji, err := c.resolveEmoji(ctx, c.emojis.Success)
		if err != nil {
			return nil, err
		}
		label = emoji + " Success"
		color = model.ColorSuccess
		buttons = RenderButtons(in.Settings, version)

	case conclusionFailure:
		emoji, err := c.resolveEmoji(ctx, c.emojis.Failed)
		if err != nil {
			return nil, err
		}
		label = emoji + " Failed"
		color = model.ColorFailure
		extra = c.logsLine(ctx, in)
	}

	elapsed := in.Run.GetUpdatedAt().Time.Sub(in.Run.GetCreatedAt().Time)
	status := fmt.Sprintf("*%s #%d* in %s", label, in.Run.GetRunNumber(), timefmt.FormatDuration(int64(elapsed.Seconds())))

	return &model.ChatMessage{
		Card:    c.card(in, color, status, version, extra),
		Buttons: buttons,
	}, nil
}

// ResolveVersion scrapes the version string from the repository at the
// triggering branch and applies the format template
func (c *Composer) ResolveVersion(ctx context.Context, in *ComposeInput) (*Version, error) {
	rule := in.Settings.ModVersion
	repo := in.Event.Repository

	content, err := c.repo.FetchFileAtRef(ctx, repo.GetOwner().GetLogin(), repo.GetName(), rule.Path, in.Event.Branch)
	if err != nil {
		return nil, goerr.Wrap(types.ErrFailedToUnwrapValue, "failed to fetch version file",
			goerr.V("path", rule.Path),
			goerr.V("branch", in.Event.Branch),
			goerr.V("cause", err.Error()),
		)
	}
	if content == nil {
		return nil, goerr.Wrap(types.ErrFailedToUnwrapValue, "version file not found",
			goerr.V("path", rule.Path),
			goerr.V("branch", in.Event.Branch),
		)
	}

	re, err := regexp.Compile(rule.Regex)
	if err != nil {
		return nil, goerr.Wrap(types.ErrFailedToUnwrapValue, "invalid version regex",
			goerr.V("regex", rule.Regex),
			goerr.V("cause", err.Error()),
		)
	}

	match := re.FindStringSubmatchIndex(string(content))
	if match == nil || rule.Group >= len(match)/2 || match[2*rule.Group] < 0 {
		return nil, goerr.Wrap(types.ErrFailedToUnwrapValue, "version not found in file",
			goerr.V("path", rule.Path),
			goerr.V("regex", rule.Regex),
			goerr.V("group", rule.Group),
		)
	}

	version := &Version{
		Mod:              string(content[match[2*rule.Group]:match[2*rule.Group+1]]),
		MinecraftVersion: in.Settings.MinecraftVersion,
		BuildNumber:      strconv.Itoa(in.Run.GetRunNumber()),
	}

	version.Formatted = version.Mod
	if rule.Format != nil {
		version.Formatted = strings.NewReplacer(
			"${mod_version}", version.Mod,
			"${minecraft_version}", version.MinecraftVersion,
			"${build_number}", version.BuildNumber,
		).Replace(*rule.Format)
	}

	return version, nil
}

// SummarizeCommits renders one line per commit. A summary longer than
// MaxCommitSummaryLength is replaced by a link to the commit history of sha.
func SummarizeCommits(repoURL string, sha string, commits []model.CommitRecord) string {
	if len(commits) == 0 {
		return "No commits found"
	}

	lines := make([]string, 0, len(commits))
	for _, commit := range commits {
		line := fmt.Sprintf("<%s|%s>", commit.URL, slackEscaper.Replace(commit.Title()))
		if commit.AuthorUsername != "" {
			line += fmt.Sprintf(" - <https://github.com/%s|%s>", commit.AuthorUsername, commit.AuthorUsername)
		}
		lines = append(lines, line)
	}

	summary := strings.Join(lines, "\n")
	if utf8.RuneCountInString(summary) > MaxCommitSummaryLength {
		return fmt.Sprintf("Commit list is too long to display, please look <%s/commits/%s|here> instead.", repoURL, sha)
	}

	return summary
}

// RenderButtons converts configured buttons in id order. Link buttons
// get their URL template filled and carry no id.
func RenderButtons(settings *model.PreviewSettings, version *Version) []model.Button {
	if settings == nil || len(settings.Buttons) == 0 {
		return nil
	}

	replacer := strings.NewReplacer(
		"${version}", version.Formatted,
		"${mod_version}", version.Mod,
		"${minecraft_version}", version.MinecraftVersion,
		"${build_number}", version.BuildNumber,
	)

	buttons := make([]model.Button, 0, len(settings.Buttons))
	for _, id := range settings.ButtonIDs() {
		spec := settings.Buttons[id]
		button := model.Button{
			Style:    spec.Style,
			Disabled: spec.Disabled,
		}
		if spec.Label != nil {
			button.Label = *spec.Label
		}
		if spec.Emoji != nil && *spec.Emoji != "" {
			button.Emoji = ":" + strings.Trim(*spec.Emoji, ":") + ":"
		}

		if spec.Style == model.ButtonStyleLink {
			if spec.URL != nil {
				button.URL = replacer.Replace(*spec.URL)
			}
		} else {
			button.ID = id
		}

		buttons = append(buttons, button)
	}

	return buttons
}

func (c *Composer) card(in *ComposeInput, color model.Color, status string, version *Version, extra string) model.Card {
	repo := in.Event.Repository
	started := in.Run.GetRunStartedAt().Time

	description := fmt.Sprintf("*Build* %s\nStatus: %s\nVersion: *%s*\n%s%s",
		slackDate(started),
		status,
		slackEscaper.Replace(version.Formatted),
		extra,
		SummarizeCommits(repo.GetHTMLURL(), in.Run.GetHeadSHA(), in.Commits),
	)

	return model.Card{
		AuthorName:  repo.GetName() + "/" + in.Event.BranchOrUnknown(),
		AuthorURL:   repo.GetHTMLURL(),
		AuthorIcon:  repo.GetOwner().GetAvatarURL(),
		Description: description,
		FooterText:  in.Event.Sender.GetLogin(),
		FooterIcon:  in.Event.Sender.GetAvatarURL(),
		Color:       color,
	}
}

// logsLine links the first job of the run. A failed lookup only drops the line.
func (c *Composer) logsLine(ctx context.Context, in *ComposeInput) string {
	repo := in.Event.Repository
	jobs, err := c.repo.ListWorkflowJobs(ctx, repo.GetOwner().GetLogin(), repo.GetName(), in.Run.GetID())
	if err != nil {
		ctxlog.From(ctx).Warn("Failed to list workflow jobs",
			"error", err,
			"run_id", in.Run.GetID(),
		)
		return ""
	}
	if len(jobs) == 0 || jobs[0].GetHTMLURL() == "" {
		return ""
	}

	return fmt.Sprintf("Logs: <%s|Run Logs>\n", jobs[0].GetHTMLURL())
}

func (c *Composer) resolveEmoji(ctx context.Context, id string) (string, error) {
	emoji, err := c.chat.ResolveEmoji(ctx, id)
	if err != nil {
		return "", goerr.Wrap(types.ErrFailedToFindEmoji, "failed to resolve status emoji",
			goerr.V("emoji", id),
			goerr.V("cause", err.Error()),
		)
	}
	return emoji, nil
}

// slackDate renders t as a relative date token with an absolute fallback
func slackDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("<!date^%d^{ago}|%s>", t.Unix(), t.UTC().Format(time.RFC1123))
}
