package slack

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/ci-preview/pkg/domain/model"
	"github.com/m-mizutani/ci-preview/pkg/domain/types"
	"github.com/m-mizutani/ci-preview/pkg/infra/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

const (
	emojiCacheKey    = "emoji.list"
	emojiAliasPrefix = "alias:"

	// Slack rejects actions blocks with more elements than this
	maxActionElements = 25
)

type config struct {
	apiURL        string
	emojiCacheTTL time.Duration
}

// Option configures the Slack client
type Option func(*config)

// WithAPIURL overrides the Slack Web API endpoint
func WithAPIURL(apiURL string) Option {
	return func(c *config) {
		c.apiURL = apiURL
	}
}

// WithEmojiCacheTTL sets how long the workspace emoji list is reused
func WithEmojiCacheTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.emojiCacheTTL = ttl
	}
}

// Client posts and edits status cards in Slack channels
type Client struct {
	api    *slack.Client
	emojis *memory.Store[map[string]string]
}

// NewClient creates a Slack client authenticated with a bot token
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, goerr.New("slack bot token is required")
	}

	cfg := &config{emojiCacheTTL: 10 * time.Minute}
	for _, opt := range opts {
		opt(cfg)
	}

	var apiOpts []slack.Option
	if cfg.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(strings.TrimSuffix(cfg.apiURL, "/")+"/"))
	}

	return &Client{
		api:    slack.New(token, apiOpts...),
		emojis: memory.New[map[string]string](cfg.emojiCacheTTL),
	}, nil
}

// SendMessage posts msg and returns its timestamp as the message id
func (c *Client) SendMessage(ctx context.Context, channel types.ChannelID, msg *model.ChatMessage) (types.MessageID, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channel.String(), messageOptions(msg)...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post slack message", goerr.V("channel", channel))
	}

	return types.MessageID(ts), nil
}

// EditMessage replaces text, attachment and buttons of an existing message
func (c *Client) EditMessage(ctx context.Context, channel types.ChannelID, id types.MessageID, msg *model.ChatMessage) error {
	if _, _, _, err := c.api.UpdateMessageContext(ctx, channel.String(), id.String(), messageOptions(msg)...); err != nil {
		return goerr.Wrap(err, "failed to update slack message",
			goerr.V("channel", channel),
			goerr.V("message_id", id),
		)
	}

	return nil
}

// FetchMessage retrieves the message posted at id in channel
func (c *Client) FetchMessage(ctx context.Context, channel types.ChannelID, id types.MessageID) (*model.PostedMessage, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channel.String(),
		Latest:    id.String(),
		Oldest:    id.String(),
		Inclusive: true,
		Limit:     1,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get slack conversation history",
			goerr.V("channel", channel),
			goerr.V("message_id", id),
		)
	}

	for _, m := range resp.Messages {
		if m.Timestamp == id.String() {
			return &model.PostedMessage{ID: id, Text: m.Text}, nil
		}
	}

	return nil, goerr.Wrap(types.ErrCannotFindMessage, "message not found in channel history",
		goerr.V("channel", channel),
		goerr.V("message_id", id),
	)
}

// ResolveEmoji returns the shortcode for an emoji. A value already in
// :name: form is a built-in emoji and is returned unchanged. A bare name
// must exist in the workspace custom emoji list; aliases are followed
// to their target.
func (c *Client) ResolveEmoji(ctx context.Context, id string) (string, error) {
	if len(id) > 2 && strings.HasPrefix(id, ":") && strings.HasSuffix(id, ":") {
		return id, nil
	}

	emojis, err := c.listEmoji(ctx)
	if err != nil {
		return "", goerr.Wrap(types.ErrFailedToFindEmoji, "failed to list workspace emoji",
			goerr.V("emoji", id),
			goerr.V("cause", err.Error()),
		)
	}

	name := id
	value, ok := emojis[name]
	if !ok {
		return "", goerr.Wrap(types.ErrFailedToFindEmoji, "emoji is not defined in workspace", goerr.V("emoji", id))
	}
	if target, isAlias := strings.CutPrefix(value, emojiAliasPrefix); isAlias {
		name = target
	}

	return ":" + name + ":", nil
}

func (c *Client) listEmoji(ctx context.Context) (map[string]string, error) {
	if cached, ok, _ := c.emojis.Get(ctx, emojiCacheKey); ok {
		return cached, nil
	}

	emojis, err := c.api.GetEmojiContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call emoji.list")
	}

	_ = c.emojis.Put(ctx, emojiCacheKey, emojis)
	return emojis, nil
}

func messageOptions(msg *model.ChatMessage) []slack.MsgOption {
	return []slack.MsgOption{
		slack.MsgOptionText(msg.Card.AuthorName, false),
		slack.MsgOptionAttachments(toAttachment(msg)),
	}
}

func toAttachment(msg *model.ChatMessage) slack.Attachment {
	card := msg.Card
	attachment := slack.Attachment{
		Color:      string(card.Color),
		Fallback:   card.AuthorName,
		AuthorName: card.AuthorName,
		AuthorLink: card.AuthorURL,
		AuthorIcon: card.AuthorIcon,
		Text:       card.Description,
		Footer:     card.FooterText,
		FooterIcon: card.FooterIcon,
		MarkdownIn: []string{"text"},
	}

	var elements []slack.BlockElement
	for _, b := range msg.Buttons {
		// Slack has no disabled button state
		if b.Disabled {
			continue
		}
		elements = append(elements, toButton(b))
	}

	var blocks []slack.Block
	for start := 0; start < len(elements); start += maxActionElements {
		end := min(start+maxActionElements, len(elements))
		blocks = append(blocks, slack.NewActionBlock("", elements[start:end]...))
	}
	if len(blocks) > 0 {
		attachment.Blocks = slack.Blocks{BlockSet: blocks}
	}

	return attachment
}

func toButton(b model.Button) *slack.ButtonBlockElement {
	text := b.Label
	if b.Emoji != "" {
		text = strings.TrimSpace(b.Emoji + " " + b.Label)
	}
	if text == "" {
		text = b.ID
	}
	label := slack.NewTextBlockObject(slack.PlainTextType, text, true, false)

	if b.Style == model.ButtonStyleLink {
		return slack.NewButtonBlockElement("", "", label).WithURL(b.URL)
	}

	btn := slack.NewButtonBlockElement(b.ID, b.ID, label)
	switch b.Style {
	case model.ButtonStylePrimary, model.ButtonStyleSuccess:
		btn = btn.WithStyle(slack.StylePrimary)
	case model.ButtonStyleDanger:
		btn = btn.WithStyle(slack.StyleDanger)
	}
	return btn
}
