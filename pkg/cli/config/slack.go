package config

import (
	"time"

	"github.com/urfave/cli/v3"

	slackinfra "github.com/m-mizutani/ci-preview/pkg/infra/slack"
)

// Slack holds Slack bot configuration
type Slack struct {
	BotToken string `masq:"secret"`
	APIURL   string
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token (xoxb-...)",
			Required:    true,
			Destination: &c.BotToken,
			Sources:     cli.EnvVars("CI_PREVIEW_SLACK_BOT_TOKEN", "SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-api-url",
			Usage:       "Slack Web API base URL",
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("CI_PREVIEW_SLACK_API_URL"),
		},
	}
}

// NewClient creates a Slack client. The workspace emoji list is reused for emojiTTL.
func (c *Slack) NewClient(emojiTTL time.Duration) (*slackinfra.Client, error) {
	opts := []slackinfra.Option{slackinfra.WithEmojiCacheTTL(emojiTTL)}
	if c.APIURL != "" {
		opts = append(opts, slackinfra.WithAPIURL(c.APIURL))
	}
	return slackinfra.NewClient(c.BotToken, opts...)
}
