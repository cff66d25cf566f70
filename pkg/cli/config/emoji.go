package config

import (
	"github.com/m-mizutani/ci-preview/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Emoji holds the status emoji. A bare name refers to a workspace custom
// emoji, a :name: shortcode to a built-in one.
type Emoji struct {
	Processing string
	Success    string
	Failed     string
}

// Flags returns CLI flags for emoji configuration
func (c *Emoji) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "processing-emoji",
			Usage:       "Emoji shown while a build is running",
			Value:       ":hourglass_flowing_sand:",
			Destination: &c.Processing,
			Sources:     cli.EnvVars("CI_PREVIEW_PROCESSING_EMOJI", "PROCESSING_EMOJI"),
		},
		&cli.StringFlag{
			Name:        "success-emoji",
			Usage:       "Emoji shown for a successful build",
			Value:       ":white_check_mark:",
			Destination: &c.Success,
			Sources:     cli.EnvVars("CI_PREVIEW_SUCCESS_EMOJI", "SUCCESS_EMOJI"),
		},
		&cli.StringFlag{
			Name:        "failed-emoji",
			Usage:       "Emoji shown for a failed build",
			Value:       ":x:",
			Destination: &c.Failed,
			Sources:     cli.EnvVars("CI_PREVIEW_FAILED_EMOJI", "FAILED_EMOJI"),
		},
	}
}

// Emojis converts the configuration for the composer
func (c *Emoji) Emojis() model.Emojis {
	return model.Emojis{
		Processing: c.Processing,
		Success:    c.Success,
		Failed:     c.Failed,
	}
}
