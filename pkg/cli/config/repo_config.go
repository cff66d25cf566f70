package config

import "github.com/urfave/cli/v3"

// RepoConfig holds the location of the repository configuration file
type RepoConfig struct {
	Path string
}

// Flags returns CLI flags for the repository configuration file
func (c *RepoConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Repository configuration file (.yml, .yaml or .toml)",
			Value:       "./config.yml",
			Destination: &c.Path,
			Sources:     cli.EnvVars("CI_PREVIEW_CONFIG"),
		},
	}
}
