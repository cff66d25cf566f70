package config

import "github.com/urfave/cli/v3"

// Firestore selects a shared cache backend for running several instances
type Firestore struct {
	ProjectID        string
	DatabaseID       string
	CollectionPrefix string
}

// Flags returns CLI flags for Firestore configuration
func (c *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project of the Firestore cache. The in-memory cache is used when empty",
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("CI_PREVIEW_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Destination: &c.DatabaseID,
			Sources:     cli.EnvVars("CI_PREVIEW_FIRESTORE_DATABASE_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix of the Firestore collection names",
			Value:       "ci-preview",
			Destination: &c.CollectionPrefix,
			Sources:     cli.EnvVars("CI_PREVIEW_FIRESTORE_COLLECTION_PREFIX"),
		},
	}
}

// Enabled reports whether the Firestore backend is selected
func (c *Firestore) Enabled() bool {
	return c.ProjectID != ""
}

// Collection returns the collection name for a cache
func (c *Firestore) Collection(name string) string {
	if c.CollectionPrefix == "" {
		return name
	}
	return c.CollectionPrefix + "-" + name
}
