package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Cache holds commit cache and run correlation settings
type Cache struct {
	TTLMinutes    int64
	SweepInterval time.Duration
}

// Flags returns CLI flags for cache configuration
func (c *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "cache-ttl",
			Usage:       "Minutes a cached push or a running workflow is remembered. Must exceed the longest build",
			Value:       60,
			Destination: &c.TTLMinutes,
			Sources:     cli.EnvVars("CI_PREVIEW_CACHE_TTL", "CACHE_TTL"),
		},
		&cli.DurationFlag{
			Name:        "cache-sweep-interval",
			Usage:       "Interval of removing expired entries from the in-memory cache",
			Value:       5 * time.Minute,
			Destination: &c.SweepInterval,
			Sources:     cli.EnvVars("CI_PREVIEW_CACHE_SWEEP_INTERVAL"),
		},
	}
}

// TTL returns the entry lifetime
func (c *Cache) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}
