package generation

import (
	"fmt"
	"time"
)

// Config holds generation worker tuning.
type Config struct {
	QueueSize   int    `toml:"queue_size"`
	Workers     int    `toml:"workers"`
	MaxAttempts int    `toml:"max_attempts"`
	BaseBackoff string `toml:"base_backoff"`
}

// BaseBackoffDuration returns BaseBackoff as a time.Duration.
func (c *Config) BaseBackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.BaseBackoff)
	return d
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay == nil {
		return
	}
	if overlay.QueueSize != 0 {
		c.QueueSize = overlay.QueueSize
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.BaseBackoff != "" {
		c.BaseBackoff = overlay.BaseBackoff
	}
}

// Finalize applies defaults and validation.
func (c *Config) Finalize() error {
	if c.QueueSize == 0 {
		c.QueueSize = 64
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 5
	}
	if c.BaseBackoff == "" {
		c.BaseBackoff = "5s"
	}

	if _, err := time.ParseDuration(c.BaseBackoff); err != nil {
		return fmt.Errorf("invalid base_backoff: %w", err)
	}
	return nil
}
