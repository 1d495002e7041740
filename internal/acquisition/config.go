package acquisition

import (
	"fmt"
	"time"
)

// Config holds acquisition flow tuning: watcher timings and submission
// throttling.
type Config struct {
	PushGrace      string `toml:"push_grace"`
	PollInterval   string `toml:"poll_interval"`
	PollWindow     string `toml:"poll_window"`
	HardTimeout    string `toml:"hard_timeout"`
	SkewBuffer     string `toml:"skew_buffer"`
	SubmitInterval string `toml:"submit_interval"`
	MaxPerType     int    `toml:"max_per_type"`
}

// PushGraceDuration returns PushGrace as a time.Duration.
func (c *Config) PushGraceDuration() time.Duration {
	d, _ := time.ParseDuration(c.PushGrace)
	return d
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *Config) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// PollWindowDuration returns PollWindow as a time.Duration.
func (c *Config) PollWindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollWindow)
	return d
}

// HardTimeoutDuration returns HardTimeout as a time.Duration.
func (c *Config) HardTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.HardTimeout)
	return d
}

// SkewBufferDuration returns SkewBuffer as a time.Duration.
func (c *Config) SkewBufferDuration() time.Duration {
	d, _ := time.ParseDuration(c.SkewBuffer)
	return d
}

// SubmitIntervalDuration returns SubmitInterval as a time.Duration.
func (c *Config) SubmitIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.SubmitInterval)
	return d
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay == nil {
		return
	}
	if overlay.PushGrace != "" {
		c.PushGrace = overlay.PushGrace
	}
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.PollWindow != "" {
		c.PollWindow = overlay.PollWindow
	}
	if overlay.HardTimeout != "" {
		c.HardTimeout = overlay.HardTimeout
	}
	if overlay.SkewBuffer != "" {
		c.SkewBuffer = overlay.SkewBuffer
	}
	if overlay.SubmitInterval != "" {
		c.SubmitInterval = overlay.SubmitInterval
	}
	if overlay.MaxPerType != 0 {
		c.MaxPerType = overlay.MaxPerType
	}
}

// Finalize applies defaults and validation.
func (c *Config) Finalize() error {
	if c.PushGrace == "" {
		c.PushGrace = "10s"
	}
	if c.PollInterval == "" {
		c.PollInterval = "2s"
	}
	if c.PollWindow == "" {
		c.PollWindow = "60s"
	}
	if c.HardTimeout == "" {
		c.HardTimeout = "10m"
	}
	if c.SkewBuffer == "" {
		c.SkewBuffer = "2s"
	}
	if c.SubmitInterval == "" {
		c.SubmitInterval = "7s"
	}
	if c.MaxPerType == 0 {
		c.MaxPerType = 50
	}

	for name, value := range map[string]string{
		"push_grace":      c.PushGrace,
		"poll_interval":   c.PollInterval,
		"poll_window":     c.PollWindow,
		"hard_timeout":    c.HardTimeout,
		"skew_buffer":     c.SkewBuffer,
		"submit_interval": c.SubmitInterval,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	return nil
}
