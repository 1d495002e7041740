package realtime

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds Redis connection parameters for the event bus.
type Config struct {
	Addr          string `toml:"addr"`
	Password      string `toml:"password"`
	DB            int    `toml:"db"`
	ChannelPrefix string `toml:"channel_prefix"`
	DialTimeout   string `toml:"dial_timeout"`
}

// DialTimeoutDuration returns DialTimeout as a time.Duration.
func (c *Config) DialTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.DialTimeout)
	return d
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay == nil {
		return
	}
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.DB != 0 {
		c.DB = overlay.DB
	}
	if overlay.ChannelPrefix != "" {
		c.ChannelPrefix = overlay.ChannelPrefix
	}
	if overlay.DialTimeout != "" {
		c.DialTimeout = overlay.DialTimeout
	}
}

// Finalize applies defaults, environment overrides scoped by prefix, and
// validation.
func (c *Config) Finalize(prefix string) error {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.ChannelPrefix == "" {
		c.ChannelPrefix = "problems"
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "5s"
	}

	if v := os.Getenv(prefix + "_REDIS_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(prefix + "_REDIS_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv(prefix + "_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.DB = db
		}
	}
	if v := os.Getenv(prefix + "_REDIS_CHANNEL_PREFIX"); v != "" {
		c.ChannelPrefix = v
	}
	if v := os.Getenv(prefix + "_REDIS_DIAL_TIMEOUT"); v != "" {
		c.DialTimeout = v
	}

	if _, err := time.ParseDuration(c.DialTimeout); err != nil {
		return fmt.Errorf("invalid dial_timeout: %w", err)
	}
	return nil
}
