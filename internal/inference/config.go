package inference

import (
	"fmt"
	"os"
	"time"
)

// Config holds Gemini API access and model selection.
type Config struct {
	APIKey          string `toml:"api_key"`
	AnalysisModel   string `toml:"analysis_model"`
	GenerationModel string `toml:"generation_model"`
	RequestTimeout  string `toml:"request_timeout"`
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay == nil {
		return
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.AnalysisModel != "" {
		c.AnalysisModel = overlay.AnalysisModel
	}
	if overlay.GenerationModel != "" {
		c.GenerationModel = overlay.GenerationModel
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
}

// Finalize applies defaults, environment overrides scoped by prefix, and
// validation.
func (c *Config) Finalize(prefix string) error {
	if c.AnalysisModel == "" {
		c.AnalysisModel = "gemini-2.5-flash"
	}
	if c.GenerationModel == "" {
		c.GenerationModel = "gemini-2.5-flash"
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "2m"
	}

	if v := os.Getenv(prefix + "_INFERENCE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(prefix + "_INFERENCE_ANALYSIS_MODEL"); v != "" {
		c.AnalysisModel = v
	}
	if v := os.Getenv(prefix + "_INFERENCE_GENERATION_MODEL"); v != "" {
		c.GenerationModel = v
	}
	if v := os.Getenv(prefix + "_INFERENCE_REQUEST_TIMEOUT"); v != "" {
		c.RequestTimeout = v
	}

	if c.APIKey == "" {
		return fmt.Errorf("api_key required")
	}
	if _, err := time.ParseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request_timeout: %w", err)
	}
	return nil
}
