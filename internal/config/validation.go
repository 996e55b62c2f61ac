package config

import (
	"fmt"
	"net/url"
	"strings"
)

func validate(cfg *Config) error {
	raw := strings.TrimSpace(cfg.Gateway.BaseURL)
	if raw == "" {
		return fmt.Errorf("gateway.base_url cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing gateway.base_url failed: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("gateway.base_url must be http or https, got %q", parsed.Scheme)
	}
	if cfg.Poll.IntervalMS < 250 {
		return fmt.Errorf("poll.interval_ms too small (%d), minimum is 250", cfg.Poll.IntervalMS)
	}
	return nil
}
