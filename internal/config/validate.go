package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Spotify.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("spotify: %w", err))
	}
	if err := c.Session.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("session: %w", err))
	}
	if err := c.History.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("history: %w", err))
	}
	if err := c.Search.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("search: %w", err))
	}
	if err := c.Sources.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sources: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks SpotifyConfig for errors.
func (c *SpotifyConfig) Validate() error {
	if c.RedirectURI != "" {
		if _, err := url.Parse(c.RedirectURI); err != nil {
			return fmt.Errorf("invalid redirect_uri: %w", err)
		}
	}
	return nil
}

// Validate checks SessionConfig for errors.
func (c *SessionConfig) Validate() error {
	if c.PollInterval < 0 {
		return errors.New("poll_interval must be non-negative")
	}
	if c.ToggleSettle < 0 || c.SkipSettle < 0 || c.SeekSettle < 0 || c.PlaySettle < 0 {
		return errors.New("settle delays must be non-negative")
	}
	return nil
}

// Validate checks HistoryConfig for errors.
func (c *HistoryConfig) Validate() error {
	switch c.Backend {
	case "", "file", "sqlite", "memory":
		// valid
	default:
		return fmt.Errorf("invalid backend: %s (must be file, sqlite, or memory)", c.Backend)
	}
	return nil
}

// Validate checks SearchConfig for errors.
func (c *SearchConfig) Validate() error {
	if c.Debounce < 0 || c.CacheTTL < 0 || c.RetryDelay < 0 {
		return errors.New("durations must be non-negative")
	}
	if c.CacheSize < 0 {
		return errors.New("cache_size must be non-negative")
	}
	if c.PageSize < 0 || c.PageSize > 50 {
		return errors.New("page_size must be between 1 and 50")
	}
	if c.MaxRetries < 0 {
		return errors.New("max_retries must be non-negative")
	}
	switch c.DefaultSource {
	case "", "openverse", "royaltyfree", "spotify":
		// valid
	default:
		return fmt.Errorf("invalid default_source: %s", c.DefaultSource)
	}
	for _, l := range c.Licenses {
		if strings.TrimSpace(l) == "" {
			return errors.New("licenses must not contain empty values")
		}
	}
	return nil
}

// Validate checks SourcesConfig for errors.
func (c *SourcesConfig) Validate() error {
	var errs []error
	for name, sc := range map[string]SourceConfig{
		"openverse":   c.Openverse,
		"royaltyfree": c.RoyaltyFree,
	} {
		if sc.BaseURL == "" {
			continue
		}
		u, err := url.Parse(sc.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s: invalid base_url %q", name, sc.BaseURL))
		}
	}
	return errors.Join(errs...)
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", c.Theme)
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
