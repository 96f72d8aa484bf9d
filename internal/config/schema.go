package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Session SessionConfig `toml:"session"`
	History HistoryConfig `toml:"history"`
	Search  SearchConfig  `toml:"search"`
	Sources SourcesConfig `toml:"sources"`
	Metrics MetricsConfig `toml:"metrics"`
	TUI     TUIConfig     `toml:"tui"`
	Log     LogConfig     `toml:"log"`
}

// SpotifyConfig holds Spotify API settings.
type SpotifyConfig struct {
	ClientID    string `toml:"client_id"`
	RedirectURI string `toml:"redirect_uri"`
	TokenPath   string `toml:"token_path"`
}

// SessionConfig holds playback polling settings. All intervals are in milliseconds.
type SessionConfig struct {
	PollInterval int `toml:"poll_interval"`
	ToggleSettle int `toml:"toggle_settle"`
	SkipSettle   int `toml:"skip_settle"`
	SeekSettle   int `toml:"seek_settle"`
	PlaySettle   int `toml:"play_settle"`
}

// HistoryConfig selects where history and search state is persisted.
type HistoryConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// SearchConfig holds search, cache and retry settings. Durations are in milliseconds.
type SearchConfig struct {
	Debounce      int      `toml:"debounce"`
	CacheTTL      int      `toml:"cache_ttl"`
	CacheSize     int      `toml:"cache_size"`
	PageSize      int      `toml:"page_size"`
	MaxRetries    int      `toml:"max_retries"`
	RetryDelay    int      `toml:"retry_delay"`
	DefaultSource string   `toml:"default_source"`
	Licenses      []string `toml:"licenses"`
}

// SourcesConfig holds per-source settings.
type SourcesConfig struct {
	Openverse   SourceConfig `toml:"openverse"`
	RoyaltyFree SourceConfig `toml:"royaltyfree"`
	Spotify     SourceConfig `toml:"spotify"`
}

// SourceConfig configures one audio source. Enabled is a pointer so an
// omitted key keeps the default.
type SourceConfig struct {
	Enabled  *bool  `toml:"enabled"`
	BaseURL  string `toml:"base_url"`
	ClientID string `toml:"client_id"`
}

// IsEnabled reports whether the source is switched on.
func (c SourceConfig) IsEnabled() bool {
	return c.Enabled != nil && *c.Enabled
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme       string `toml:"theme"`
	ShowHistory *bool  `toml:"show_history"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Poll returns the poll interval.
func (c SessionConfig) Poll() time.Duration { return millis(c.PollInterval) }

// Toggle returns the settle delay after play/pause.
func (c SessionConfig) Toggle() time.Duration { return millis(c.ToggleSettle) }

// Skip returns the settle delay after next/previous.
func (c SessionConfig) Skip() time.Duration { return millis(c.SkipSettle) }

// Seek returns the settle delay after a seek.
func (c SessionConfig) Seek() time.Duration { return millis(c.SeekSettle) }

// Play returns the settle delay after starting a track.
func (c SessionConfig) Play() time.Duration { return millis(c.PlaySettle) }

// DebounceDelay returns the search debounce window.
func (c SearchConfig) DebounceDelay() time.Duration { return millis(c.Debounce) }

// TTL returns how long cached results stay valid.
func (c SearchConfig) TTL() time.Duration { return millis(c.CacheTTL) }

// RetryBase returns the base backoff for source fetches.
func (c SearchConfig) RetryBase() time.Duration { return millis(c.RetryDelay) }
