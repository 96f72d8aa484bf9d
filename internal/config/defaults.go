package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURI: "http://127.0.0.1:8888/callback",
		},
		Session: SessionConfig{
			PollInterval: 2000,
			ToggleSettle: 200,
			SkipSettle:   350,
			SeekSettle:   250,
			PlaySettle:   250,
		},
		History: HistoryConfig{
			Backend: "file",
		},
		Search: SearchConfig{
			Debounce:      300,
			CacheTTL:      5 * 60 * 1000,
			CacheSize:     100,
			PageSize:      20,
			MaxRetries:    3,
			RetryDelay:    1000,
			DefaultSource: "openverse",
			Licenses:      []string{"pd", "cc"},
		},
		Sources: SourcesConfig{
			Openverse: SourceConfig{
				Enabled: boolPtr(true),
				BaseURL: "https://api.openverse.org/v1",
			},
			RoyaltyFree: SourceConfig{
				Enabled: boolPtr(true),
				BaseURL: "https://api.jamendo.com/v3.0",
			},
			Spotify: SourceConfig{
				Enabled: boolPtr(false),
			},
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
		TUI: TUIConfig{
			Theme:       "auto",
			ShowHistory: boolPtr(true),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Spotify
	if c.Spotify.RedirectURI == "" {
		c.Spotify.RedirectURI = d.Spotify.RedirectURI
	}

	// Session
	if c.Session.PollInterval == 0 {
		c.Session.PollInterval = d.Session.PollInterval
	}
	if c.Session.ToggleSettle == 0 {
		c.Session.ToggleSettle = d.Session.ToggleSettle
	}
	if c.Session.SkipSettle == 0 {
		c.Session.SkipSettle = d.Session.SkipSettle
	}
	if c.Session.SeekSettle == 0 {
		c.Session.SeekSettle = d.Session.SeekSettle
	}
	if c.Session.PlaySettle == 0 {
		c.Session.PlaySettle = d.Session.PlaySettle
	}

	// History
	if c.History.Backend == "" {
		c.History.Backend = d.History.Backend
	}

	// Search
	if c.Search.Debounce == 0 {
		c.Search.Debounce = d.Search.Debounce
	}
	if c.Search.CacheTTL == 0 {
		c.Search.CacheTTL = d.Search.CacheTTL
	}
	if c.Search.CacheSize == 0 {
		c.Search.CacheSize = d.Search.CacheSize
	}
	if c.Search.PageSize == 0 {
		c.Search.PageSize = d.Search.PageSize
	}
	if c.Search.MaxRetries == 0 {
		c.Search.MaxRetries = d.Search.MaxRetries
	}
	if c.Search.RetryDelay == 0 {
		c.Search.RetryDelay = d.Search.RetryDelay
	}
	if c.Search.DefaultSource == "" {
		c.Search.DefaultSource = d.Search.DefaultSource
	}
	if c.Search.Licenses == nil {
		c.Search.Licenses = d.Search.Licenses
	}

	// Sources
	applySourceDefaults(&c.Sources.Openverse, d.Sources.Openverse)
	applySourceDefaults(&c.Sources.RoyaltyFree, d.Sources.RoyaltyFree)
	applySourceDefaults(&c.Sources.Spotify, d.Sources.Spotify)

	// Metrics
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = d.Metrics.Addr
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.ShowHistory == nil {
		c.TUI.ShowHistory = d.TUI.ShowHistory
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

func applySourceDefaults(c *SourceConfig, d SourceConfig) {
	if c.Enabled == nil {
		c.Enabled = d.Enabled
	}
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
}
