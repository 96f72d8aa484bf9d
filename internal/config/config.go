package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// AppName is used for config and data directory names.
const AppName = "jukebox"

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.jukeboxrc, $XDG_CONFIG_HOME/jukebox/config.toml, ~/.config/jukebox/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultPath is where `config init` writes a new file.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName + "rc"
	}
	return filepath.Join(home, "."+AppName+"rc")
}

// DataDir returns the directory for tokens and persisted history.
func DataDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, "."+AppName+"rc"),
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, AppName, "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
// Variables from a .env file in the working directory are loaded first;
// variables already set in the environment take precedence.
func applyEnvOverrides(cfg *Config) {
	_ = godotenv.Load()

	// Spotify
	if v := os.Getenv("JUKEBOX_SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := os.Getenv("JUKEBOX_SPOTIFY_REDIRECT_URI"); v != "" {
		cfg.Spotify.RedirectURI = v
	}

	// Session
	if v := os.Getenv("JUKEBOX_POLL_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Session.PollInterval = i
		}
	}

	// History
	if v := os.Getenv("JUKEBOX_HISTORY_BACKEND"); v != "" {
		cfg.History.Backend = v
	}
	if v := os.Getenv("JUKEBOX_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}

	// Search
	if v := os.Getenv("JUKEBOX_SEARCH_SOURCE"); v != "" {
		cfg.Search.DefaultSource = v
	}
	if v := os.Getenv("JUKEBOX_SEARCH_LICENSES"); v != "" {
		cfg.Search.Licenses = strings.Split(v, ",")
	}

	// Sources
	if v := os.Getenv("JUKEBOX_JAMENDO_CLIENT_ID"); v != "" {
		cfg.Sources.RoyaltyFree.ClientID = v
	}
	if v := os.Getenv("JUKEBOX_SPOTIFY_SOURCE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Sources.Spotify.Enabled = boolPtr(b)
		}
	}

	// Metrics
	if v := os.Getenv("JUKEBOX_METRICS_ADDR"); v != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = v
	}

	// TUI
	if v := os.Getenv("JUKEBOX_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}

	// Log
	if v := os.Getenv("JUKEBOX_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("JUKEBOX_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
