// Package store persists small string values (history lists, the active
// audio source) across runs.
package store

import (
	"fmt"
	"path/filepath"

	"github.com/tessro/jukebox/internal/config"
)

// Keys used by the session.
const (
	KeyRecentlyPlayed = "recently_played_v1"
	KeySearchHistory  = "search_history_v1"
	KeyAudioSource    = "audio_source"
)

// Store is a durable key/value store.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Close() error
}

// Open returns the store selected by the history config.
func Open(cfg config.HistoryConfig) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		path, err := resolvePath(cfg.Path, "history.db")
		if err != nil {
			return nil, err
		}
		return OpenSQLite(path)
	case "", "file":
		path, err := resolvePath(cfg.Path, "state.json")
		if err != nil {
			return nil, err
		}
		return NewFileStore(path), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

func resolvePath(path, name string) (string, error) {
	if path != "" {
		return path, nil
	}
	dir, err := config.DataDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, name), nil
}
