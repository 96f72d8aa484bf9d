package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tessro/jukebox/internal/config"
)

// DefaultTokenFileName is the default name for the token file.
const DefaultTokenFileName = "spotify_token.json"

// TokenStorage persists tokens to disk with owner-only permissions.
type TokenStorage struct {
	path string
}

// NewTokenStorage creates a new token storage at the specified path.
// If path is empty, uses the jukebox data directory.
func NewTokenStorage(path string) (*TokenStorage, error) {
	if path == "" {
		dir, err := config.DataDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		path = filepath.Join(dir, DefaultTokenFileName)
	}
	return &TokenStorage{path: path}, nil
}

// Save persists a token to disk. The file is replaced atomically.
func (s *TokenStorage) Save(token *Token) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Load reads a token from disk. It returns nil, nil when none is stored.
func (s *TokenStorage) Load() (*Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// Delete removes the stored token.
func (s *TokenStorage) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// Exists returns true if a token file exists.
func (s *TokenStorage) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Path returns the path to the token file.
func (s *TokenStorage) Path() string {
	return s.path
}
