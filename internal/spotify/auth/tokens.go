package auth

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	apperrors "github.com/tessro/jukebox/internal/errors"
)

// TokenStore hands out valid access tokens. Lookups go to memory first, then
// disk, and refresh an expired token when a refresh token is available.
type TokenStore struct {
	cfg     *Config
	storage *TokenStorage
	logger  *zap.Logger
	now     func() time.Time

	mu     sync.Mutex
	token  *Token
	loaded bool
}

// NewTokenStore creates a token store over storage.
func NewTokenStore(cfg *Config, storage *TokenStorage, logger *zap.Logger) *TokenStore {
	return &TokenStore{
		cfg:     cfg,
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// load reads the disk token once. Callers hold mu.
func (s *TokenStore) load() {
	if s.loaded {
		return
	}
	s.loaded = true
	tok, err := s.storage.Load()
	if err != nil {
		s.logger.Warn("Failed to load stored token", zap.Error(err))
		return
	}
	s.token = tok
}

// IsAuthenticated reports whether a usable token is present: an unexpired
// access token, or any token that can be refreshed.
func (s *TokenStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	if s.token == nil || s.token.AccessToken == "" {
		return false
	}
	return !s.token.expiredAt(s.now()) || s.token.RefreshToken != ""
}

// Token returns the current token, refreshing it when expired. It fails
// with ErrNotAuthenticated when no usable token exists.
func (s *TokenStore) Token(ctx context.Context) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	if s.token == nil || s.token.AccessToken == "" {
		return nil, apperrors.ErrNotAuthenticated
	}
	if !s.token.expiredAt(s.now()) {
		return s.token, nil
	}
	if s.token.RefreshToken == "" {
		return nil, apperrors.ErrNotAuthenticated
	}

	s.logger.Debug("Refreshing access token")
	fresh, err := RefreshAccessToken(ctx, s.cfg, s.token.RefreshToken)
	if err != nil {
		if apperrors.IsCancellation(err) || ctx.Err() != nil {
			return nil, err
		}
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, apperrors.WithSuggestion(
			&refreshError{err: err},
			"Run 'jukebox auth login' to authenticate with Spotify")
	}

	s.token = fresh
	if err := s.storage.Save(fresh); err != nil {
		s.logger.Warn("Failed to persist refreshed token", zap.Error(err))
	}
	return fresh, nil
}

// ValidToken returns a valid bearer token.
func (s *TokenStore) ValidToken(ctx context.Context) (string, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Save stores a new token in memory and on disk.
func (s *TokenStore) Save(tok *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
	s.loaded = true
	return s.storage.Save(tok)
}

// Clear forgets the token and removes it from disk.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
	s.loaded = true
	return s.storage.Delete()
}

// Current returns the cached token without refreshing it.
func (s *TokenStore) Current() *Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	return s.token
}

// TokenSource exposes the store as an oauth2.TokenSource bound to ctx.
func (s *TokenStore) TokenSource(ctx context.Context) oauth2.TokenSource {
	return tokenSource{ctx: ctx, store: s}
}

type tokenSource struct {
	ctx   context.Context
	store *TokenStore
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	tok, err := ts.store.Token(ts.ctx)
	if err != nil {
		return nil, err
	}
	return tok.OAuth2(), nil
}

// refreshError marks a failed refresh as an authentication failure.
type refreshError struct {
	err error
}

func (e *refreshError) Error() string { return e.err.Error() }
func (e *refreshError) Unwrap() error { return e.err }
func (e *refreshError) Is(target error) bool {
	return target == apperrors.ErrNotAuthenticated
}
