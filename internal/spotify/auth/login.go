package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// LoginTimeout bounds how long Login waits for the browser redirect.
const LoginTimeout = 5 * time.Minute

// OpenFunc shows the authorization URL to the user, usually in a browser.
type OpenFunc func(url string) error

// Login runs the authorization code flow: it starts the callback server,
// hands the authorization URL to open, exchanges the returned code and
// saves the token in store.
func Login(ctx context.Context, cfg *Config, store *TokenStore, open OpenFunc, logger *zap.Logger) error {
	if cfg.ClientID == "" {
		return errors.New("spotify client_id is not configured")
	}

	pkce, err := NewPKCE()
	if err != nil {
		return fmt.Errorf("failed to generate PKCE: %w", err)
	}

	server, err := NewCallbackServer(cfg.RedirectURI)
	if err != nil {
		return err
	}
	server.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	// Port 0 means any free port; the redirect must name the real one.
	if u, err := url.Parse(cfg.RedirectURI); err == nil && u.Port() == "0" {
		c := *cfg
		c.RedirectURI = server.URL()
		cfg = &c
	}

	authURL := cfg.BuildAuthURL(pkce)
	logger.Debug("Waiting for authorization", zap.String("callback", server.URL()))
	if err := open(authURL); err != nil {
		logger.Warn("Could not open browser", zap.Error(err))
	}

	waitCtx, cancel := context.WithTimeout(ctx, LoginTimeout)
	defer cancel()
	result, err := server.Wait(waitCtx)
	if err != nil {
		return fmt.Errorf("authorization not completed: %w", err)
	}
	if result.Error != "" {
		return fmt.Errorf("authorization denied: %s", result.Error)
	}
	if result.State != pkce.State {
		return errors.New("authorization state mismatch")
	}

	token, err := ExchangeCode(ctx, cfg, result.Code, pkce.Verifier)
	if err != nil {
		return err
	}
	if err := store.Save(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}
