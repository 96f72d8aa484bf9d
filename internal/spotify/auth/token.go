package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// expiryBuffer is how long before expiry a token is treated as expired.
const expiryBuffer = 60 * time.Second

// Token is the persisted form of a Spotify OAuth token.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	Scope        string    `json:"scope"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IsExpired returns true if the token has expired or will expire within the buffer.
func (t *Token) IsExpired() bool {
	return t.expiredAt(time.Now())
}

func (t *Token) expiredAt(now time.Time) bool {
	return now.Add(expiryBuffer).After(t.ExpiresAt)
}

// OAuth2 converts the token for use with oauth2 transports.
func (t *Token) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt,
	}
}

func fromOAuth2(tok *oauth2.Token) *Token {
	t := &Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		t.Scope = scope
	}
	if !tok.Expiry.IsZero() {
		t.ExpiresIn = int(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	return t
}

// ExchangeCode exchanges an authorization code for tokens.
func ExchangeCode(ctx context.Context, cfg *Config, code, codeVerifier string) (*Token, error) {
	ctx = withHTTPClient(ctx)
	tok, err := cfg.OAuth2().Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", describe(err))
	}
	return fromOAuth2(tok), nil
}

// RefreshAccessToken uses a refresh token to get a new access token. The
// refresh token is preserved when Spotify does not rotate it.
func RefreshAccessToken(ctx context.Context, cfg *Config, refreshToken string) (*Token, error) {
	ctx = withHTTPClient(ctx)
	src := cfg.OAuth2().TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", describe(err))
	}
	t := fromOAuth2(tok)
	if t.RefreshToken == "" {
		t.RefreshToken = refreshToken
	}
	return t, nil
}

func withHTTPClient(ctx context.Context) context.Context {
	if _, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: 30 * time.Second})
}

// describe flattens oauth2's RetrieveError into Spotify's error code and
// description.
func describe(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.ErrorCode != "" {
		return fmt.Errorf("token error: %s - %s", re.ErrorCode, re.ErrorDescription)
	}
	return err
}
