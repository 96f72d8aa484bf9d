// Package auth implements the Spotify authorization code flow with PKCE and
// keeps the resulting tokens on disk.
package auth

import (
	"golang.org/x/oauth2"

	"github.com/tessro/jukebox/internal/config"
)

const (
	// SpotifyAuthURL is the Spotify authorization endpoint.
	SpotifyAuthURL = "https://accounts.spotify.com/authorize"

	// SpotifyTokenURL is the Spotify token endpoint.
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"

	// DefaultRedirectURI is the default callback URI for the local server.
	DefaultRedirectURI = "http://127.0.0.1:8888/callback"
)

// DefaultScopes are the Spotify scopes jukebox needs: playback control and
// the recently played list used to seed history.
var DefaultScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"user-read-recently-played",
	"user-read-private",
}

// Config holds the OAuth configuration.
type Config struct {
	ClientID    string
	RedirectURI string
	Scopes      []string
	AuthURL     string
	TokenURL    string
}

// NewConfig creates an OAuth configuration from the [spotify] config section.
func NewConfig(cfg config.SpotifyConfig) *Config {
	redirect := cfg.RedirectURI
	if redirect == "" {
		redirect = DefaultRedirectURI
	}
	return &Config{
		ClientID:    cfg.ClientID,
		RedirectURI: redirect,
		Scopes:      DefaultScopes,
		AuthURL:     SpotifyAuthURL,
		TokenURL:    SpotifyTokenURL,
	}
}

// OAuth2 returns the equivalent oauth2 configuration. Spotify's PKCE flow is
// a public client, so the client id travels in the request body.
func (c *Config) OAuth2() *oauth2.Config {
	return &oauth2.Config{
		ClientID:    c.ClientID,
		RedirectURL: c.RedirectURI,
		Scopes:      c.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.AuthURL,
			TokenURL:  c.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// BuildAuthURL constructs the authorization URL with PKCE parameters.
func (c *Config) BuildAuthURL(pkce *PKCE) string {
	return c.OAuth2().AuthCodeURL(pkce.State,
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", pkce.Challenge))
}
