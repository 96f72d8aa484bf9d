package source

import (
	"context"
	"net/http"
	"strings"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/tessro/jukebox/internal/config"
	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/store"
)

// Deps carries what the Spotify source needs. Tokens may be nil, in which
// case the Spotify source is skipped even when enabled.
type Deps struct {
	HTTPClient *http.Client
	Tokens     oauth2.TokenSource
	Auth       core.Authenticator
}

// FromConfig builds a registry with every source enabled in cfg.
func FromConfig(ctx context.Context, cfg *config.Config, s store.Store, deps Deps, logger *zap.Logger) *Registry {
	defaultID, err := core.ParseSourceID(cfg.Search.DefaultSource)
	if err != nil {
		defaultID = core.SourceOpenverse
	}
	reg := NewRegistry(defaultID, s, logger)

	if sc := cfg.Sources.Openverse; sc.IsEnabled() {
		fetch := NewFetcher("Openverse", deps.HTTPClient, cfg.Search, logger)
		reg.Register(NewOpenverse(sc.BaseURL, fetch))
	}

	if sc := cfg.Sources.RoyaltyFree; sc.IsEnabled() {
		if sc.ClientID == "" {
			logger.Warn("Royalty-free source has no client_id; searches will fail until one is set")
		}
		fetch := NewFetcher("Jamendo", deps.HTTPClient, cfg.Search, logger)
		reg.Register(NewJamendo(sc.BaseURL, sc.ClientID, fetch))
	}

	if sc := cfg.Sources.Spotify; sc.IsEnabled() {
		if deps.Tokens == nil || deps.Auth == nil {
			logger.Warn("Spotify source enabled but no token source is available")
		} else {
			var opts []spotify.ClientOption
			if sc.BaseURL != "" {
				opts = append(opts, spotify.WithBaseURL(strings.TrimRight(sc.BaseURL, "/")+"/"))
			}
			reg.Register(NewSpotifyFromTokens(ctx, deps.Tokens, deps.Auth, opts...))
		}
	}

	return reg
}
