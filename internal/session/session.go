// Package session wires the configured engines together. A Session owns
// every long-lived component and is built once per command.
package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tessro/jukebox/internal/config"
	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/history"
	"github.com/tessro/jukebox/internal/metrics"
	"github.com/tessro/jukebox/internal/playback"
	"github.com/tessro/jukebox/internal/search"
	"github.com/tessro/jukebox/internal/source"
	"github.com/tessro/jukebox/internal/spotify/auth"
	"github.com/tessro/jukebox/internal/spotify/client"
	"github.com/tessro/jukebox/internal/spotify/gateway"
	"github.com/tessro/jukebox/internal/store"
)

// Deps overrides the components New would otherwise build from config.
// Every field is optional.
type Deps struct {
	Logger     *zap.Logger
	Store      store.Store
	Gateway    core.Gateway
	Auth       core.Authenticator
	HTTPClient *http.Client
}

// Options selects which background work Init starts.
type Options struct {
	// Poll starts the playback poll loop.
	Poll bool
	// ServeMetrics starts the metrics endpoint when [metrics] is enabled.
	ServeMetrics bool
}

// Session holds the engines for one run.
type Session struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      store.Store
	AuthConfig *auth.Config
	Tokens     *auth.TokenStore
	Auth       core.Authenticator
	Gateway    core.Gateway
	Metrics    *metrics.Metrics

	Playback *playback.Engine
	Recent   *history.Recent
	Queries  *history.Queries
	Search   *search.Engine
	Sources  *source.Registry

	registry *prometheus.Registry
	server   *metrics.Server

	disposeOnce sync.Once
	disposeErr  error
}

// New builds a session from cfg. Nothing talks to the network until Init.
func New(cfg *config.Config, deps Deps) (*Session, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Metrics.Enabled {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		s.Metrics = metrics.New(s.registry)
	}

	s.Store = deps.Store
	if s.Store == nil {
		st, err := store.Open(cfg.History)
		if err != nil {
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
		s.Store = st
	}

	storage, err := auth.NewTokenStorage(cfg.Spotify.TokenPath)
	if err != nil {
		_ = s.Store.Close()
		return nil, err
	}
	s.AuthConfig = auth.NewConfig(cfg.Spotify)
	s.Tokens = auth.NewTokenStore(s.AuthConfig, storage, logger.Named("auth"))

	s.Auth = deps.Auth
	if s.Auth == nil {
		s.Auth = s.Tokens
	}

	s.Gateway = deps.Gateway
	if s.Gateway == nil {
		opts := []client.Option{client.WithMetrics(s.Metrics)}
		if deps.HTTPClient != nil {
			opts = append(opts, client.WithHTTPClient(deps.HTTPClient))
		}
		s.Gateway = gateway.New(client.New(s.Tokens, logger.Named("spotify"), opts...))
	}

	s.Recent = history.NewRecent(s.Store, s.Gateway, s.Auth, logger.Named("history"), s.Metrics)
	s.Queries = history.NewQueries(s.Store, logger.Named("history"), s.Metrics)
	s.Playback = playback.New(s.Gateway, s.Auth, s.Recent, playback.ConfigFrom(cfg.Session), logger.Named("playback"), s.Metrics)

	s.Sources = source.FromConfig(context.Background(), cfg, s.Store, source.Deps{
		HTTPClient: deps.HTTPClient,
		Tokens:     s.Tokens.TokenSource(context.Background()),
		Auth:       s.Auth,
	}, logger.Named("source"))

	cache, err := search.NewCache[any](cfg.Search.CacheSize, cfg.Search.TTL())
	if err != nil {
		_ = s.Store.Close()
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}
	s.Search = search.NewEngine(s.Sources, cache, logger.Named("search"), s.Metrics)

	return s, nil
}

// Init seeds the recently played list and loads search history, then
// starts the background work selected by opts.
func (s *Session) Init(ctx context.Context, opts Options) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Recent.Seed(gctx)
		return nil
	})
	g.Go(func() error {
		s.Queries.Load()
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if opts.Poll {
		s.Playback.Start(ctx)
	}

	if opts.ServeMetrics && s.registry != nil {
		srv, err := metrics.NewServer(s.Config.Metrics.Addr, s.registry, s.Ready, s.Logger.Named("metrics"))
		if err != nil {
			return err
		}
		s.server = srv
		go func() {
			if err := srv.Start(ctx); err != nil {
				s.Logger.Error("Metrics server stopped", zap.Error(err))
			}
		}()
	}

	return nil
}

// Ready reports whether history is seeded and playback has left Loading.
func (s *Session) Ready() bool {
	return s.Recent.Seeded() && s.Playback.Phase() != playback.PhaseLoading
}

// MetricsAddr returns the metrics server address, or "" when not serving.
func (s *Session) MetricsAddr() string {
	if s.server == nil {
		return ""
	}
	return s.server.Addr()
}

// Dispose stops background work and closes the store. Later calls return
// the first result.
func (s *Session) Dispose() error {
	s.disposeOnce.Do(func() {
		s.Playback.Stop()
		if s.server != nil {
			if err := s.server.Shutdown(); err != nil {
				s.Logger.Warn("Metrics server shutdown failed", zap.Error(err))
			}
		}
		s.disposeErr = s.Store.Close()
	})
	return s.disposeErr
}
