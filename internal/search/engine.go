package search

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/tessro/jukebox/internal/core"
	apperrors "github.com/tessro/jukebox/internal/errors"
	"github.com/tessro/jukebox/internal/metrics"
)

// Sources resolves the catalogs a search can run against.
type Sources interface {
	Active() (core.MusicSource, error)
	Get(id core.SourceID) (core.MusicSource, error)
}

type call struct {
	cancel context.CancelFunc
}

// Engine runs cached catalog lookups. At most one request per cache key is
// in flight; a new request for the same key cancels the previous one.
type Engine struct {
	sources Sources
	cache   *Cache[any]
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	inflight map[string]*call
}

// NewEngine creates an engine over sources with the given cache.
func NewEngine(sources Sources, cache *Cache[any], logger *zap.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		sources:  sources,
		cache:    cache,
		logger:   logger,
		metrics:  m,
		inflight: make(map[string]*call),
	}
}

// Search queries the active source.
func (e *Engine) Search(ctx context.Context, params core.SearchParams) ([]core.AudioItem, error) {
	src, err := e.sources.Active()
	if err != nil {
		return nil, err
	}
	return e.SearchSource(ctx, src, params)
}

// SearchIn queries the named source, or the active one when id is empty.
func (e *Engine) SearchIn(ctx context.Context, id core.SourceID, params core.SearchParams) ([]core.AudioItem, error) {
	if id == "" {
		return e.Search(ctx, params)
	}
	src, err := e.sources.Get(id)
	if err != nil {
		return nil, err
	}
	return e.SearchSource(ctx, src, params)
}

// SearchSource queries src through the cache. A request that is cancelled,
// either by the caller or by a newer request for the same key, resolves to
// an empty result rather than an error. A deadline is not a cancellation:
// it fails with a Timeout error. Errors are never cached.
func (e *Engine) SearchSource(ctx context.Context, src core.MusicSource, params core.SearchParams) ([]core.AudioItem, error) {
	params = params.WithDefaults()
	params.Query = strings.TrimSpace(params.Query)
	if params.Query == "" {
		return []core.AudioItem{}, nil
	}

	key, err := Key(src.ID(), MethodSearch, params)
	if err != nil {
		return nil, err
	}

	if cached, ok := e.cache.Get(key); ok {
		e.metrics.RecordLookup(true)
		return cached.([]core.AudioItem), nil
	}
	e.metrics.RecordLookup(false)

	callCtx, done := e.begin(ctx, key)
	defer done()

	items, err := src.Search(callCtx, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			e.metrics.RecordSearch(string(src.ID()), "error")
			return nil, apperrors.Timeout(err)
		}
		if apperrors.IsCancellation(err) || callCtx.Err() != nil {
			e.metrics.RecordSearch(string(src.ID()), "canceled")
			e.logger.Debug("Search superseded", zap.String("query", params.Query))
			return []core.AudioItem{}, nil
		}
		e.metrics.RecordSearch(string(src.ID()), "error")
		return nil, err
	}
	if items == nil {
		items = []core.AudioItem{}
	}

	e.metrics.RecordSearch(string(src.ID()), "ok")
	e.cache.Set(key, items)
	e.metrics.SetCacheEntries(e.cache.Len())
	return items, nil
}

// GetByID looks up a single item on the active source. Lookup failures are
// logged and reported as not found; nil results are not cached.
func (e *Engine) GetByID(ctx context.Context, id string) (*core.AudioItem, error) {
	src, err := e.sources.Active()
	if err != nil {
		return nil, err
	}

	key, err := Key(src.ID(), MethodGetByID, byIDParams{ID: id})
	if err != nil {
		return nil, err
	}

	if cached, ok := e.cache.Get(key); ok {
		e.metrics.RecordLookup(true)
		return cached.(*core.AudioItem), nil
	}
	e.metrics.RecordLookup(false)

	item, err := src.GetByID(ctx, id)
	if err != nil {
		e.logger.Warn("Get by ID failed",
			zap.String("source", string(src.ID())),
			zap.String("id", id),
			zap.Error(err))
		return nil, nil
	}
	if item != nil {
		e.cache.Set(key, item)
		e.metrics.SetCacheEntries(e.cache.Len())
	}
	return item, nil
}

// ClearCache drops every cached result.
func (e *Engine) ClearCache() {
	e.cache.Purge()
	e.metrics.SetCacheEntries(0)
}

// begin registers a request under key, cancelling any request already in
// flight for it. done must be called when the request finishes.
func (e *Engine) begin(ctx context.Context, key string) (context.Context, func()) {
	callCtx, cancel := context.WithCancel(ctx)
	c := &call{cancel: cancel}

	e.mu.Lock()
	if prev, ok := e.inflight[key]; ok {
		prev.cancel()
	}
	e.inflight[key] = c
	e.mu.Unlock()

	return callCtx, func() {
		e.mu.Lock()
		if e.inflight[key] == c {
			delete(e.inflight, key)
		}
		e.mu.Unlock()
		cancel()
	}
}
