// Package source provides the pluggable audio catalogs searched by the
// session and the registry that tracks which one is active.
package source

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tessro/jukebox/internal/core"
	apperrors "github.com/tessro/jukebox/internal/errors"
	"github.com/tessro/jukebox/internal/store"
)

// Registry holds the enabled sources and remembers the active one.
type Registry struct {
	store     store.Store
	logger    *zap.Logger
	defaultID core.SourceID

	mu      sync.RWMutex
	sources map[core.SourceID]core.MusicSource
}

// NewRegistry creates an empty registry. defaultID is used when no source
// has been selected or the stored one is no longer enabled.
func NewRegistry(defaultID core.SourceID, s store.Store, logger *zap.Logger) *Registry {
	return &Registry{
		store:     s,
		logger:    logger,
		defaultID: defaultID,
		sources:   make(map[core.SourceID]core.MusicSource),
	}
}

// Register enables src.
func (r *Registry) Register(src core.MusicSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[src.ID()] = src
}

// IsEnabled reports whether id is registered.
func (r *Registry) IsEnabled(id core.SourceID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sources[id]
	return ok
}

// Enabled returns the registered sources in display order.
func (r *Registry) Enabled() []core.MusicSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.MusicSource
	for _, id := range core.SourceIDs {
		if src, ok := r.sources[id]; ok {
			out = append(out, src)
		}
	}
	return out
}

// Get returns the source for id.
func (r *Registry) Get(id core.SourceID) (core.MusicSource, error) {
	if _, err := core.ParseSourceID(string(id)); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownSource, id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSourceDisabled, id)
	}
	return src, nil
}

// ActiveID returns the selected source, falling back to the default and then
// to the first enabled source.
func (r *Registry) ActiveID() core.SourceID {
	stored, ok, err := r.store.Get(store.KeyAudioSource)
	if err != nil {
		r.logger.Warn("Failed to read active source",
			zap.Error(&apperrors.PersistenceError{Op: "read", Key: store.KeyAudioSource, Err: err}))
	}
	if ok && r.IsEnabled(core.SourceID(stored)) {
		return core.SourceID(stored)
	}
	if r.IsEnabled(r.defaultID) {
		return r.defaultID
	}
	if enabled := r.Enabled(); len(enabled) > 0 {
		return enabled[0].ID()
	}
	return r.defaultID
}

// Active returns the selected source.
func (r *Registry) Active() (core.MusicSource, error) {
	return r.Get(r.ActiveID())
}

// SetActive selects id and persists the choice.
func (r *Registry) SetActive(id core.SourceID) error {
	if _, err := r.Get(id); err != nil {
		return err
	}
	if err := r.store.Set(store.KeyAudioSource, string(id)); err != nil {
		return &apperrors.PersistenceError{Op: "write", Key: store.KeyAudioSource, Err: err}
	}
	r.logger.Debug("Active source changed", zap.String("source", string(id)))
	return nil
}

// Next returns the enabled source after the active one, wrapping around.
func (r *Registry) Next(from core.SourceID) core.SourceID {
	enabled := r.Enabled()
	if len(enabled) == 0 {
		return from
	}
	for i, src := range enabled {
		if src.ID() == from {
			return enabled[(i+1)%len(enabled)].ID()
		}
	}
	return enabled[0].ID()
}
