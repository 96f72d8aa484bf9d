// Package history keeps the bounded recently played list and the search
// query history, and checkpoints both to the local store.
package history

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/tessro/jukebox/internal/core"
	apperrors "github.com/tessro/jukebox/internal/errors"
	"github.com/tessro/jukebox/internal/metrics"
	"github.com/tessro/jukebox/internal/store"
)

// MaxHistory bounds the recently played list.
const MaxHistory = 20

// RecentlyPlayedFetcher is the part of the gateway used for seeding.
type RecentlyPlayedFetcher interface {
	GetRecentlyPlayed(ctx context.Context, limit int) ([]core.HistoryEntry, error)
}

// Recent is the recently played list. Upsert is its only mutation.
type Recent struct {
	store   store.Store
	fetcher RecentlyPlayedFetcher
	auth    core.Authenticator
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	entries []core.HistoryEntry
	seeded  bool
	seeding bool
}

// NewRecent creates an unseeded list. metrics may be nil.
func NewRecent(s store.Store, fetcher RecentlyPlayedFetcher, auth core.Authenticator, logger *zap.Logger, m *metrics.Metrics) *Recent {
	return &Recent{
		store:   s,
		fetcher: fetcher,
		auth:    auth,
		logger:  logger,
		metrics: m,
	}
}

// DedupeAndCap keeps the first occurrence of each ID, drops entries without
// an ID and truncates to max.
func DedupeAndCap(entries []core.HistoryEntry, max int) []core.HistoryEntry {
	seen := make(map[string]struct{}, len(entries))
	result := make([]core.HistoryEntry, 0, min(len(entries), max))
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		result = append(result, e)
		if len(result) >= max {
			break
		}
	}
	return result
}

// Seed loads the initial list: from the store when it holds a well-formed
// list, otherwise from the remote recently played endpoint when signed in,
// otherwise empty. Seeded is true afterwards in every case. Calling Seed
// again is a no-op.
func (r *Recent) Seed(ctx context.Context) {
	r.mu.Lock()
	if r.seeded || r.seeding {
		r.mu.Unlock()
		return
	}
	r.seeding = true
	r.mu.Unlock()

	initial, persist := r.load(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	// Anything upserted before or during seeding is newer than the seed.
	// Those upserts were held back from the store, so write the merge now.
	pending := len(r.entries) > 0
	r.entries = DedupeAndCap(append(r.entries, initial...), MaxHistory)
	r.seeded = true
	r.seeding = false
	if persist || pending {
		r.persistLocked()
	}
	r.logger.Debug("Seeded recently played", zap.Int("entries", len(r.entries)))
}

func (r *Recent) load(ctx context.Context) ([]core.HistoryEntry, bool) {
	raw, ok, err := r.store.Get(store.KeyRecentlyPlayed)
	if err != nil {
		r.persistenceError("read", err)
	} else if ok {
		var stored []core.HistoryEntry
		if err := json.Unmarshal([]byte(raw), &stored); err == nil && stored != nil {
			return DedupeAndCap(stored, MaxHistory), false
		}
		r.logger.Debug("Ignoring malformed recently played entry in store")
	}

	if r.auth == nil || !r.auth.IsAuthenticated() {
		return nil, false
	}

	items, err := r.fetcher.GetRecentlyPlayed(ctx, MaxHistory)
	if err != nil {
		r.logger.Warn("Failed to fetch recently played", zap.Error(err))
		return nil, false
	}
	return DedupeAndCap(items, MaxHistory), true
}

// Upsert moves entry to the front of the list, replacing any entry with the
// same ID, and persists the result. Before Seed finishes the entry is kept
// in memory only, so the stored list is never overwritten unread. Entries
// without an ID are ignored.
func (r *Recent) Upsert(entry core.HistoryEntry) {
	if entry.ID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]core.HistoryEntry, 0, len(r.entries)+1)
	next = append(next, entry)
	for _, e := range r.entries {
		if e.ID != entry.ID {
			next = append(next, e)
		}
	}
	if len(next) > MaxHistory {
		next = next[:MaxHistory]
	}
	r.entries = next
	if r.seeded {
		r.persistLocked()
	}
	r.metrics.RecordUpsert(len(r.entries))
}

// Entries returns a copy of the list, newest first.
func (r *Recent) Entries() []core.HistoryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.HistoryEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Seeded reports whether the initial load finished. Before that the list is
// unknown rather than empty.
func (r *Recent) Seeded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seeded
}

func (r *Recent) persistLocked() {
	data, err := json.Marshal(r.entries)
	if err != nil {
		r.persistenceError("encode", err)
		return
	}
	if err := r.store.Set(store.KeyRecentlyPlayed, string(data)); err != nil {
		r.persistenceError("write", err)
	}
}

func (r *Recent) persistenceError(op string, err error) {
	r.metrics.RecordPersistenceError(op)
	r.logger.Warn("History persistence failed",
		zap.Error(&apperrors.PersistenceError{Op: op, Key: store.KeyRecentlyPlayed, Err: err}))
}
