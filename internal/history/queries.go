package history

import (
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	apperrors "github.com/tessro/jukebox/internal/errors"
	"github.com/tessro/jukebox/internal/metrics"
	"github.com/tessro/jukebox/internal/store"
)

// MaxSearchHistory bounds the search query history.
const MaxSearchHistory = 4

// NormalizeQuery trims a query and collapses internal whitespace.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

// Queries is the recent search query list, newest first.
type Queries struct {
	store   store.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
	fold    cases.Caser

	mu      sync.RWMutex
	entries []string
}

// NewQueries creates an empty query history. Call Load to read the stored one.
func NewQueries(s store.Store, logger *zap.Logger, m *metrics.Metrics) *Queries {
	return &Queries{
		store:   s,
		logger:  logger,
		metrics: m,
		fold:    cases.Fold(),
	}
}

// Load reads the persisted history. Missing or malformed data is ignored.
func (q *Queries) Load() {
	raw, ok, err := q.store.Get(store.KeySearchHistory)
	if err != nil {
		q.persistenceError("read", err)
		return
	}
	if !ok {
		return
	}

	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || stored == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	// Hand-edited or older stores may hold untrimmed or case-duplicate
	// queries. The first (newest) spelling wins, as in Add.
	seen := make(map[string]struct{}, len(stored))
	entries := make([]string, 0, MaxSearchHistory)
	for _, s := range stored {
		n := NormalizeQuery(s)
		if n == "" {
			continue
		}
		key := q.fold.String(n)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, n)
		if len(entries) == MaxSearchHistory {
			break
		}
	}
	q.entries = entries
}

// Add records a query. Queries that differ only in case replace each other;
// the newest spelling is kept.
func (q *Queries) Add(query string) {
	normalized := NormalizeQuery(query)
	if normalized == "" {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	key := q.fold.String(normalized)

	next := make([]string, 0, MaxSearchHistory)
	next = append(next, normalized)
	for _, e := range q.entries {
		if len(next) == MaxSearchHistory {
			break
		}
		if q.fold.String(e) != key {
			next = append(next, e)
		}
	}
	q.entries = next

	data, err := json.Marshal(next)
	if err != nil {
		q.persistenceError("encode", err)
		return
	}
	if err := q.store.Set(store.KeySearchHistory, string(data)); err != nil {
		q.persistenceError("write", err)
	}
}

// Entries returns a copy of the history, newest first.
func (q *Queries) Entries() []string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]string, len(q.entries))
	copy(out, q.entries)
	return out
}

func (q *Queries) persistenceError(op string, err error) {
	q.metrics.RecordPersistenceError(op)
	q.logger.Warn("Search history persistence failed",
		zap.Error(&apperrors.PersistenceError{Op: op, Key: store.KeySearchHistory, Err: err}))
}
