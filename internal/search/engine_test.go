package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/tessro/jukebox/internal/core"
	apperrors "github.com/tessro/jukebox/internal/errors"
)

type fakeSource struct {
	id core.SourceID

	mu      sync.Mutex
	queries []string
	byID    map[string]*core.AudioItem
	err     error
	// block, when set, makes Search wait for ctx or release.
	block   bool
	release chan struct{}
	started chan string
}

func newFakeSource(id core.SourceID) *fakeSource {
	return &fakeSource{
		id:      id,
		byID:    map[string]*core.AudioItem{},
		release: make(chan struct{}),
		started: make(chan string, 16),
	}
}

func (f *fakeSource) ID() core.SourceID { return f.id }
func (f *fakeSource) Name() string      { return string(f.id) }

func (f *fakeSource) Search(ctx context.Context, p core.SearchParams) ([]core.AudioItem, error) {
	f.mu.Lock()
	f.queries = append(f.queries, p.Query)
	block, err := f.block, f.err
	f.mu.Unlock()

	f.started <- p.Query
	if block {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.release:
		}
	}
	if err != nil {
		return nil, err
	}
	return []core.AudioItem{{ID: p.Query + "-1", Title: p.Query, Source: f.id}}, nil
}

func (f *fakeSource) GetByID(_ context.Context, id string) (*core.AudioItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, "id:"+id)
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type fakeSources struct {
	active core.MusicSource
	all    map[core.SourceID]core.MusicSource
}

func (s fakeSources) Active() (core.MusicSource, error) { return s.active, nil }

func (s fakeSources) Get(id core.SourceID) (core.MusicSource, error) {
	src, ok := s.all[id]
	if !ok {
		return nil, errors.New("unknown source")
	}
	return src, nil
}

func newTestEngine(t *testing.T, src *fakeSource) *Engine {
	t.Helper()
	cache, err := NewCache[any](100, 5*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	sources := fakeSources{active: src, all: map[core.SourceID]core.MusicSource{src.id: src}}
	return NewEngine(sources, cache, zaptest.NewLogger(t), nil)
}

func TestSearchCachesResults(t *testing.T) {
	src := newFakeSource(core.SourceOpenverse)
	e := newTestEngine(t, src)
	ctx := context.Background()

	first, err := e.Search(ctx, core.SearchParams{Query: "rain"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Search(ctx, core.SearchParams{Query: "  rain ", Licenses: []string{"cc", "pd"}})
	if err != nil {
		t.Fatal(err)
	}

	if src.calls() != 1 {
		t.Errorf("source calls = %d, want 1", src.calls())
	}
	if len(second) != 1 || second[0].ID != first[0].ID {
		t.Errorf("cached result = %v, want %v", second, first)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	src := newFakeSource(core.SourceOpenverse)
	e := newTestEngine(t, src)

	items, err := e.Search(context.Background(), core.SearchParams{Query: "   "})
	if err != nil || len(items) != 0 {
		t.Errorf("Search(blank) = %v, %v", items, err)
	}
	if src.calls() != 0 {
		t.Error("blank query should not reach the source")
	}
}

func TestSearchErrorsNotCached(t *testing.T) {
	src := newFakeSource(core.SourceOpenverse)
	src.err = errors.New("openverse API error: 500")
	e := newTestEngine(t, src)
	ctx := context.Background()

	if _, err := e.Search(ctx, core.SearchParams{Query: "rain"}); err == nil {
		t.Fatal("expected error")
	}

	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()

	items, err := e.Search(ctx, core.SearchParams{Query: "rain"})
	if err != nil {
		t.Fatalf("second Search() error = %v", err)
	}
	if len(items) != 1 || src.calls() != 2 {
		t.Errorf("items = %v, calls = %d; want retry to hit the source", items, src.calls())
	}
}

func TestSearchSupersededResolvesEmpty(t *testing.T) {
	src := newFakeSource(core.SourceOpenverse)
	src.block = true
	e := newTestEngine(t, src)
	ctx := context.Background()

	type outcome struct {
		items []core.AudioItem
		err   error
	}
	first := make(chan outcome, 1)
	go func() {
		items, err := e.Search(ctx, core.SearchParams{Query: "rain"})
		first <- outcome{items, err}
	}()
	<-src.started

	second := make(chan outcome, 1)
	go func() {
		items, err := e.Search(ctx, core.SearchParams{Query: "rain"})
		second <- outcome{items, err}
	}()
	<-src.started

	select {
	case got := <-first:
		if got.err != nil {
			t.Errorf("superseded request error = %v, want nil", got.err)
		}
		if got.items == nil || len(got.items) != 0 {
			t.Errorf("superseded request items = %v, want empty slice", got.items)
		}
	case <-time.After(time.Second):
		t.Fatal("superseded request was not cancelled")
	}

	close(src.release)
	got := <-second
	if got.err != nil || len(got.items) != 1 {
		t.Errorf("latest request = %v, %v", got.items, got.err)
	}
}

func TestSearchCallerCancellation(t *testing.T) {
	src := newFakeSource(core.SourceOpenverse)
	src.block = true
	e := newTestEngine(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := e.Search(ctx, core.SearchParams{Query: "a"})
		done <- err
	}()
	<-src.started
	cancel()

	if err := <-done; err != nil {
		t.Errorf("cancelled search error = %v, want nil", err)
	}
}

func TestSearchDeadlineIsAnError(t *testing.T) {
	src := newFakeSource(core.SourceOpenverse)
	src.block = true
	e := newTestEngine(t, src)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	items, err := e.Search(ctx, core.SearchParams{Query: "slow"})
	if !errors.Is(err, apperrors.ErrTimeout) || !errors.Is(err, apperrors.ErrNetworkError) {
		t.Fatalf("Search() error = %v, want timeout", err)
	}
	if items != nil {
		t.Errorf("Search() items = %v, want nil", items)
	}

	// Not cached: the next call reaches the source again.
	src.mu.Lock()
	src.block = false
	src.mu.Unlock()
	if _, err := e.Search(context.Background(), core.SearchParams{Query: "slow"}); err != nil {
		t.Fatal(err)
	}
	if got := src.calls(); got != 2 {
		t.Errorf("source calls = %d, want 2", got)
	}
}

func TestSearchIn(t *testing.T) {
	src := newFakeSource(core.SourceOpenverse)
	e := newTestEngine(t, src)

	if _, err := e.SearchIn(context.Background(), core.SourceRoyaltyFree, core.SearchParams{Query: "x"}); err == nil {
		t.Error("unknown source should error")
	}
	items, err := e.SearchIn(context.Background(), "", core.SearchParams{Query: "x"})
	if err != nil || len(items) != 1 {
		t.Errorf("SearchIn(active) = %v, %v", items, err)
	}
}

func TestGetByID(t *testing.T) {
	src := newFakeSource(core.SourceOpenverse)
	src.byID["abc"] = &core.AudioItem{ID: "abc", Title: "Rainfall"}
	e := newTestEngine(t, src)
	ctx := context.Background()

	item, err := e.GetByID(ctx, "abc")
	if err != nil || item == nil || item.Title != "Rainfall" {
		t.Fatalf("GetByID() = %v, %v", item, err)
	}
	_, _ = e.GetByID(ctx, "abc")
	if src.calls() != 1 {
		t.Errorf("second lookup should be cached, calls = %d", src.calls())
	}

	missing, err := e.GetByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("GetByID(missing) = %v, %v", missing, err)
	}
	_, _ = e.GetByID(ctx, "nope")
	if src.calls() != 3 {
		t.Errorf("nil results should not be cached, calls = %d", src.calls())
	}
}

func TestGetByIDErrorIsNotFound(t *testing.T) {
	src := newFakeSource(core.SourceOpenverse)
	src.err = errors.New("boom")
	e := newTestEngine(t, src)

	item, err := e.GetByID(context.Background(), "abc")
	if err != nil || item != nil {
		t.Errorf("GetByID() = %v, %v; want nil, nil", item, err)
	}
}

func TestClearCache(t *testing.T) {
	src := newFakeSource(core.SourceOpenverse)
	e := newTestEngine(t, src)
	ctx := context.Background()

	_, _ = e.Search(ctx, core.SearchParams{Query: "rain"})
	e.ClearCache()
	_, _ = e.Search(ctx, core.SearchParams{Query: "rain"})
	if src.calls() != 2 {
		t.Errorf("calls = %d, want 2 after ClearCache", src.calls())
	}
}
