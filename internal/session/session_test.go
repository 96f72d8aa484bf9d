package session

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/tessro/jukebox/internal/config"
	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/playback"
	"github.com/tessro/jukebox/internal/store"
)

type fakeAuth bool

func (a fakeAuth) IsAuthenticated() bool { return bool(a) }

type fakeGateway struct {
	mu     sync.Mutex
	limits []int
	recent []core.HistoryEntry
}

func (g *fakeGateway) GetPlaybackState(context.Context) (*core.PlaybackState, error) {
	return nil, nil
}
func (g *fakeGateway) Play(context.Context, []string) error { return nil }
func (g *fakeGateway) Pause(context.Context) error          { return nil }
func (g *fakeGateway) Resume(context.Context) error         { return nil }
func (g *fakeGateway) Seek(context.Context, int) error      { return nil }
func (g *fakeGateway) SkipNext(context.Context) error       { return nil }
func (g *fakeGateway) SkipPrevious(context.Context) error   { return nil }
func (g *fakeGateway) Search(context.Context, string, int) (*core.SearchResults, error) {
	return &core.SearchResults{}, nil
}

func (g *fakeGateway) GetRecentlyPlayed(_ context.Context, limit int) ([]core.HistoryEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.limits = append(g.limits, limit)
	return g.recent, nil
}

func (g *fakeGateway) calls() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]int(nil), g.limits...)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.History.Backend = "memory"
	cfg.Spotify.TokenPath = filepath.Join(t.TempDir(), "token.json")
	return cfg
}

func newTestSession(t *testing.T, cfg *config.Config, gw *fakeGateway, authed bool, s store.Store) *Session {
	t.Helper()
	sess, err := New(cfg, Deps{
		Logger:  zaptest.NewLogger(t),
		Store:   s,
		Gateway: gw,
		Auth:    fakeAuth(authed),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = sess.Dispose() })
	return sess
}

func TestInitUnauthenticatedSeedsEmpty(t *testing.T) {
	gw := &fakeGateway{recent: []core.HistoryEntry{{ID: "remote"}}}
	sess := newTestSession(t, testConfig(t), gw, false, store.NewMemoryStore())

	if err := sess.Init(context.Background(), Options{}); err != nil {
		t.Fatal(err)
	}
	if len(gw.calls()) != 0 {
		t.Errorf("GetRecentlyPlayed called %v while unauthenticated", gw.calls())
	}
	if !sess.Recent.Seeded() || len(sess.Recent.Entries()) != 0 {
		t.Errorf("Entries() = %v, want seeded and empty", sess.Recent.Entries())
	}
}

func TestInitAuthenticatedSeedsFromRemote(t *testing.T) {
	gw := &fakeGateway{recent: []core.HistoryEntry{{ID: "a"}, {ID: "b"}}}
	s := store.NewMemoryStore()
	sess := newTestSession(t, testConfig(t), gw, true, s)

	if err := sess.Init(context.Background(), Options{}); err != nil {
		t.Fatal(err)
	}
	if calls := gw.calls(); len(calls) != 1 || calls[0] != 20 {
		t.Errorf("GetRecentlyPlayed calls = %v, want [20]", calls)
	}

	raw, ok, err := s.Get(store.KeyRecentlyPlayed)
	if err != nil || !ok {
		t.Fatalf("store Get() = %v, %v", ok, err)
	}
	var stored []core.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 || stored[0].ID != "a" {
		t.Errorf("persisted = %+v", stored)
	}
}

func TestInitLoadsSearchHistory(t *testing.T) {
	s := store.NewMemoryStore()
	if err := s.Set(store.KeySearchHistory, `["rain","lofi"]`); err != nil {
		t.Fatal(err)
	}
	sess := newTestSession(t, testConfig(t), &fakeGateway{}, false, s)

	if err := sess.Init(context.Background(), Options{}); err != nil {
		t.Fatal(err)
	}
	if got := sess.Queries.Entries(); len(got) != 2 || got[0] != "rain" {
		t.Errorf("Queries.Entries() = %v", got)
	}
}

func TestInitStartsPolling(t *testing.T) {
	sess := newTestSession(t, testConfig(t), &fakeGateway{}, true, store.NewMemoryStore())

	if err := sess.Init(context.Background(), Options{Poll: true}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for sess.Playback.Phase() != playback.PhaseReady {
		if time.Now().After(deadline) {
			t.Fatalf("Phase() = %v, want ready", sess.Playback.Phase())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !sess.Ready() {
		t.Error("Ready() = false after seeding and first poll")
	}
}

func TestMetricsServer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = true
	cfg.Metrics.Addr = "127.0.0.1:0"
	sess := newTestSession(t, cfg, &fakeGateway{}, false, store.NewMemoryStore())

	if err := sess.Init(context.Background(), Options{ServeMetrics: true}); err != nil {
		t.Fatal(err)
	}
	addr := sess.MetricsAddr()
	if addr == "" {
		t.Fatal("MetricsAddr() is empty")
	}

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp, err := http.Get("http://" + addr + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestNoMetricsWhenDisabled(t *testing.T) {
	sess := newTestSession(t, testConfig(t), &fakeGateway{}, false, store.NewMemoryStore())
	if err := sess.Init(context.Background(), Options{ServeMetrics: true}); err != nil {
		t.Fatal(err)
	}
	if sess.Metrics != nil || sess.MetricsAddr() != "" {
		t.Error("metrics should be off when [metrics] is disabled")
	}
}

func TestDisposeIdempotent(t *testing.T) {
	sess := newTestSession(t, testConfig(t), &fakeGateway{}, true, store.NewMemoryStore())
	if err := sess.Init(context.Background(), Options{Poll: true}); err != nil {
		t.Fatal(err)
	}
	if err := sess.Dispose(); err != nil {
		t.Errorf("Dispose() = %v", err)
	}
	if err := sess.Dispose(); err != nil {
		t.Errorf("second Dispose() = %v", err)
	}
}

func TestNewBuildsDefaultSources(t *testing.T) {
	sess := newTestSession(t, testConfig(t), &fakeGateway{}, false, store.NewMemoryStore())

	src, err := sess.Sources.Active()
	if err != nil {
		t.Fatal(err)
	}
	if src.ID() != core.SourceOpenverse {
		t.Errorf("active source = %q, want openverse", src.ID())
	}
}
