package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	apperrors "github.com/tessro/jukebox/internal/errors"
)

type staticToken string

func (s staticToken) ValidToken(context.Context) (string, error) {
	if s == "" {
		return "", apperrors.ErrNotAuthenticated
	}
	return string(s), nil
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithBaseURL(srv.URL), WithRetry(3, time.Millisecond)}, opts...)
	return New(staticToken("tok"), zaptest.NewLogger(t), opts...)
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		params map[string]string
		want   string
	}{
		{"no params", "/me", nil, "/me"},
		{"empty params", "/me", map[string]string{}, "/me"},
		{"single param", "/search", map[string]string{"q": "test"}, "/search?q=test"},
		{"multiple params", "/search", map[string]string{"q": "test", "type": "track"}, "/search?q=test&type=track"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildURL(tt.path, tt.params); got != tt.want {
				t.Errorf("BuildURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetPlaybackState(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/me/player" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
		  "is_playing": true, "progress_ms": 1000,
		  "device": {"id": "d1", "name": "Desk", "type": "Computer", "is_active": true, "volume_percent": 40},
		  "item": {"id": "t1", "name": "Song", "uri": "spotify:track:t1", "duration_ms": 180000,
		           "artists": [{"name": "Ann"}], "album": {"name": "LP", "images": [{"url": "https://i/1.jpg"}]}}
		}`))
	})

	state, err := c.GetPlaybackState(context.Background())
	if err != nil {
		t.Fatalf("GetPlaybackState() error = %v", err)
	}
	if state == nil || !state.IsPlaying || state.Item == nil || state.Item.DurationMS != 180000 {
		t.Errorf("state = %+v", state)
	}
	if state.Device.VolumePercent == nil || *state.Device.VolumePercent != 40 {
		t.Errorf("device = %+v", state.Device)
	}
}

func TestGetPlaybackStateNoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	state, err := c.GetPlaybackState(context.Background())
	if err != nil || state != nil {
		t.Errorf("GetPlaybackState() = %+v, %v; want nil, nil", state, err)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		target error
	}{
		{"unauthorized", 401, `{"error":{"status":401,"message":"The access token expired"}}`, apperrors.ErrNotAuthenticated},
		{"no device", 404, `{"error":{"status":404,"message":"Player command failed: No active device found"}}`, apperrors.ErrNoActiveDevice},
		{"premium", 403, `{"error":{"status":403,"message":"Player command failed: Premium required"}}`, apperrors.ErrPremiumRequired},
		{"rate limited", 429, ``, apperrors.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			err := c.Pause(context.Background())
			if !errors.Is(err, tt.target) {
				t.Errorf("Pause() error = %v, want %v", err, tt.target)
			}
			if apperrors.StatusCode(err) != tt.status {
				t.Errorf("StatusCode = %d, want %d", apperrors.StatusCode(err), tt.status)
			}
		})
	}
}

func TestServerErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	err := c.Next(context.Background())
	if apperrors.StatusCode(err) != 502 {
		t.Errorf("Next() error = %v, want status 502", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

type failingTransport struct {
	fails int32
	calls atomic.Int32
}

func (f *failingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.fails {
		return nil, errors.New("connection reset by peer")
	}
	return http.DefaultTransport.RoundTrip(r)
}

func TestTransportErrorsAreRetried(t *testing.T) {
	transport := &failingTransport{fails: 2}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, WithHTTPClient(&http.Client{Transport: transport}))

	if err := c.Previous(context.Background()); err != nil {
		t.Fatalf("Previous() error = %v", err)
	}
	if got := transport.calls.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}

	transport = &failingTransport{fails: 5}
	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {},
		WithHTTPClient(&http.Client{Transport: transport}))
	if err := c.Previous(context.Background()); !errors.Is(err, apperrors.ErrNetworkError) {
		t.Errorf("Previous() error = %v, want network error", err)
	}
	if got := transport.calls.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestNotAuthenticated(t *testing.T) {
	c := New(staticToken(""), zaptest.NewLogger(t))
	if err := c.Pause(context.Background()); !errors.Is(err, apperrors.ErrNotAuthenticated) {
		t.Errorf("Pause() error = %v", err)
	}
}

func TestPlay(t *testing.T) {
	tests := []struct {
		name string
		uris []string
		want string
	}{
		{"uris", []string{"spotify:track:a"}, `{"uris":["spotify:track:a"]}`},
		{"resume", nil, `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodies := make(chan string, 1)
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPut || r.URL.Path != "/me/player/play" {
					t.Errorf("%s %s", r.Method, r.URL.Path)
				}
				data, _ := io.ReadAll(r.Body)
				bodies <- string(data)
				w.WriteHeader(http.StatusNoContent)
			})

			if err := c.Play(context.Background(), tt.uris); err != nil {
				t.Fatal(err)
			}
			if got := <-bodies; got != tt.want {
				t.Errorf("body = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSeek(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{90000, "90000"},
		{0, "0"},
		{-250, "0"},
	}

	for _, tt := range tests {
		positions := make(chan string, 1)
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			positions <- r.URL.Query().Get("position_ms")
			w.WriteHeader(http.StatusNoContent)
		})

		if err := c.Seek(context.Background(), tt.in); err != nil {
			t.Fatal(err)
		}
		if got := <-positions; got != tt.want {
			t.Errorf("Seek(%d) position_ms = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "lofi" || q.Get("type") != "track,artist" || q.Get("limit") != "5" {
			t.Errorf("query = %v", q)
		}
		_, _ = w.Write([]byte(`{"tracks":{"items":[{"id":"t1","name":"Song"}],"total":1},
		  "artists":{"items":[{"name":"Ann"}]}}`))
	})

	resp, err := c.Search(context.Background(), SearchOptions{
		Query: "lofi",
		Types: []SearchType{SearchTypeTrack, SearchTypeArtist},
		Limit: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Tracks == nil || len(resp.Tracks.Items) != 1 || resp.Artists.Items[0].Name != "Ann" {
		t.Errorf("resp = %+v", resp)
	}

	if _, err := c.Search(context.Background(), SearchOptions{Query: "  "}); err == nil {
		t.Error("empty query should error")
	}
}

func TestGetRecentlyPlayed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/me/player/recently-played") || r.URL.Query().Get("limit") != "20" {
			t.Errorf("request = %s", r.URL)
		}
		_, _ = w.Write([]byte(`{"items":[{"track":{"id":"t1","name":"Song"},"played_at":"2024-05-01T10:00:00.000Z"}]}`))
	})

	resp, err := c.GetRecentlyPlayed(context.Background(), 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Track.ID != "t1" {
		t.Fatalf("resp = %+v", resp)
	}
	if want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC); !resp.Items[0].PlayedAt.Equal(want) {
		t.Errorf("PlayedAt = %v", resp.Items[0].PlayedAt)
	}
}
