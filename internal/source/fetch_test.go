package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	apperrors "github.com/tessro/jukebox/internal/errors"
)

func TestFetcherSendsAcceptHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct{ OK bool }
	if err := newTestFetcher(t, "Test", nil).GetJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatal(err)
	}
	if !out.OK {
		t.Error("body not decoded")
	}
}

func TestFetcherRetriesTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	transport := &flakyTransport{fails: 2}
	f := newTestFetcher(t, "Test", &http.Client{Transport: transport})
	if err := f.GetJSON(context.Background(), srv.URL, &struct{}{}); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if got := transport.calls.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestFetcherGivesUpAfterThreeAttempts(t *testing.T) {
	transport := &flakyTransport{fails: 10}
	f := newTestFetcher(t, "Test", &http.Client{Transport: transport})

	err := f.GetJSON(context.Background(), "http://127.0.0.1:1/", nil)
	if !errors.Is(err, apperrors.ErrNetworkError) {
		t.Errorf("err = %v, want network error", err)
	}
	if got := transport.calls.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestFetcherDoesNotRetryHTTPErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newTestFetcher(t, "Openverse", nil).GetJSON(context.Background(), srv.URL, nil)
	if apperrors.StatusCode(err) != 503 {
		t.Errorf("err = %v, want status 503", err)
	}
	if err == nil || err.Error() != "Openverse API error: 503" {
		t.Errorf("message = %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestFetcherCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestFetcher(t, "Test", nil).GetJSON(ctx, "http://127.0.0.1:1/", nil)
	if !apperrors.IsCancellation(err) {
		t.Errorf("err = %v, want cancellation", err)
	}
}
