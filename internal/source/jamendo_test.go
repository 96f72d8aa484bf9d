package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tessro/jukebox/internal/core"
)

func TestJamendoSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/tracks/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		checks := map[string]string{
			"client_id": "cid",
			"format":    "json",
			"limit":     "10",
			"offset":    "20",
			"search":    "piano",
			"include":   "musicinfo",
			"imagesize": "200",
		}
		for k, want := range checks {
			if got := q.Get(k); got != want {
				t.Errorf("%s = %q, want %q", k, got, want)
			}
		}
		_, _ = w.Write([]byte(`{
		  "headers": {"status": "success", "code": 0},
		  "results": [
		    {"id": "168", "name": "Etude", "artist_name": "Pianist", "audio": "https://j.example/168.mp3",
		     "album_image": "https://j.example/168.jpg", "duration": 61},
		    {"id": "169", "name": "Silent", "artist_name": "Nobody"}
		  ]
		}`))
	}))
	defer srv.Close()

	j := NewJamendo(srv.URL, "cid", newTestFetcher(t, "Jamendo", nil))
	items, err := j.Search(context.Background(), core.SearchParams{Query: "piano", Page: 3, PageSize: 10})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}

	want := core.AudioItem{
		ID:           "168",
		Title:        "Etude",
		Artist:       "Pianist",
		License:      core.LicenseCreativeCommons,
		AudioURL:     "https://j.example/168.mp3",
		ThumbnailURL: "https://j.example/168.jpg",
		Source:       core.SourceRoyaltyFree,
		Duration:     "1:01",
		DurationMs:   61000,
	}
	if items[0] != want {
		t.Errorf("item = %+v, want %+v", items[0], want)
	}
}

func TestJamendoBodyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"headers": {"status": "failed", "code": 5, "error_message": "Invalid client_id"}, "results": []}`))
	}))
	defer srv.Close()

	j := NewJamendo(srv.URL, "", newTestFetcher(t, "Jamendo", nil))
	_, err := j.Search(context.Background(), core.SearchParams{Query: "piano"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestJamendoGetByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "168" {
			_, _ = w.Write([]byte(`{"results": [{"id": "168", "name": "Etude", "audiodownload": "https://j.example/dl/168.mp3"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	j := NewJamendo(srv.URL, "cid", newTestFetcher(t, "Jamendo", nil))
	item, err := j.GetByID(context.Background(), "168")
	if err != nil || item == nil || item.AudioURL != "https://j.example/dl/168.mp3" {
		t.Errorf("GetByID(168) = %+v, %v", item, err)
	}

	missing, err := j.GetByID(context.Background(), "999")
	if err != nil || missing != nil {
		t.Errorf("GetByID(999) = %+v, %v", missing, err)
	}
}
