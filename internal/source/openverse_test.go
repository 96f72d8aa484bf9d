package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"github.com/tessro/jukebox/internal/core"
)

const openverseFixture = `{
  "result_count": 3,
  "results": [
    {"id": "a1", "title": "Rainfall", "creator": "Field Recorder", "license": "cc0",
     "url": "https://cdn.example/a1.mp3", "thumbnail": "https://cdn.example/a1.jpg", "duration": 125},
    {"id": "a2", "title": "", "creator": "", "creator_url": "https://example/creator",
     "license": "by-nc", "audio_url": "https://cdn.example/a2.mp3"},
    {"id": "a3", "title": "No audio", "license": "cc-by"}
  ]
}`

func TestOpenverseSearch(t *testing.T) {
	queries := make(chan url.Values, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		queries <- r.URL.Query()
		_, _ = w.Write([]byte(openverseFixture))
	}))
	defer srv.Close()

	o := NewOpenverse(srv.URL+"/", newTestFetcher(t, "Openverse", nil))
	items, err := o.Search(context.Background(), core.SearchParams{Query: "  rain  "})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	query := <-queries
	if query["q"][0] != "rain" || query["page"][0] != "1" || query["page_size"][0] != "20" {
		t.Errorf("query = %v", query)
	}
	wantLicense := "cc0,pdm,cc-by,cc-by-sa,cc-by-nd,cc-by-nc,cc-by-nc-sa,cc-by-nc-nd"
	if query["license"][0] != wantLicense {
		t.Errorf("license = %q, want %q", query["license"][0], wantLicense)
	}

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (item without audio dropped)", len(items))
	}

	first := items[0]
	if first.License != core.LicensePublicDomain || first.Duration != "2:05" || first.DurationMs != 125000 {
		t.Errorf("first = %+v", first)
	}
	if first.Source != core.SourceOpenverse || first.URI != "" || first.Playable() {
		t.Errorf("first should be an unplayable openverse item: %+v", first)
	}

	second := items[1]
	if second.Title != "Untitled" || second.Artist != "https://example/creator" {
		t.Errorf("second = %+v", second)
	}
	if second.License != core.LicenseOther || second.AudioURL != "https://cdn.example/a2.mp3" {
		t.Errorf("second = %+v", second)
	}
	if second.Duration != "" || second.DurationMs != 0 {
		t.Errorf("unknown duration should be empty: %+v", second)
	}
}

func TestOpenverseSearchEmptyQuery(t *testing.T) {
	o := NewOpenverse("http://127.0.0.1:1", newTestFetcher(t, "Openverse", nil))
	items, err := o.Search(context.Background(), core.SearchParams{Query: " "})
	if err != nil || len(items) != 0 {
		t.Errorf("Search(blank) = %v, %v", items, err)
	}
}

func TestOpenverseGetByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/audio/a1/":
			_, _ = w.Write([]byte(`{"id":"a1","title":"Rainfall","license":"cc-by","url":"https://cdn.example/a1.mp3"}`))
		case "/audio/broken/":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	o := NewOpenverse(srv.URL, newTestFetcher(t, "Openverse", nil))
	ctx := context.Background()

	item, err := o.GetByID(ctx, "a1")
	if err != nil || item == nil || item.License != core.LicenseCreativeCommons {
		t.Errorf("GetByID(a1) = %+v, %v", item, err)
	}

	missing, err := o.GetByID(ctx, "missing")
	if err != nil || missing != nil {
		t.Errorf("GetByID(missing) = %+v, %v; want nil, nil", missing, err)
	}

	if _, err := o.GetByID(ctx, "broken"); err == nil {
		t.Error("GetByID(broken) should error")
	}
}

func TestExpandLicenses(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"pd"}, []string{"cc0", "pdm"}},
		{[]string{"PD", "cc0"}, []string{"cc0", "pdm"}},
		{[]string{"cc-by", "cc"}, []string{"cc-by", "cc-by-sa", "cc-by-nd", "cc-by-nc", "cc-by-nc-sa", "cc-by-nc-nd"}},
		{[]string{"sampling+"}, []string{"sampling+"}},
		{nil, nil},
	}
	for _, tt := range tests {
		if got := ExpandLicenses(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ExpandLicenses(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClassifyLicense(t *testing.T) {
	tests := map[string]core.License{
		"cc0":           core.LicensePublicDomain,
		"PDM":           core.LicensePublicDomain,
		"public domain": core.LicensePublicDomain,
		"cc-by-sa":      core.LicenseCreativeCommons,
		"cc by":         core.LicenseCreativeCommons,
		"by":            core.LicenseOther,
		"":              core.LicenseOther,
	}
	for code, want := range tests {
		if got := ClassifyLicense(code); got != want {
			t.Errorf("ClassifyLicense(%q) = %q, want %q", code, got, want)
		}
	}
}
