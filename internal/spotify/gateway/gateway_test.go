package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/spotify/client"
)

type staticToken string

func (s staticToken) ValidToken(context.Context) (string, error) { return string(s), nil }

func TestConvertTrack(t *testing.T) {
	spotifyTrack := &client.Track{
		ID:         "track123",
		URI:        "spotify:track:track123",
		Name:       "Test Song",
		DurationMS: 180000,
		Artists: []client.Artist{
			{Name: "Artist One"},
			{Name: "Artist Two"},
		},
		Album: client.Album{
			Name:   "Test Album",
			Images: []client.Image{{URL: "https://i.scdn.co/big.jpg"}, {URL: "https://i.scdn.co/small.jpg"}},
		},
	}

	coreTrack := convertTrack(spotifyTrack)

	if coreTrack.ID != "track123" {
		t.Errorf("ID = %q, want %q", coreTrack.ID, "track123")
	}
	if coreTrack.Title != "Test Song" {
		t.Errorf("Title = %q, want %q", coreTrack.Title, "Test Song")
	}
	if coreTrack.Artist() != "Artist One, Artist Two" {
		t.Errorf("Artist() = %q", coreTrack.Artist())
	}
	if coreTrack.Album != "Test Album" {
		t.Errorf("Album = %q, want %q", coreTrack.Album, "Test Album")
	}
	if coreTrack.AlbumArtURL != "https://i.scdn.co/big.jpg" {
		t.Errorf("AlbumArtURL = %q", coreTrack.AlbumArtURL)
	}
	if coreTrack.Duration != 180*time.Second {
		t.Errorf("Duration = %v, want %v", coreTrack.Duration, 180*time.Second)
	}
	if coreTrack.Source != core.SourceSpotify {
		t.Errorf("Source = %q, want %q", coreTrack.Source, core.SourceSpotify)
	}
}

func TestConvertDevice(t *testing.T) {
	vol := 55
	coreDevice := convertDevice(&client.Device{
		ID:            "device123",
		Name:          "My Speaker",
		Type:          "Speaker",
		IsActive:      true,
		VolumePercent: &vol,
	})

	if coreDevice.Name != "My Speaker" || coreDevice.Type != core.DeviceTypeSpeaker {
		t.Errorf("device = %+v", coreDevice)
	}
	if !coreDevice.IsActive || coreDevice.Volume != 55 {
		t.Errorf("device = %+v", coreDevice)
	}
	if got := convertDevice(&client.Device{Type: "GameConsole"}).Type; got != core.DeviceTypeUnknown {
		t.Errorf("unknown type mapped to %q", got)
	}
}

func TestConvertNil(t *testing.T) {
	if convertTrack(nil) != nil {
		t.Error("Expected nil track for nil input")
	}
	if convertDevice(nil) != nil {
		t.Error("Expected nil device for nil input")
	}
}

func newTestGateway(t *testing.T, h http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := client.New(staticToken("tok"), zaptest.NewLogger(t), client.WithBaseURL(srv.URL))
	return New(c)
}

func TestGetPlaybackStateNothingPlaying(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	state, err := g.GetPlaybackState(context.Background())
	if err != nil || state != nil {
		t.Errorf("GetPlaybackState() = %+v, %v", state, err)
	}
}

func TestGetRecentlyPlayed(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[
		  {"track":{"id":"t1","uri":"spotify:track:t1","name":"One","artists":[{"name":"Ann"},{"name":"Bo"}],
		            "album":{"name":"LP","images":[{"url":"https://i/1.jpg"}]}},
		   "played_at":"2024-05-01T10:00:00Z"},
		  {"track":{"id":"t2","uri":"spotify:track:t2","name":"Two","artists":[],"album":{"name":"EP","images":[]}},
		   "played_at":"2024-05-01T09:00:00Z"}
		]}`))
	})

	entries, err := g.GetRecentlyPlayed(context.Background(), 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Artist != "Ann, Bo" || entries[0].AlbumArtURL != "https://i/1.jpg" || entries[0].PlayedAt.IsZero() {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].AlbumArtURL != core.PlaceholderArtURL {
		t.Errorf("entries[1] art = %q, want placeholder", entries[1].AlbumArtURL)
	}
}

func TestResumeSendsEmptyPlay(t *testing.T) {
	paths := make(chan string, 1)
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		paths <- r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})
	if err := g.Resume(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := <-paths; got != "PUT /me/player/play" {
		t.Errorf("request = %q", got)
	}
}
