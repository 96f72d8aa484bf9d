package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/tessro/jukebox/internal/core"
	apperrors "github.com/tessro/jukebox/internal/errors"
)

// Spotify searches the Spotify catalog. Its items carry a URI and no audio
// URL; they are played on the remote device.
type Spotify struct {
	client *spotify.Client
	auth   core.Authenticator
}

// NewSpotify creates a Spotify source over an authorized HTTP client.
func NewSpotify(httpClient *http.Client, auth core.Authenticator, opts ...spotify.ClientOption) *Spotify {
	return &Spotify{
		client: spotify.New(httpClient, opts...),
		auth:   auth,
	}
}

// NewSpotifyFromTokens creates a Spotify source that authorizes requests
// with tokens from ts.
func NewSpotifyFromTokens(ctx context.Context, ts oauth2.TokenSource, auth core.Authenticator, opts ...spotify.ClientOption) *Spotify {
	return NewSpotify(oauth2.NewClient(ctx, ts), auth, opts...)
}

func (s *Spotify) ID() core.SourceID { return core.SourceIDSpotify }
func (s *Spotify) Name() string      { return "Spotify" }

func (s *Spotify) Search(ctx context.Context, params core.SearchParams) ([]core.AudioItem, error) {
	params = params.WithDefaults()
	q := strings.TrimSpace(params.Query)
	if q == "" {
		return []core.AudioItem{}, nil
	}
	if !s.auth.IsAuthenticated() {
		return nil, apperrors.ErrNotAuthenticated
	}

	results, err := s.client.Search(ctx, q, spotify.SearchTypeTrack, spotify.Limit(params.PageSize))
	if err != nil {
		return nil, fmt.Errorf("spotify search: %w", wrapSpotifyError(err))
	}
	if results.Tracks == nil {
		return []core.AudioItem{}, nil
	}

	items := make([]core.AudioItem, 0, len(results.Tracks.Tracks))
	for i := range results.Tracks.Tracks {
		t := &results.Tracks.Tracks[i]
		if t.URI == "" || (t.IsPlayable != nil && !*t.IsPlayable) {
			continue
		}
		items = append(items, spotifyItem(t))
	}
	return items, nil
}

func (s *Spotify) GetByID(ctx context.Context, id string) (*core.AudioItem, error) {
	if !s.auth.IsAuthenticated() {
		return nil, apperrors.ErrNotAuthenticated
	}
	t, err := s.client.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		err = wrapSpotifyError(err)
		if apperrors.StatusCode(err) == 404 {
			return nil, nil
		}
		return nil, fmt.Errorf("spotify get %s: %w", id, err)
	}
	item := spotifyItem(t)
	return &item, nil
}

func spotifyItem(t *spotify.FullTrack) core.AudioItem {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}
	artist := strings.Join(artists, ", ")
	if artist == "" {
		artist = "Unknown Artist"
	}

	var thumb string
	if len(t.Album.Images) > 0 {
		thumb = t.Album.Images[0].URL
	}

	ms := int(t.Duration)
	return core.AudioItem{
		ID:           string(t.ID),
		Title:        t.Name,
		Artist:       artist,
		License:      core.LicenseOther,
		ThumbnailURL: thumb,
		Source:       core.SourceIDSpotify,
		Duration:     core.FormatDuration(time.Duration(ms) * time.Millisecond),
		DurationMs:   ms,
		URI:          string(t.URI),
	}
}

// wrapSpotifyError converts the library's error type to a RemoteAPIError so
// callers can match statuses the same way for every source.
func wrapSpotifyError(err error) error {
	var se spotify.Error
	if errors.As(err, &se) {
		return &apperrors.RemoteAPIError{Service: "Spotify", Status: se.Status, Message: se.Message}
	}
	var sp *spotify.Error
	if errors.As(err, &sp) && sp != nil {
		return &apperrors.RemoteAPIError{Service: "Spotify", Status: sp.Status, Message: sp.Message}
	}
	return err
}
