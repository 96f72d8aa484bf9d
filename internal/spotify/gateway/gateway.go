// Package gateway adapts the Spotify client to core.Gateway.
package gateway

import (
	"context"
	"time"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/spotify/client"
)

// Gateway implements core.Gateway for Spotify.
type Gateway struct {
	client *client.Client
}

// New creates a Spotify gateway.
func New(c *client.Client) *Gateway {
	return &Gateway{client: c}
}

// GetPlaybackState returns the current playback snapshot, or nil when
// nothing is playing.
func (g *Gateway) GetPlaybackState(ctx context.Context) (*core.PlaybackState, error) {
	state, err := g.client.GetPlaybackState(ctx)
	if err != nil || state == nil {
		return nil, err
	}
	return convertState(state), nil
}

// Play starts playback of uris.
func (g *Gateway) Play(ctx context.Context, uris []string) error {
	return g.client.Play(ctx, uris)
}

// Pause pauses playback.
func (g *Gateway) Pause(ctx context.Context) error {
	return g.client.Pause(ctx)
}

// Resume resumes the current track.
func (g *Gateway) Resume(ctx context.Context) error {
	return g.client.Play(ctx, nil)
}

// Seek seeks to a position in the current track.
func (g *Gateway) Seek(ctx context.Context, positionMs int) error {
	return g.client.Seek(ctx, positionMs)
}

// SkipNext skips to the next track.
func (g *Gateway) SkipNext(ctx context.Context) error {
	return g.client.Next(ctx)
}

// SkipPrevious skips to the previous track.
func (g *Gateway) SkipPrevious(ctx context.Context) error {
	return g.client.Previous(ctx)
}

// Search searches tracks, artists and albums.
func (g *Gateway) Search(ctx context.Context, query string, limit int) (*core.SearchResults, error) {
	resp, err := g.client.Search(ctx, client.SearchOptions{
		Query: query,
		Types: []client.SearchType{client.SearchTypeTrack, client.SearchTypeArtist, client.SearchTypeAlbum},
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}

	results := &core.SearchResults{}
	if resp.Tracks != nil {
		for i := range resp.Tracks.Items {
			results.Tracks = append(results.Tracks, *convertTrack(&resp.Tracks.Items[i]))
		}
	}
	if resp.Artists != nil {
		for _, a := range resp.Artists.Items {
			results.Artists = append(results.Artists, a.Name)
		}
	}
	if resp.Albums != nil {
		for _, a := range resp.Albums.Items {
			results.Albums = append(results.Albums, a.Name)
		}
	}
	return results, nil
}

// GetRecentlyPlayed returns the user's recently played tracks as history
// entries, newest first.
func (g *Gateway) GetRecentlyPlayed(ctx context.Context, limit int) ([]core.HistoryEntry, error) {
	resp, err := g.client.GetRecentlyPlayed(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]core.HistoryEntry, 0, len(resp.Items))
	for i := range resp.Items {
		item := &resp.Items[i]
		entry := convertTrack(&item.Track).HistoryEntry()
		entry.PlayedAt = item.PlayedAt
		entries = append(entries, entry)
	}
	return entries, nil
}

func convertState(s *client.PlaybackState) *core.PlaybackState {
	state := &core.PlaybackState{
		IsPlaying: s.IsPlaying,
		Progress:  time.Duration(s.ProgressMS) * time.Millisecond,
	}
	if s.Device.VolumePercent != nil {
		state.Volume = *s.Device.VolumePercent
	}
	if s.Device.ID != "" || s.Device.Name != "" {
		state.Device = convertDevice(&s.Device)
	}
	if s.Item != nil {
		state.Track = convertTrack(s.Item)
	}
	return state
}

// convertTrack converts a Spotify track to a core track.
func convertTrack(t *client.Track) *core.Track {
	if t == nil {
		return nil
	}

	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	var art string
	if len(t.Album.Images) > 0 {
		art = t.Album.Images[0].URL
	}

	return &core.Track{
		ID:          t.ID,
		URI:         t.URI,
		Title:       t.Name,
		Artists:     artists,
		Album:       t.Album.Name,
		AlbumArtURL: art,
		Duration:    time.Duration(t.DurationMS) * time.Millisecond,
		Source:      core.SourceSpotify,
	}
}

// convertDevice converts a Spotify device to a core device.
func convertDevice(d *client.Device) *core.Device {
	if d == nil {
		return nil
	}

	deviceType := core.DeviceTypeUnknown
	switch d.Type {
	case "Computer":
		deviceType = core.DeviceTypeComputer
	case "Smartphone":
		deviceType = core.DeviceTypePhone
	case "Speaker":
		deviceType = core.DeviceTypeSpeaker
	case "TV":
		deviceType = core.DeviceTypeTV
	}

	device := &core.Device{
		ID:       d.ID,
		Name:     d.Name,
		Type:     deviceType,
		IsActive: d.IsActive,
	}
	if d.VolumePercent != nil {
		device.Volume = *d.VolumePercent
	}
	return device
}

var _ core.Gateway = (*Gateway)(nil)
