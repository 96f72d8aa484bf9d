package core

import (
	"fmt"
	"strings"
	"time"
)

// Source indicates the origin platform of a track.
type Source string

const (
	SourceSpotify Source = "spotify"
)

// Track represents a playable audio track.
type Track struct {
	ID          string        `json:"id"`
	URI         string        `json:"uri"`
	Title       string        `json:"title"`
	Artists     []string      `json:"artists"`
	Album       string        `json:"album"`
	AlbumArtURL string        `json:"album_art_url,omitempty"`
	Duration    time.Duration `json:"duration"`
	Source      Source        `json:"source"`
}

// Artist returns the track's artists joined for display.
func (t *Track) Artist() string {
	if t == nil {
		return ""
	}
	return strings.Join(t.Artists, ", ")
}

// HistoryEntry builds the recently played entry for the track.
func (t *Track) HistoryEntry() HistoryEntry {
	if t == nil {
		return HistoryEntry{}
	}
	art := t.AlbumArtURL
	if art == "" {
		art = PlaceholderArtURL
	}
	return HistoryEntry{
		ID:          t.ID,
		URI:         t.URI,
		Title:       t.Title,
		Artist:      t.Artist(),
		Album:       t.Album,
		AlbumArtURL: art,
	}
}

// FormatDuration renders a duration as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
