package core

import "time"

// PlaceholderArtURL is shown for tracks without album art.
const PlaceholderArtURL = "https://via.placeholder.com/200/0E7490/FFFFFF?text=No+Image"

// HistoryEntry represents a recently played track.
type HistoryEntry struct {
	ID          string    `json:"id"`
	URI         string    `json:"uri"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Album       string    `json:"album"`
	AlbumArtURL string    `json:"albumArt"`
	PlayedAt    time.Time `json:"playedAt,omitzero"`
}
