package client

import "time"

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Device represents a Spotify playback device.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	IsRestricted  bool   `json:"is_restricted"`
	VolumePercent *int   `json:"volume_percent"`
}

// PlaybackState represents the current playback state.
type PlaybackState struct {
	Device               Device `json:"device"`
	ProgressMS           int    `json:"progress_ms"`
	IsPlaying            bool   `json:"is_playing"`
	Item                 *Track `json:"item"`
	CurrentlyPlayingType string `json:"currently_playing_type"` // track, episode, ad, unknown
}

// Track represents a Spotify track.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	URI        string   `json:"uri"`
	DurationMS int      `json:"duration_ms"`
	IsPlayable *bool    `json:"is_playable"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
}

// Artist represents a Spotify artist.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	URI     string   `json:"uri"`
	Images  []Image  `json:"images"`
	Artists []Artist `json:"artists"`
}

// Page is one page of a paged listing.
type Page[T any] struct {
	Items  []T    `json:"items"`
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Next   string `json:"next"`
}

// SearchResponse represents the response from a search query.
type SearchResponse struct {
	Tracks  *Page[Track]  `json:"tracks"`
	Artists *Page[Artist] `json:"artists"`
	Albums  *Page[Album]  `json:"albums"`
}

// PlayHistory is one entry of the recently played list.
type PlayHistory struct {
	Track    Track     `json:"track"`
	PlayedAt time.Time `json:"played_at"`
}

// RecentlyPlayedResponse is the response from the recently played endpoint.
type RecentlyPlayedResponse struct {
	Items []PlayHistory `json:"items"`
}
