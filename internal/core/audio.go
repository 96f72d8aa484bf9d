package core

import (
	"context"
	"fmt"
)

// SourceID names a pluggable audio catalog.
type SourceID string

const (
	SourceOpenverse   SourceID = "openverse"
	SourceRoyaltyFree SourceID = "royaltyfree"
	SourceIDSpotify   SourceID = "spotify"
)

// SourceIDs lists every known source in display order.
var SourceIDs = []SourceID{SourceOpenverse, SourceRoyaltyFree, SourceIDSpotify}

// ParseSourceID validates a source name.
func ParseSourceID(s string) (SourceID, error) {
	for _, id := range SourceIDs {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown audio source %q", s)
}

// License is the normalized licence class of an audio item.
type License string

const (
	LicensePublicDomain    License = "PD"
	LicenseCreativeCommons License = "CC"
	LicenseOther           License = "Other"
)

// AudioItem is a search hit normalized across sources.
type AudioItem struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Artist       string   `json:"artist"`
	License      License  `json:"license"`
	AudioURL     string   `json:"audioUrl"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
	Source       SourceID `json:"source"`
	Duration     string   `json:"duration,omitempty"`
	DurationMs   int      `json:"durationMs,omitempty"`
	URI          string   `json:"uri,omitempty"`
}

// Playable reports whether the item can be sent to the remote device.
func (a AudioItem) Playable() bool {
	return a.URI != ""
}

// HistoryEntry converts a playable item into a recently played entry.
func (a AudioItem) HistoryEntry() HistoryEntry {
	art := a.ThumbnailURL
	if art == "" {
		art = PlaceholderArtURL
	}
	return HistoryEntry{
		ID:          a.ID,
		URI:         a.URI,
		Title:       a.Title,
		Artist:      a.Artist,
		AlbumArtURL: art,
	}
}

// Default search parameters.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

// DefaultLicenses is the licence filter used when none is given.
var DefaultLicenses = []string{"pd", "cc"}

// SearchParams describes a catalog query.
type SearchParams struct {
	Query    string   `json:"q"`
	Licenses []string `json:"license,omitempty" hash:"set"`
	Page     int      `json:"page,omitempty"`
	PageSize int      `json:"pageSize,omitempty"`
	Sort     string   `json:"sort,omitempty"`
}

// WithDefaults fills unset fields with the default paging and licence filter.
func (p SearchParams) WithDefaults() SearchParams {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.Licenses == nil {
		p.Licenses = append([]string(nil), DefaultLicenses...)
	}
	return p
}

// MusicSource is a searchable audio catalog.
type MusicSource interface {
	ID() SourceID
	Name() string
	Search(ctx context.Context, params SearchParams) ([]AudioItem, error)
	// GetByID returns nil, nil when the item does not exist.
	GetByID(ctx context.Context, id string) (*AudioItem, error)
}
