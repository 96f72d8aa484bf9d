package core

import "context"

// Gateway is the remote playback API the session engines talk to.
// Every method returns an error carrying the HTTP status on non-2xx responses.
type Gateway interface {
	// GetPlaybackState returns nil, nil when nothing is playing.
	GetPlaybackState(ctx context.Context) (*PlaybackState, error)

	Play(ctx context.Context, uris []string) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Seek(ctx context.Context, positionMs int) error
	SkipNext(ctx context.Context) error
	SkipPrevious(ctx context.Context) error

	Search(ctx context.Context, query string, limit int) (*SearchResults, error)
	GetRecentlyPlayed(ctx context.Context, limit int) ([]HistoryEntry, error)
}

// Authenticator reports whether a usable credential is present.
type Authenticator interface {
	IsAuthenticated() bool
}

// SearchResults groups catalog search hits by kind.
type SearchResults struct {
	Tracks  []Track  `json:"tracks"`
	Artists []string `json:"artists"`
	Albums  []string `json:"albums"`
}
