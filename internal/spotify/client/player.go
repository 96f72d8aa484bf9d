package client

import (
	"context"
	"strconv"
)

const playerPath = "/me/player"

// playRequest is the body of PUT /me/player/play. Spotify rejects an empty
// body, so resume sends {}.
type playRequest struct {
	URIs []string `json:"uris,omitempty"`
}

// GetPlaybackState returns what the active device is doing. A 204 from
// Spotify means no device is active and yields nil, nil.
func (c *Client) GetPlaybackState(ctx context.Context) (*PlaybackState, error) {
	var state PlaybackState
	found, err := c.Get(ctx, playerPath, &state)
	if !found {
		return nil, err
	}
	return &state, nil
}

// GetRecentlyPlayed returns up to limit recently played tracks, newest
// first. Spotify caps limit at 50.
func (c *Client) GetRecentlyPlayed(ctx context.Context, limit int) (*RecentlyPlayedResponse, error) {
	params := map[string]string{}
	if limit > 0 {
		params["limit"] = strconv.Itoa(min(limit, 50))
	}

	var resp RecentlyPlayedResponse
	if _, err := c.Get(ctx, BuildURL(playerPath+"/recently-played", params), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Play replaces the queue with uris, or resumes when uris is empty.
func (c *Client) Play(ctx context.Context, uris []string) error {
	return c.Put(ctx, playerPath+"/play", playRequest{URIs: uris})
}

func (c *Client) Pause(ctx context.Context) error {
	return c.Put(ctx, playerPath+"/pause", nil)
}

func (c *Client) Next(ctx context.Context) error {
	return c.Post(ctx, playerPath+"/next", nil)
}

func (c *Client) Previous(ctx context.Context) error {
	return c.Post(ctx, playerPath+"/previous", nil)
}

// Seek moves the current track to positionMs. Negative positions are sent
// as 0.
func (c *Client) Seek(ctx context.Context, positionMs int) error {
	return c.Put(ctx, BuildURL(playerPath+"/seek", map[string]string{
		"position_ms": strconv.Itoa(max(positionMs, 0)),
	}), nil)
}
