package client

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// SearchType is one of the catalog types /search can return.
type SearchType string

const (
	SearchTypeTrack  SearchType = "track"
	SearchTypeArtist SearchType = "artist"
	SearchTypeAlbum  SearchType = "album"
)

// SearchOptions configures a search query. Types defaults to tracks only.
type SearchOptions struct {
	Query  string
	Types  []SearchType
	Limit  int
	Offset int
}

func (o SearchOptions) params() (map[string]string, error) {
	q := strings.TrimSpace(o.Query)
	if q == "" {
		return nil, errors.New("search query cannot be empty")
	}

	kinds := []string{string(SearchTypeTrack)}
	if len(o.Types) > 0 {
		kinds = kinds[:0]
		for _, t := range o.Types {
			kinds = append(kinds, string(t))
		}
	}

	p := map[string]string{"q": q, "type": strings.Join(kinds, ",")}
	if o.Limit > 0 {
		p["limit"] = strconv.Itoa(o.Limit)
	}
	if o.Offset > 0 {
		p["offset"] = strconv.Itoa(o.Offset)
	}
	return p, nil
}

// Search queries the Spotify catalog.
func (c *Client) Search(ctx context.Context, opts SearchOptions) (*SearchResponse, error) {
	params, err := opts.params()
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if _, err := c.Get(ctx, BuildURL("/search", params), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
