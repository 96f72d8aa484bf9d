package source

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tessro/jukebox/internal/core"
	apperrors "github.com/tessro/jukebox/internal/errors"
)

// Jamendo searches Creative Commons music on the Jamendo API. It backs the
// royaltyfree source.
type Jamendo struct {
	baseURL  string
	clientID string
	fetch    *Fetcher
}

// NewJamendo creates a Jamendo source. clientID is the Jamendo API client id.
func NewJamendo(baseURL, clientID string, fetch *Fetcher) *Jamendo {
	return &Jamendo{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		fetch:    fetch,
	}
}

func (j *Jamendo) ID() core.SourceID { return core.SourceRoyaltyFree }
func (j *Jamendo) Name() string      { return "Jamendo Music" }

type jamendoTrack struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ArtistName    string  `json:"artist_name"`
	Audio         string  `json:"audio"`
	AudioDownload string  `json:"audiodownload"`
	Image         string  `json:"image"`
	AlbumImage    string  `json:"album_image"`
	Duration      float64 `json:"duration"`
}

type jamendoResponse struct {
	Headers struct {
		Status       string `json:"status"`
		Code         int    `json:"code"`
		ErrorMessage string `json:"error_message"`
	} `json:"headers"`
	Results []jamendoTrack `json:"results"`
}

func (j *Jamendo) Search(ctx context.Context, params core.SearchParams) ([]core.AudioItem, error) {
	params = params.WithDefaults()
	q := strings.TrimSpace(params.Query)
	if q == "" {
		return []core.AudioItem{}, nil
	}

	v := j.query()
	v.Set("limit", strconv.Itoa(params.PageSize))
	v.Set("offset", strconv.Itoa((params.Page-1)*params.PageSize))
	v.Set("search", q)

	items, err := j.tracks(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("jamendo search: %w", err)
	}
	return items, nil
}

func (j *Jamendo) GetByID(ctx context.Context, id string) (*core.AudioItem, error) {
	v := j.query()
	v.Set("id", id)

	items, err := j.tracks(ctx, v)
	if err != nil {
		if apperrors.StatusCode(err) == 404 {
			return nil, nil
		}
		return nil, fmt.Errorf("jamendo get %s: %w", id, err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (j *Jamendo) query() url.Values {
	v := url.Values{}
	v.Set("client_id", j.clientID)
	v.Set("format", "json")
	v.Set("include", "musicinfo")
	v.Set("imagesize", "200")
	return v
}

func (j *Jamendo) tracks(ctx context.Context, v url.Values) ([]core.AudioItem, error) {
	var resp jamendoResponse
	if err := j.fetch.GetJSON(ctx, j.baseURL+"/tracks/?"+v.Encode(), &resp); err != nil {
		return nil, err
	}
	// Jamendo reports API errors in the body with a 200 status.
	if resp.Headers.Status == "failed" {
		return nil, &apperrors.RemoteAPIError{
			Service: "Jamendo",
			Status:  400,
			Message: resp.Headers.ErrorMessage,
		}
	}
	return normalizeJamendo(resp.Results), nil
}

func normalizeJamendo(results []jamendoTrack) []core.AudioItem {
	items := make([]core.AudioItem, 0, len(results))
	for _, r := range results {
		audioURL := cmp.Or(r.Audio, r.AudioDownload)
		if audioURL == "" {
			continue
		}
		item := core.AudioItem{
			ID:           r.ID,
			Title:        cmp.Or(r.Name, "Untitled"),
			Artist:       cmp.Or(r.ArtistName, "Unknown Artist"),
			License:      core.LicenseCreativeCommons,
			AudioURL:     audioURL,
			ThumbnailURL: cmp.Or(r.Image, r.AlbumImage),
			Source:       core.SourceRoyaltyFree,
		}
		item.Duration, item.DurationMs = secondsDuration(r.Duration)
		items = append(items, item)
	}
	return items
}
