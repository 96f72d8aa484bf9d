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

// Openverse searches openly licensed audio on api.openverse.org.
type Openverse struct {
	baseURL string
	fetch   *Fetcher
}

// NewOpenverse creates an Openverse source rooted at baseURL.
func NewOpenverse(baseURL string, fetch *Fetcher) *Openverse {
	return &Openverse{baseURL: strings.TrimRight(baseURL, "/"), fetch: fetch}
}

func (o *Openverse) ID() core.SourceID { return core.SourceOpenverse }
func (o *Openverse) Name() string      { return "Openverse" }

type openverseAudio struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Creator    string  `json:"creator"`
	CreatorURL string  `json:"creator_url"`
	License    string  `json:"license"`
	URL        string  `json:"url"`
	AudioURL   string  `json:"audio_url"`
	Thumbnail  string  `json:"thumbnail"`
	Duration   float64 `json:"duration"`
}

type openversePage struct {
	ResultCount int              `json:"result_count"`
	Results     []openverseAudio `json:"results"`
}

func (o *Openverse) Search(ctx context.Context, params core.SearchParams) ([]core.AudioItem, error) {
	params = params.WithDefaults()
	q := strings.TrimSpace(params.Query)
	if q == "" {
		return []core.AudioItem{}, nil
	}

	v := url.Values{}
	v.Set("q", q)
	v.Set("page", strconv.Itoa(params.Page))
	v.Set("page_size", strconv.Itoa(params.PageSize))
	if len(params.Licenses) > 0 {
		v.Set("license", strings.Join(ExpandLicenses(params.Licenses), ","))
	}

	var page openversePage
	if err := o.fetch.GetJSON(ctx, o.baseURL+"/audio/?"+v.Encode(), &page); err != nil {
		return nil, fmt.Errorf("openverse search: %w", err)
	}
	return normalizeOpenverse(page.Results), nil
}

func (o *Openverse) GetByID(ctx context.Context, id string) (*core.AudioItem, error) {
	var audio openverseAudio
	err := o.fetch.GetJSON(ctx, o.baseURL+"/audio/"+url.PathEscape(id)+"/", &audio)
	if err != nil {
		if apperrors.StatusCode(err) == 404 {
			return nil, nil
		}
		return nil, fmt.Errorf("openverse get %s: %w", id, err)
	}

	items := normalizeOpenverse([]openverseAudio{audio})
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// ExpandLicenses maps the pd and cc shorthands onto Openverse licence codes.
// Other codes pass through. Duplicates are removed, keeping first occurrence.
func ExpandLicenses(licenses []string) []string {
	var expanded []string
	seen := make(map[string]bool)
	add := func(codes ...string) {
		for _, c := range codes {
			if !seen[c] {
				seen[c] = true
				expanded = append(expanded, c)
			}
		}
	}
	for _, l := range licenses {
		switch strings.ToLower(l) {
		case "pd":
			add("cc0", "pdm")
		case "cc":
			add("cc-by", "cc-by-sa", "cc-by-nd", "cc-by-nc", "cc-by-nc-sa", "cc-by-nc-nd")
		default:
			add(l)
		}
	}
	return expanded
}

// ClassifyLicense maps an Openverse licence code to a licence class.
func ClassifyLicense(code string) core.License {
	code = strings.ToLower(code)
	switch {
	case code == "cc0" || code == "pdm" || strings.Contains(code, "public"):
		return core.LicensePublicDomain
	case strings.HasPrefix(code, "cc-") || strings.HasPrefix(code, "cc "):
		return core.LicenseCreativeCommons
	default:
		return core.LicenseOther
	}
}

func normalizeOpenverse(results []openverseAudio) []core.AudioItem {
	items := make([]core.AudioItem, 0, len(results))
	for _, r := range results {
		audioURL := r.URL
		if audioURL == "" {
			audioURL = r.AudioURL
		}
		if audioURL == "" {
			continue
		}

		item := core.AudioItem{
			ID:           r.ID,
			Title:        cmp.Or(r.Title, "Untitled"),
			Artist:       cmp.Or(r.Creator, r.CreatorURL, "Unknown Artist"),
			License:      ClassifyLicense(r.License),
			AudioURL:     audioURL,
			ThumbnailURL: r.Thumbnail,
			Source:       core.SourceOpenverse,
		}
		item.Duration, item.DurationMs = secondsDuration(r.Duration)
		items = append(items, item)
	}
	return items
}
