// Package source discovers candidate videos on external platforms and
// drives them through the recipe extraction pipeline.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/gtumedei/relish-recipe-dt/internal/models"
)

// SearchParams are the platform search filters. Zero values fall back to
// defaults: query "food", 3 results, relevance order, and videos uploaded
// within the last week (counted from the start of today, UTC).
type SearchParams struct {
	Query             string
	MaxResults        int64
	Order             string // date, rating, relevance, title or viewCount
	PublishedAfter    time.Time
	PublishedBefore   time.Time
	RelevanceLanguage string // ISO 639-1 code
	Location          string // "lat,long"
	LocationRadius    string // e.g. "50km", 1000km max
	PageToken         string
}

// YouTube searches videos through the YouTube Data API v3.
type YouTube struct {
	svc *youtube.Service
	log *slog.Logger
}

// NewYouTube creates a search adapter authenticated with an API key.
func NewYouTube(ctx context.Context, apiKey string, log *slog.Logger) (*YouTube, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube api key is not set")
	}
	if log == nil {
		log = slog.Default()
	}
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &YouTube{svc: svc, log: log}, nil
}

// Search runs a video search and maps the response to the internal result
// model. Items without a video ID or snippet are skipped.
func (y *YouTube) Search(ctx context.Context, params SearchParams) (*models.SearchPage, error) {
	if params.Query == "" {
		params.Query = "food"
	}
	if params.MaxResults <= 0 {
		params.MaxResults = 3
	}
	if params.Order == "" {
		params.Order = "relevance"
	}
	if params.PublishedAfter.IsZero() {
		now := time.Now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		params.PublishedAfter = today.AddDate(0, 0, -7)
	}

	y.log.Info("fetching food data from youtube",
		"query", params.Query,
		"maxResults", params.MaxResults,
		"order", params.Order,
		"publishedAfter", params.PublishedAfter.Format(time.RFC3339))

	call := y.svc.Search.List([]string{"snippet"}).
		Context(ctx).
		Q(params.Query).
		Type("video").
		MaxResults(params.MaxResults).
		Order(params.Order).
		PublishedAfter(params.PublishedAfter.Format(time.RFC3339))
	if !params.PublishedBefore.IsZero() {
		call = call.PublishedBefore(params.PublishedBefore.Format(time.RFC3339))
	}
	if params.RelevanceLanguage != "" {
		call = call.RelevanceLanguage(params.RelevanceLanguage)
	}
	if params.Location != "" {
		call = call.Location(params.Location)
	}
	if params.LocationRadius != "" {
		call = call.LocationRadius(params.LocationRadius)
	}
	if params.PageToken != "" {
		call = call.PageToken(params.PageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	page := &models.SearchPage{
		Items:         make([]models.SearchResultItem, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	if resp.PageInfo != nil {
		page.TotalResults = resp.PageInfo.TotalResults
	}
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		published, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		page.Items = append(page.Items, models.SearchResultItem{
			VideoID:     item.Id.VideoId,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			Channel:     item.Snippet.ChannelTitle,
			PublishedAt: published,
			Thumbnails:  thumbnails(item.Snippet.Thumbnails),
		})
	}
	return page, nil
}

func thumbnails(d *youtube.ThumbnailDetails) map[string]models.Thumbnail {
	if d == nil {
		return nil
	}
	out := make(map[string]models.Thumbnail)
	add := func(key string, t *youtube.Thumbnail) {
		if t != nil {
			out[key] = models.Thumbnail{URL: t.Url, Width: t.Width, Height: t.Height}
		}
	}
	add("default", d.Default)
	add("medium", d.Medium)
	add("high", d.High)
	if len(out) == 0 {
		return nil
	}
	return out
}

// VideoURL resolves either a watch URL or a bare video ID to a canonical
// (url, id) pair.
func VideoURL(urlOrID string) (videoURL, videoID string) {
	if strings.HasPrefix(urlOrID, "http") {
		if u, err := url.Parse(urlOrID); err == nil {
			if id := u.Query().Get("v"); id != "" {
				return urlOrID, id
			}
		}
		return urlOrID, urlOrID
	}
	return "https://youtube.com/watch?v=" + urlOrID, urlOrID
}
