// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scout

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/HeroicSpider/ai-news-analyst/internal/httputil"
	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

// RSSSource fetches candidates from an RSS or Atom feed. gofeed handles
// both formats, so a raw feed URL works the same as a preset.
type RSSSource struct {
	Client     *http.Client
	FeedURL    string
	SourceName string

	now func() time.Time
}

// Name returns the source identifier.
func (r *RSSSource) Name() string { return r.SourceName }

// Fetch parses the feed and returns the first Limit items in feed
// order. Feeds list newest first, so feed position stands in for rank.
// Items without a publication time get age zero, which leaves their
// relative order intact after scoring.
func (r *RSSSource) Fetch(ctx context.Context, cfg types.ScoutConfig) ([]types.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating feed request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", r.FeedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned HTTP %d", r.FeedURL, resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", r.FeedURL, err)
	}

	limit := cfg.Limit
	if limit <= 0 || limit > len(feed.Items) {
		limit = len(feed.Items)
	}

	now := time.Now
	if r.now != nil {
		now = r.now
	}
	fetchedAt := now().UTC()

	candidates := make([]types.Candidate, 0, limit)
	for i, item := range feed.Items[:limit] {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		if title == "" {
			title = "Untitled Story"
		}

		var ageHours float64
		if pub := publishedTime(item); pub != nil {
			ageHours = fetchedAt.Sub(*pub).Hours()
			if ageHours < 0 {
				ageHours = 0
			}
		}

		candidates = append(candidates, types.Candidate{
			ID:         candidateID(link),
			Title:      title,
			URL:        link,
			Rank:       i + 1,
			AgeHours:   ageHours,
			SourceName: r.SourceName,
			FetchedAt:  fetchedAt,
		})
	}
	return candidates, nil
}

func publishedTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}
