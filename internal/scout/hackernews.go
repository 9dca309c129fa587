// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/HeroicSpider/ai-news-analyst/internal/httputil"
	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

// Endpoints are vars so tests can point them at an httptest server.
var (
	hnTopStoriesURL = "https://hacker-news.firebaseio.com/v0/topstories.json"
	hnItemURL       = "https://hacker-news.firebaseio.com/v0/item/%d.json"
)

const (
	defaultScanDepth  = 30
	itemFetchParallel = 8
)

// HackerNews fetches top stories from the Hacker News API.
type HackerNews struct {
	Client *http.Client

	// now is substituted in tests for deterministic ages.
	now func() time.Time
}

// Name returns the source identifier.
func (h *HackerNews) Name() string { return "hackernews" }

// hnItem is the subset of the item record the scout needs.
type hnItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Time  int64  `json:"time"`
}

// Fetch lists the top story IDs, then fetches the first ScanDepth items
// concurrently. Items without an external URL (Ask HN, jobs) are
// dropped. Rank is the story's 1-based position on the front page; a
// dropped item leaves a gap rather than shifting later ranks.
func (h *HackerNews) Fetch(ctx context.Context, cfg types.ScoutConfig) ([]types.Candidate, error) {
	depth := cfg.ScanDepth
	if depth <= 0 {
		depth = defaultScanDepth
	}

	var ids []int64
	if err := h.getJSON(ctx, hnTopStoriesURL, &ids); err != nil {
		return nil, fmt.Errorf("fetching top stories: %w", err)
	}
	if len(ids) > depth {
		ids = ids[:depth]
	}

	now := time.Now
	if h.now != nil {
		now = h.now
	}
	fetchedAt := now().UTC()

	candidates := make([]*types.Candidate, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(itemFetchParallel)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			var item hnItem
			if err := h.getJSON(gctx, fmt.Sprintf(hnItemURL, id), &item); err != nil {
				// A single unreachable item does not sink the scan.
				return nil
			}
			if item.URL == "" || item.Title == "" {
				return nil
			}
			ageHours := fetchedAt.Sub(time.Unix(item.Time, 0)).Hours()
			if ageHours < 0 {
				ageHours = 0
			}
			candidates[i] = &types.Candidate{
				ID:         candidateID(item.URL),
				Title:      item.Title,
				URL:        item.URL,
				Rank:       i + 1,
				AgeHours:   ageHours,
				SourceName: h.Name(),
				FetchedAt:  fetchedAt,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (h *HackerNews) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
