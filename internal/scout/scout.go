// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scout discovers briefing candidates from news sources.
// Sources implement a single interface per the Strategy pattern: the
// Hacker News API and generic RSS/Atom feeds ship in-tree, and tests
// swap in fakes.
package scout

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/HeroicSpider/ai-news-analyst/internal/urlnorm"
	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

// Source fetches ranked candidates from one news source. Rank is the
// source's own ordering, 1-based; scoring happens downstream.
type Source interface {
	Name() string
	Fetch(ctx context.Context, cfg types.ScoutConfig) ([]types.Candidate, error)
}

// rssPresets maps well-known source names to their feed URLs.
var rssPresets = map[string]string{
	"techcrunch": "https://techcrunch.com/feed/",
	"theverge":   "https://www.theverge.com/rss/index.xml",
	"wired":      "https://www.wired.com/feed/rss",
	"nytimes":    "https://rss.nytimes.com/services/xml/rss/nyt/Technology.xml",
	"wsj":        "https://feeds.a.dj.com/rss/RSSWSJD.xml",
}

// Resolve maps a source argument to a Source. Recognized presets are
// "hackernews" (or "hn") and the named RSS feeds; anything starting
// with http is treated as a raw feed URL. Unknown names fall back to
// Hacker News with a warning.
func Resolve(source string, client *http.Client, log *logrus.Logger) Source {
	name := strings.ToLower(strings.TrimSpace(source))

	switch {
	case name == "" || name == "hackernews" || name == "hn":
		return &HackerNews{Client: client}
	case rssPresets[name] != "":
		return &RSSSource{Client: client, FeedURL: rssPresets[name], SourceName: name}
	case strings.HasPrefix(name, "http"):
		return &RSSSource{Client: client, FeedURL: strings.TrimSpace(source), SourceName: "custom-rss"}
	default:
		log.WithField("source", source).Warn("unknown source, defaulting to Hacker News")
		return &HackerNews{Client: client}
	}
}

// candidateID derives a stable identifier from the normalized URL so
// repeated runs over the same story produce the same ID.
func candidateID(rawURL string) string {
	h := sha256.Sum256([]byte(urlnorm.Normalize(rawURL)))
	return fmt.Sprintf("cand-%x", h[:8])
}
