// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		wantType   string
		wantFeed   string
		wantSource string
	}{
		{"hackernews preset", "hackernews", "hn", "", ""},
		{"hn alias", "hn", "hn", "", ""},
		{"empty defaults to hn", "", "hn", "", ""},
		{"case insensitive", "HackerNews", "hn", "", ""},
		{"techcrunch preset", "techcrunch", "rss", "https://techcrunch.com/feed/", "techcrunch"},
		{"wsj preset", "wsj", "rss", "https://feeds.a.dj.com/rss/RSSWSJD.xml", "wsj"},
		{"raw feed url", "https://example.com/feed.xml", "rss", "https://example.com/feed.xml", "custom-rss"},
		{"unknown falls back to hn", "not-a-source", "hn", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := Resolve(tt.source, nil, quietLogger())
			switch tt.wantType {
			case "hn":
				if _, ok := src.(*HackerNews); !ok {
					t.Fatalf("Resolve(%q) = %T, want *HackerNews", tt.source, src)
				}
			case "rss":
				rss, ok := src.(*RSSSource)
				if !ok {
					t.Fatalf("Resolve(%q) = %T, want *RSSSource", tt.source, src)
				}
				if rss.FeedURL != tt.wantFeed {
					t.Errorf("feed URL = %q, want %q", rss.FeedURL, tt.wantFeed)
				}
				if rss.SourceName != tt.wantSource {
					t.Errorf("source name = %q, want %q", rss.SourceName, tt.wantSource)
				}
			}
		})
	}
}

func TestCandidateIDStable(t *testing.T) {
	a := candidateID("http://Example.com/story?utm_source=feed")
	b := candidateID("https://example.com/story")
	if a != b {
		t.Errorf("IDs differ for equivalent URLs: %q vs %q", a, b)
	}
	c := candidateID("https://example.com/other")
	if a == c {
		t.Errorf("distinct URLs collided: %q", a)
	}
}

func TestHackerNewsFetch(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	items := map[int64]hnItem{
		1: {Title: "First story", URL: "https://a.test/first", Time: now.Add(-2 * time.Hour).Unix()},
		2: {Title: "Ask HN: no url", URL: "", Time: now.Unix()},
		3: {Title: "Third story", URL: "https://c.test/third", Time: now.Add(-48 * time.Hour).Unix()},
		4: {Title: "Beyond scan depth", URL: "https://d.test/fourth", Time: now.Unix()},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v0/topstories.json", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]int64{1, 2, 3, 4})
	})
	mux.HandleFunc("/v0/item/", func(w http.ResponseWriter, r *http.Request) {
		idStr := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v0/item/"), ".json")
		id, _ := strconv.ParseInt(idStr, 10, 64)
		item, ok := items[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(item)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	oldTop, oldItem := hnTopStoriesURL, hnItemURL
	hnTopStoriesURL = ts.URL + "/v0/topstories.json"
	hnItemURL = ts.URL + "/v0/item/%d.json"
	defer func() { hnTopStoriesURL, hnItemURL = oldTop, oldItem }()

	hn := &HackerNews{Client: ts.Client(), now: func() time.Time { return now }}
	got, err := hn.Fetch(context.Background(), types.ScoutConfig{ScanDepth: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Item 2 has no URL, item 4 is past scan depth.
	if len(got) != 2 {
		t.Fatalf("len(candidates) = %d, want 2", len(got))
	}
	if got[0].Title != "First story" || got[0].Rank != 1 {
		t.Errorf("candidates[0] = %+v", got[0])
	}
	if got[0].AgeHours < 1.99 || got[0].AgeHours > 2.01 {
		t.Errorf("candidates[0].AgeHours = %v, want ~2", got[0].AgeHours)
	}
	// The dropped item leaves a rank gap.
	if got[1].Rank != 3 {
		t.Errorf("candidates[1].Rank = %d, want 3", got[1].Rank)
	}
	if got[1].SourceName != "hackernews" {
		t.Errorf("candidates[1].SourceName = %q", got[1].SourceName)
	}
}

func TestHackerNewsFetchTopStoriesError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	old := hnTopStoriesURL
	hnTopStoriesURL = ts.URL + "/v0/topstories.json"
	defer func() { hnTopStoriesURL = old }()

	hn := &HackerNews{Client: ts.Client()}
	if _, err := hn.Fetch(context.Background(), types.ScoutConfig{}); err == nil {
		t.Fatal("expected error when top stories listing fails")
	}
}

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Example Tech</title>
<item><title>Newest post</title><link>https://example.com/newest</link><pubDate>Sun, 30 Aug 2026 10:00:00 +0000</pubDate></item>
<item><title>Older post</title><link>https://example.com/older</link><pubDate>Sat, 29 Aug 2026 10:00:00 +0000</pubDate></item>
<item><title>Third post</title><link>https://example.com/third</link></item>
</channel></rss>`

const atomFixture = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<title>Example Atom</title>
<entry><title>Atom entry</title><link href="https://example.com/atom-entry"/><updated>2026-08-30T09:00:00Z</updated></entry>
</feed>`

func TestRSSFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssFixture)
	}))
	defer ts.Close()

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	src := &RSSSource{
		Client:     ts.Client(),
		FeedURL:    ts.URL,
		SourceName: "techcrunch",
		now:        func() time.Time { return now },
	}

	got, err := src.Fetch(context.Background(), types.ScoutConfig{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(candidates) = %d, want 2", len(got))
	}
	if got[0].Title != "Newest post" || got[0].Rank != 1 {
		t.Errorf("candidates[0] = %+v", got[0])
	}
	if got[0].AgeHours < 1.99 || got[0].AgeHours > 2.01 {
		t.Errorf("candidates[0].AgeHours = %v, want ~2", got[0].AgeHours)
	}
	if got[1].Rank != 2 || got[1].URL != "https://example.com/older" {
		t.Errorf("candidates[1] = %+v", got[1])
	}
}

func TestRSSFetchAtom(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, atomFixture)
	}))
	defer ts.Close()

	src := &RSSSource{Client: ts.Client(), FeedURL: ts.URL, SourceName: "custom-rss"}
	got, err := src.Fetch(context.Background(), types.ScoutConfig{Limit: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Atom entry" {
		t.Fatalf("candidates = %+v, want single atom entry", got)
	}
}

func TestRSSFetchItemWithoutDate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssFixture)
	}))
	defer ts.Close()

	src := &RSSSource{Client: ts.Client(), FeedURL: ts.URL, SourceName: "techcrunch"}
	got, err := src.Fetch(context.Background(), types.ScoutConfig{Limit: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(candidates) = %d, want 3", len(got))
	}
	if got[2].AgeHours != 0 {
		t.Errorf("dateless item AgeHours = %v, want 0", got[2].AgeHours)
	}
}

func TestRSSFetchBadFeed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "not xml at all")
	}))
	defer ts.Close()

	src := &RSSSource{Client: ts.Client(), FeedURL: ts.URL, SourceName: "custom-rss"}
	if _, err := src.Fetch(context.Background(), types.ScoutConfig{}); err == nil {
		t.Fatal("expected error for unparseable feed")
	}
}
