// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evidence builds the bounded evidence window for a candidate:
// search the web for the candidate's title, dedupe and normalize source
// URLs, and trim excerpt text to fixed character budgets. The resulting
// EvidenceSet is built once per candidate and reused across generation
// attempts.
package evidence

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/HeroicSpider/ai-news-analyst/internal/deadline"
	"github.com/HeroicSpider/ai-news-analyst/internal/search"
	"github.com/HeroicSpider/ai-news-analyst/internal/urlnorm"
	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

// Builder assembles evidence sets from a search provider.
type Builder struct {
	Provider search.Provider
	Search   types.SearchConfig
	Config   types.EvidenceConfig
	Log      *logrus.Logger
}

// Build queries the provider for the candidate's title and assembles an
// EvidenceSet. A failed or timed-out search yields an empty set, not an
// error: insufficient context is a per-candidate skip, never a run
// failure. The returned set's AllowedURLs are normalized and deduped in
// first-seen order.
func (b *Builder) Build(ctx context.Context, cand types.Candidate) types.EvidenceSet {
	es := types.EvidenceSet{CandidateID: cand.ID}

	out := deadline.Call(ctx, b.Search.Timeout, func(ctx context.Context) ([]types.SearchResult, error) {
		return b.Provider.Search(ctx, cand.Title, b.Search)
	})
	if out.Failed() {
		b.Log.WithFields(logrus.Fields{
			"candidate": cand.ID,
			"status":    out.Status,
		}).WithError(out.Err).Warn("search failed, candidate has no evidence")
		return es
	}

	var results []types.SearchResult
	var totalContent int
	for _, r := range out.Value {
		if r.URL == "" || r.Content == "" {
			continue
		}
		results = append(results, r)
		totalContent += len(r.Content)
	}
	if totalContent < b.Config.MinContentLength {
		return es
	}

	seen := make(map[string]bool)
	for _, r := range results {
		norm := urlnorm.Normalize(r.URL)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		es.AllowedURLs = append(es.AllowedURLs, norm)
	}
	if len(es.AllowedURLs) == 0 {
		return es
	}

	es.PrimaryURL = b.primaryURL(cand, es.AllowedURLs)

	for _, r := range results {
		text := truncate(flatten(r.Content), b.Config.ExcerptBudget)
		if text == "" {
			continue
		}
		es.Excerpts = append(es.Excerpts, types.Excerpt{
			URL:       urlnorm.Normalize(r.URL),
			Text:      text,
			Relevance: r.Relevance,
		})
	}
	es.Excerpts = capAggregate(es.Excerpts, b.Config.CharBudget)
	return es
}

// primaryURL picks the citation target per the configured policy. The
// seed-first policy prefers the candidate's own URL when it survived
// into the admissible set.
func (b *Builder) primaryURL(cand types.Candidate, allowed []string) string {
	if b.Config.Primary != types.PrimaryFirstReturned {
		seed := urlnorm.Normalize(cand.URL)
		for _, u := range allowed {
			if u == seed {
				return seed
			}
		}
	}
	return allowed[0]
}

// flatten collapses whitespace runs so an excerpt is a single line.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n bytes, backing off to a rune boundary so
// a multibyte character is never split.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// capAggregate enforces the aggregate character budget by trimming the
// longest excerpts first: it binary-searches the largest per-excerpt cap
// whose capped sum fits the budget, so short excerpts survive intact
// while the longest absorb the cut.
func capAggregate(excerpts []types.Excerpt, budget int) []types.Excerpt {
	if budget <= 0 {
		return excerpts
	}
	total := 0
	longest := 0
	for _, e := range excerpts {
		total += len(e.Text)
		if len(e.Text) > longest {
			longest = len(e.Text)
		}
	}
	if total <= budget {
		return excerpts
	}

	capLen := sort.Search(longest, func(n int) bool {
		sum := 0
		for _, e := range excerpts {
			if len(e.Text) > n {
				sum += n
			} else {
				sum += len(e.Text)
			}
		}
		return sum > budget
	})
	// sort.Search found the first cap that overflows; use one less.
	capLen--
	if capLen <= 0 {
		return nil
	}

	out := make([]types.Excerpt, 0, len(excerpts))
	for _, e := range excerpts {
		e.Text = truncate(e.Text, capLen)
		if e.Text == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}
