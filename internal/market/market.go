// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package market optionally decorates an approved story with a stock
// quote. The quote fetch runs in a child process joined with a hard
// deadline; a timeout or any probe failure silently omits the snapshot,
// it never delays or fails the candidate.
package market

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HeroicSpider/ai-news-analyst/internal/deadline"
	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

// DefaultAllowlist maps company names to tickers. Only titles that
// mention one of these companies get a snapshot.
var DefaultAllowlist = map[string]string{
	"NVIDIA":    "NVDA",
	"Tesla":     "TSLA",
	"Apple":     "AAPL",
	"Google":    "GOOGL",
	"Microsoft": "MSFT",
	"Amazon":    "AMZN",
	"Meta":      "META",
	"Facebook":  "META",
}

// probeCaller is the deadline-joined process launcher the snapshotter
// uses. Satisfied by deadline.ProcessCaller; tests supply a fake.
type probeCaller interface {
	Call(timeout time.Duration, args ...string) deadline.Outcome[[]byte]
}

// Snapshotter produces market suffixes for story headings.
type Snapshotter struct {
	Caller probeCaller
	Config types.MarketConfig
	Log    *logrus.Logger
}

// NewSnapshotter wires a snapshotter to the probe binary, normally the
// running binary itself re-invoked with the probe subcommand.
func NewSnapshotter(bin string, cfg types.MarketConfig, log *logrus.Logger) *Snapshotter {
	return &Snapshotter{Caller: deadline.NewProcessCaller(bin), Config: cfg, Log: log}
}

// Suffix returns the formatted market suffix for a story title, or ""
// when the stage is disabled, no allowlisted company is mentioned, or
// the probe fails or times out. One probe per title, no retry.
func (s *Snapshotter) Suffix(title string) string {
	if !s.Config.Enabled {
		return ""
	}
	allowlist := s.Config.Allowlist
	if len(allowlist) == 0 {
		allowlist = DefaultAllowlist
	}
	ticker := DetectTicker(title, allowlist)
	if ticker == "" {
		return ""
	}

	out := s.Caller.Call(s.Config.Timeout, "market-probe", ticker)
	if out.Status == deadline.StatusTimeout {
		s.Log.WithField("ticker", ticker).Warn("market probe timed out, process killed")
		return ""
	}
	if out.Failed() {
		s.Log.WithField("ticker", ticker).WithError(out.Err).Warn("market probe failed")
		return ""
	}

	var q Quote
	if err := json.Unmarshal(out.Value, &q); err != nil {
		s.Log.WithField("ticker", ticker).WithError(err).Warn("malformed probe output")
		return ""
	}
	snap, ok := q.Snapshot()
	if !ok {
		return ""
	}
	return Format(snap)
}

// DetectTicker finds the first allowlisted company mentioned in the
// title as a whole word, case-insensitively. Companies are tried in
// sorted name order so detection is deterministic.
func DetectTicker(title string, allowlist map[string]string) string {
	names := make([]string, 0, len(allowlist))
	for name := range allowlist {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pattern := `(?i)\b` + regexp.QuoteMeta(name) + `\b`
		if regexp.MustCompile(pattern).MatchString(title) {
			return allowlist[name]
		}
	}
	return ""
}

// Quote is the probe subcommand's stdout payload.
type Quote struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close"`
}

// Snapshot derives the typed snapshot from a raw quote. A missing price
// or previous close makes the quote unusable.
func (q Quote) Snapshot() (types.MarketSnapshot, bool) {
	if q.Price == 0 || q.PreviousClose == 0 {
		return types.MarketSnapshot{}, false
	}
	return types.MarketSnapshot{
		Ticker:    q.Ticker,
		Price:     q.Price,
		ChangePct: (q.Price - q.PreviousClose) / q.PreviousClose * 100,
		FetchedAt: time.Now().UTC(),
	}, true
}

// Format renders the heading suffix, e.g. " (NVDA: $512.10 +1.3%)".
func Format(s types.MarketSnapshot) string {
	return fmt.Sprintf(" (%s: $%.2f %+.1f%%)", s.Ticker, s.Price, s.ChangePct)
}
