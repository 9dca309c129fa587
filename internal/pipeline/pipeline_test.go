// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HeroicSpider/ai-news-analyst/internal/evidence"
	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

// fakeScout returns canned candidates.
type fakeScout struct {
	candidates []types.Candidate
	err        error
}

func (f *fakeScout) Name() string { return "fake" }

func (f *fakeScout) Fetch(ctx context.Context, cfg types.ScoutConfig) ([]types.Candidate, error) {
	return f.candidates, f.err
}

// fakeProvider serves per-candidate search results keyed by query title.
type fakeProvider struct {
	mu      sync.Mutex
	byQuery map[string][]types.SearchResult
	calls   map[string]int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[query]++
	return f.byQuery[query], nil
}

// scriptedBackend returns responses in order, per candidate title found
// in the prompt.
type scriptedBackend struct {
	mu        sync.Mutex
	responses map[string][]string
	served    map[string]int
}

func (s *scriptedBackend) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.served == nil {
		s.served = make(map[string]int)
	}
	for title, seq := range s.responses {
		if !strings.Contains(prompt, "STORY: "+title) {
			continue
		}
		i := s.served[title]
		s.served[title]++
		if i >= len(seq) {
			i = len(seq) - 1
		}
		return seq[i], nil
	}
	return "", errors.New("no scripted response for prompt")
}

func (s *scriptedBackend) calls(title string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.served[title]
}

// stubSuffixer returns a fixed market suffix.
type stubSuffixer struct{ suffix string }

func (s stubSuffixer) Suffix(string) string { return s.suffix }

// memorySink keeps every report snapshot.
type memorySink struct {
	mu        sync.Mutex
	snapshots []types.RunReport
}

func (m *memorySink) Write(r types.RunReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, r)
	return nil
}

func (m *memorySink) last() types.RunReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshots[len(m.snapshots)-1]
}

func candidate(id, title, url string, rank int) types.Candidate {
	return types.Candidate{ID: id, Title: title, URL: url, Rank: rank}
}

func searchHit(url string, n int) []types.SearchResult {
	return []types.SearchResult{{URL: url, Content: strings.Repeat("x", n), Relevance: 0.8}}
}

func goodResponse(url string) string {
	return fmt.Sprintf(`{"bullets": ["Fact one [S](%s)", "Fact two [S](%s)"]}`, url, url)
}

func badResponse() string {
	return `{"bullets": ["Fact [S](https://hallucinated.test/x)", "More [S](https://hallucinated.test/y)"]}`
}

func testPipeline(sc *fakeScout, fp *fakeProvider, b *scriptedBackend, sink ReportSink) *Pipeline {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Pipeline{
		Scout: sc,
		Builder: &evidence.Builder{
			Provider: fp,
			Search:   types.SearchConfig{HTTPConfig: types.HTTPConfig{Timeout: time.Second}, MaxResults: 3},
			Config: types.EvidenceConfig{
				CharBudget:       1800,
				ExcerptBudget:    600,
				MinContentLength: 300,
				Primary:          types.PrimarySeedFirst,
			},
			Log: log,
		},
		Backend: b,
		Market:  stubSuffixer{},
		Sink:    sink,
		Config: types.PipelineConfig{
			Generation: types.GenerationConfig{MaxAttempts: 3, Timeout: time.Second},
			TopK:       5,
			Workers:    2,
		},
		Log: log,
	}
}

func TestRunApprovesValidCandidate(t *testing.T) {
	sc := &fakeScout{candidates: []types.Candidate{
		candidate("c1", "Story one", "https://a.test/one", 1),
	}}
	fp := &fakeProvider{byQuery: map[string][]types.SearchResult{
		"Story one": searchHit("https://a.test/one", 400),
	}}
	b := &scriptedBackend{responses: map[string][]string{
		"Story one": {goodResponse("https://a.test/one")},
	}}
	sink := &memorySink{}
	p := testPipeline(sc, fp, b, sink)
	p.Market = stubSuffixer{suffix: " (NVDA: $500.00 +1.0%)"}

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Report.Status != types.RunSuccess {
		t.Errorf("Status = %q", res.Report.Status)
	}
	if len(res.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(res.Items))
	}
	item := res.Items[0]
	if item.Title != "Story one" || item.SourceURL != "https://a.test/one" || item.Attempts != 1 {
		t.Errorf("item = %+v", item)
	}
	if item.Market != " (NVDA: $500.00 +1.0%)" {
		t.Errorf("Market = %q", item.Market)
	}
	if res.Report.Approved != 1 || res.Report.Skipped != 0 {
		t.Errorf("report counts = %+v", res.Report)
	}
}

func TestRunRetryBoundExhausted(t *testing.T) {
	sc := &fakeScout{candidates: []types.Candidate{
		candidate("c1", "Bad story", "https://a.test/one", 1),
	}}
	fp := &fakeProvider{byQuery: map[string][]types.SearchResult{
		"Bad story": searchHit("https://a.test/one", 400),
	}}
	b := &scriptedBackend{responses: map[string][]string{
		"Bad story": {badResponse()},
	}}
	sink := &memorySink{}
	p := testPipeline(sc, fp, b, sink)

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Exactly MaxAttempts generation calls, then Skipped.
	if got := b.calls("Bad story"); got != 3 {
		t.Errorf("generation calls = %d, want 3", got)
	}
	if res.Report.Status != types.RunCompletedEmpty {
		t.Errorf("Status = %q", res.Report.Status)
	}
	out := res.Report.Outcomes[0]
	if out.State != types.StateSkipped || out.SkipReason != types.SkipValidationFailed {
		t.Errorf("outcome = %+v", out)
	}
	if out.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", out.Attempts)
	}
	if out.Error == "" {
		t.Error("outcome should carry the last validation failure")
	}
	// Evidence was built once, not per attempt.
	if fp.calls["Bad story"] != 1 {
		t.Errorf("search calls = %d, want 1", fp.calls["Bad story"])
	}
}

func TestRunBackendErrorsSkipAsCallFailed(t *testing.T) {
	sc := &fakeScout{candidates: []types.Candidate{
		candidate("c1", "Unreachable story", "https://a.test/one", 1),
	}}
	fp := &fakeProvider{byQuery: map[string][]types.SearchResult{
		"Unreachable story": searchHit("https://a.test/one", 400),
	}}
	// No scripted response: every generation attempt errors.
	b := &scriptedBackend{responses: map[string][]string{}}
	sink := &memorySink{}
	p := testPipeline(sc, fp, b, sink)

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := res.Report.Outcomes[0]
	if out.State != types.StateSkipped || out.SkipReason != types.SkipCallFailed {
		t.Errorf("outcome = %+v", out)
	}
	if out.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", out.Attempts)
	}
	if out.Error == "" {
		t.Error("outcome should carry the last call error")
	}
}

func TestRunApprovesOnRetry(t *testing.T) {
	sc := &fakeScout{candidates: []types.Candidate{
		candidate("c1", "Flaky story", "https://a.test/one", 1),
	}}
	fp := &fakeProvider{byQuery: map[string][]types.SearchResult{
		"Flaky story": searchHit("https://a.test/one", 400),
	}}
	b := &scriptedBackend{responses: map[string][]string{
		"Flaky story": {badResponse(), goodResponse("https://a.test/one")},
	}}
	sink := &memorySink{}
	p := testPipeline(sc, fp, b, sink)

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(res.Items))
	}
	if res.Items[0].Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", res.Items[0].Attempts)
	}
}

func TestRunEmptyDraftSkipsWithoutRetry(t *testing.T) {
	sc := &fakeScout{candidates: []types.Candidate{
		candidate("c1", "Thin story", "https://a.test/one", 1),
	}}
	fp := &fakeProvider{byQuery: map[string][]types.SearchResult{
		"Thin story": searchHit("https://a.test/one", 400),
	}}
	b := &scriptedBackend{responses: map[string][]string{
		"Thin story": {`{"bullets": []}`},
	}}
	sink := &memorySink{}
	p := testPipeline(sc, fp, b, sink)

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.calls("Thin story"); got != 1 {
		t.Errorf("generation calls = %d, want 1 (empty draft is terminal)", got)
	}
	out := res.Report.Outcomes[0]
	if out.SkipReason != types.SkipEmptyDraft {
		t.Errorf("SkipReason = %q", out.SkipReason)
	}
}

func TestRunCandidateIsolation(t *testing.T) {
	sc := &fakeScout{candidates: []types.Candidate{
		candidate("c1", "Starved story", "https://a.test/one", 1),
		candidate("c2", "Healthy story", "https://b.test/two", 2),
	}}
	fp := &fakeProvider{byQuery: map[string][]types.SearchResult{
		// c1 gets too little content; c2 is fine.
		"Starved story": searchHit("https://a.test/one", 50),
		"Healthy story": searchHit("https://b.test/two", 400),
	}}
	b := &scriptedBackend{responses: map[string][]string{
		"Healthy story": {goodResponse("https://b.test/two")},
	}}
	sink := &memorySink{}
	p := testPipeline(sc, fp, b, sink)

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Title != "Healthy story" {
		t.Fatalf("Items = %+v, want only the healthy story", res.Items)
	}
	if res.Report.SkipsByReason[types.SkipInsufficientContext] != 1 {
		t.Errorf("SkipsByReason = %v", res.Report.SkipsByReason)
	}
	if res.Report.Status != types.RunSuccess {
		t.Errorf("Status = %q", res.Report.Status)
	}
}

func TestRunMissingURLSkip(t *testing.T) {
	sc := &fakeScout{candidates: []types.Candidate{
		candidate("c1", "No URL story", "", 1),
	}}
	sink := &memorySink{}
	p := testPipeline(sc, &fakeProvider{}, &scriptedBackend{}, sink)

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Report.SkipsByReason[types.SkipMissingURL] != 1 {
		t.Errorf("SkipsByReason = %v", res.Report.SkipsByReason)
	}
}

func TestRunInvalidRankSkip(t *testing.T) {
	sc := &fakeScout{candidates: []types.Candidate{
		candidate("c1", "Rankless story", "https://a.test/one", 0),
	}}
	sink := &memorySink{}
	p := testPipeline(sc, &fakeProvider{}, &scriptedBackend{}, sink)

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Report.SkipsByReason[types.SkipInvalidRank] != 1 {
		t.Errorf("SkipsByReason = %v", res.Report.SkipsByReason)
	}
	if res.Report.Status != types.RunCompletedEmpty {
		t.Errorf("Status = %q", res.Report.Status)
	}
}

func TestRunScoutFailureIsFatal(t *testing.T) {
	sc := &fakeScout{err: errors.New("feed unreachable")}
	sink := &memorySink{}
	p := testPipeline(sc, &fakeProvider{}, &scriptedBackend{}, sink)

	_, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected error when scouting fails")
	}
	last := sink.last()
	if last.Status != types.RunFailed {
		t.Errorf("Status = %q, want failed", last.Status)
	}
	if last.Error == "" {
		t.Error("report should carry the fatal error")
	}
}

func TestRunReportWrittenIncrementally(t *testing.T) {
	sc := &fakeScout{candidates: []types.Candidate{
		candidate("c1", "Story one", "https://a.test/one", 1),
	}}
	fp := &fakeProvider{byQuery: map[string][]types.SearchResult{
		"Story one": searchHit("https://a.test/one", 400),
	}}
	b := &scriptedBackend{responses: map[string][]string{
		"Story one": {goodResponse("https://a.test/one")},
	}}
	sink := &memorySink{}
	p := testPipeline(sc, fp, b, sink)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// started snapshot, seeded snapshot, per-candidate snapshot, final.
	if len(sink.snapshots) < 4 {
		t.Fatalf("snapshots = %d, want at least 4", len(sink.snapshots))
	}
	if sink.snapshots[0].Status != types.RunStarted {
		t.Errorf("first snapshot status = %q", sink.snapshots[0].Status)
	}
	if sink.last().Status != types.RunSuccess {
		t.Errorf("last snapshot status = %q", sink.last().Status)
	}
}
