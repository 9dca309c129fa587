// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives candidates from scout output to approved
// briefing items: score, build evidence, then loop draft generation
// against the citation critic under a bounded attempt count. Candidates
// are isolated; one candidate's failure never poisons another's run.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/HeroicSpider/ai-news-analyst/internal/critic"
	"github.com/HeroicSpider/ai-news-analyst/internal/evidence"
	"github.com/HeroicSpider/ai-news-analyst/internal/generate"
	"github.com/HeroicSpider/ai-news-analyst/internal/rank"
	"github.com/HeroicSpider/ai-news-analyst/internal/scout"
	"github.com/HeroicSpider/ai-news-analyst/internal/urlnorm"
	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

// Suffixer decorates a story title with market data. Implemented by
// market.Snapshotter; tests supply a stub.
type Suffixer interface {
	Suffix(title string) string
}

// ReportSink receives run report snapshots. The pipeline writes one
// after every state change of consequence, so a fatal abort still
// leaves a report naming the candidates that had already finished.
type ReportSink interface {
	Write(report types.RunReport) error
}

// Result is one finished pipeline run.
type Result struct {
	Report types.RunReport
	Items  []types.ApprovedBriefingItem
}

// Pipeline wires the stages for one run.
type Pipeline struct {
	Scout   scout.Source
	Builder *evidence.Builder
	Backend generate.Backend
	Market  Suffixer
	Sink    ReportSink
	Config  types.PipelineConfig
	Log     *logrus.Logger

	mu     sync.Mutex
	report types.RunReport
}

// candidateResult is the terminal product of one candidate's state machine.
type candidateResult struct {
	outcome types.CandidateOutcome
	item    *types.ApprovedBriefingItem
}

// Run executes one full pipeline pass. A scout failure is fatal for the
// run; everything downstream degrades per candidate.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	p.report = types.RunReport{
		Timestamp:     time.Now().UTC(),
		Status:        types.RunStarted,
		SkipsByReason: make(map[types.SkipReason]int),
	}
	p.flushReport()

	candidates, err := p.Scout.Fetch(ctx, p.Config.Scout)
	if err != nil {
		return p.fail(err), fmt.Errorf("scouting candidates: %w", err)
	}

	p.mu.Lock()
	p.report.Seeded = len(candidates)
	p.mu.Unlock()
	p.flushReport()

	ranked := rank.Rank(candidates)
	for _, rej := range ranked.Rejected {
		p.record(candidateResult{outcome: types.CandidateOutcome{
			CandidateID: rej.ID,
			Title:       rej.Title,
			State:       types.StateSkipped,
			SkipReason:  types.SkipInvalidRank,
		}})
	}
	top := rank.TopK(ranked.Scored, p.Config.TopK)

	results := make([]*candidateResult, len(top))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Config.Workers)
	for i, sc := range top {
		i, sc := i, sc
		g.Go(func() error {
			res := p.processCandidate(gctx, sc)
			results[i] = &res
			p.record(res)
			// Candidate failures are recorded, never propagated: a
			// returned error would cancel sibling candidates.
			return nil
		})
	}
	_ = g.Wait()

	var items []types.ApprovedBriefingItem
	for _, res := range results {
		if res != nil && res.item != nil {
			items = append(items, *res.item)
		}
	}
	return p.finish(items), nil
}

// processCandidate runs one candidate's state machine to a terminal
// state. The evidence set is built once and reused across attempts;
// each attempt produces a fresh draft and a fresh verdict.
func (p *Pipeline) processCandidate(ctx context.Context, sc types.ScoredCandidate) candidateResult {
	log := p.Log.WithFields(logrus.Fields{"candidate": sc.ID, "title": sc.Title})
	outcome := types.CandidateOutcome{CandidateID: sc.ID, Title: sc.Title}

	skip := func(reason types.SkipReason, lastErr string) candidateResult {
		outcome.State = types.StateSkipped
		outcome.SkipReason = reason
		outcome.Error = lastErr
		log.WithField("reason", reason).Info("candidate skipped")
		return candidateResult{outcome: outcome}
	}

	seedURL := urlnorm.Normalize(sc.URL)
	if seedURL == "" {
		return skip(types.SkipMissingURL, "")
	}

	log.Info("building evidence")
	es := p.Builder.Build(ctx, sc.Candidate)
	if dir := p.Config.Evidence.SnapshotDir; dir != "" && !es.IsEmpty() {
		if _, err := evidence.SaveSnapshot(dir, es); err != nil {
			log.WithError(err).Warn("evidence snapshot not saved")
		}
	}
	if es.IsEmpty() {
		return skip(types.SkipInsufficientContext, "")
	}

	var lastErr string
	var lastWasCallError bool
	for attempt := 1; attempt <= p.Config.Generation.MaxAttempts; attempt++ {
		outcome.Attempts = attempt
		log.WithField("attempt", attempt).Info("generating draft")

		draft, err := generate.Generate(ctx, p.Backend, sc.Candidate, es, p.Config.Generation)
		if err != nil {
			lastErr = err.Error()
			lastWasCallError = true
			log.WithField("attempt", attempt).WithError(err).Warn("generation failed")
			continue
		}

		if len(draft.Bullets) == 0 {
			// The model judged the context insufficient; retrying the
			// same evidence would ask the same question again.
			return skip(types.SkipEmptyDraft, "")
		}

		verdict := critic.Validate(draft, es)
		if verdict.OverallPass {
			item := types.ApprovedBriefingItem{
				Title:     sc.Title,
				SourceURL: es.PrimaryURL,
				SeedURL:   seedURL,
				Bullets:   draft.Bullets,
				Market:    p.Market.Suffix(sc.Title),
				Attempts:  attempt,
			}
			outcome.State = types.StateApproved
			log.WithField("attempts", attempt).Info("candidate approved")
			return candidateResult{outcome: outcome, item: &item}
		}

		lastErr = verdict.FirstFailure
		lastWasCallError = false
		log.WithFields(logrus.Fields{
			"attempt": attempt,
			"reason":  verdict.FirstFailure,
		}).Warn("validation failed")
	}

	if lastWasCallError {
		return skip(types.SkipCallFailed, lastErr)
	}
	return skip(types.SkipValidationFailed, lastErr)
}

// record folds one terminal candidate result into the run report and
// flushes a snapshot.
func (p *Pipeline) record(res candidateResult) {
	p.mu.Lock()
	p.report.Outcomes = append(p.report.Outcomes, res.outcome)
	if res.outcome.State == types.StateApproved {
		p.report.Approved++
	} else {
		p.report.Skipped++
		p.report.SkipsByReason[res.outcome.SkipReason]++
	}
	p.mu.Unlock()
	p.flushReport()
}

// fail marks the run fatally failed. Outcomes recorded before the
// fatal error stay in the report.
func (p *Pipeline) fail(err error) Result {
	p.mu.Lock()
	p.report.Status = types.RunFailed
	p.report.Error = err.Error()
	report := p.snapshotLocked()
	p.mu.Unlock()
	p.flushReport()
	return Result{Report: report}
}

// finish sets the terminal run status and emits the last snapshot.
func (p *Pipeline) finish(items []types.ApprovedBriefingItem) Result {
	p.mu.Lock()
	switch {
	case len(items) > 0:
		p.report.Status = types.RunSuccess
	default:
		p.report.Status = types.RunCompletedEmpty
	}
	report := p.snapshotLocked()
	p.mu.Unlock()
	p.flushReport()
	return Result{Report: report, Items: items}
}

// snapshotLocked deep-copies the report so a sink can read it while
// workers keep appending outcomes. Caller holds p.mu.
func (p *Pipeline) snapshotLocked() types.RunReport {
	snapshot := p.report
	snapshot.Outcomes = append([]types.CandidateOutcome(nil), p.report.Outcomes...)
	snapshot.SkipsByReason = make(map[types.SkipReason]int, len(p.report.SkipsByReason))
	for reason, n := range p.report.SkipsByReason {
		snapshot.SkipsByReason[reason] = n
	}
	return snapshot
}

func (p *Pipeline) flushReport() {
	if p.Sink == nil {
		return
	}
	p.mu.Lock()
	snapshot := p.snapshotLocked()
	p.mu.Unlock()
	if err := p.Sink.Write(snapshot); err != nil {
		p.Log.WithError(err).Warn("run report not written")
	}
}
