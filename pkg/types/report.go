// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CandidateState tracks a candidate's progress through the retry controller.
type CandidateState string

const (
	StatePending    CandidateState = "pending"
	StateGenerating CandidateState = "generating"
	StateValidating CandidateState = "validating"
	StateRetrying   CandidateState = "retrying"
	StateApproved   CandidateState = "approved"
	StateSkipped    CandidateState = "skipped"
)

// Terminal reports whether the state machine stops at this state.
func (s CandidateState) Terminal() bool {
	return s == StateApproved || s == StateSkipped
}

// SkipReason classifies why a candidate left the pipeline without approval.
type SkipReason string

const (
	// SkipNone marks a candidate that was not skipped.
	SkipNone SkipReason = ""

	// SkipInvalidRank marks a candidate rejected by the hotness scorer.
	SkipInvalidRank SkipReason = "invalid_rank"

	// SkipMissingURL marks a candidate that arrived without a usable URL.
	SkipMissingURL SkipReason = "missing_url"

	// SkipInsufficientContext marks a candidate whose retrieval produced
	// no usable evidence.
	SkipInsufficientContext SkipReason = "insufficient_context"

	// SkipEmptyDraft marks a candidate the generator declined with an
	// empty bullet list.
	SkipEmptyDraft SkipReason = "empty_draft"

	// SkipValidationFailed marks a candidate that exhausted its generation
	// attempts without a passing draft.
	SkipValidationFailed SkipReason = "validation_failed"

	// SkipCallFailed marks a candidate lost to a fatal-for-this-candidate
	// upstream call error.
	SkipCallFailed SkipReason = "call_failed"
)

// RunStatus is the overall outcome of a pipeline run.
type RunStatus string

const (
	RunStarted        RunStatus = "started"
	RunSuccess        RunStatus = "success"
	RunCompletedEmpty RunStatus = "completed_empty"
	RunFailed         RunStatus = "failed"
)

// CandidateOutcome records the terminal result for one candidate.
type CandidateOutcome struct {
	// CandidateID identifies the candidate.
	CandidateID string `json:"candidate_id" yaml:"candidate_id"`

	// Title is the candidate headline, kept for readable reports.
	Title string `json:"title" yaml:"title"`

	// State is the terminal state: approved or skipped.
	State CandidateState `json:"state" yaml:"state"`

	// SkipReason explains a skip. Empty for approved candidates.
	SkipReason SkipReason `json:"skip_reason,omitempty" yaml:"skip_reason,omitempty"`

	// Attempts is the number of generation attempts consumed.
	Attempts int `json:"attempts" yaml:"attempts"`

	// Error carries the last error message for failed candidates.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunReport is the machine-readable run summary the pipeline emits for the
// surrounding tooling. It is written incrementally so a fatal abort still
// reports which candidates had already reached Approved.
type RunReport struct {
	// Timestamp is when the run started.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Status is the overall run outcome.
	Status RunStatus `json:"status" yaml:"status"`

	// Seeded is the number of candidates received from the scout.
	Seeded int `json:"seeded" yaml:"seeded"`

	// Approved is the number of candidates that produced briefing items.
	Approved int `json:"approved" yaml:"approved"`

	// Skipped is the number of candidates that left without approval.
	Skipped int `json:"skipped" yaml:"skipped"`

	// SkipsByReason counts skips per reason.
	SkipsByReason map[SkipReason]int `json:"skips_by_reason,omitempty" yaml:"skips_by_reason,omitempty"`

	// Outcomes lists the per-candidate terminal results.
	Outcomes []CandidateOutcome `json:"outcomes" yaml:"outcomes"`

	// Error carries the fatal error message when Status is failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
