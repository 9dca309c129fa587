// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Draft is one generation attempt's output for a candidate: ordered bullet
// strings, each expected (but not trusted) to end with a markdown citation.
// Transient — superseded by a fresh Draft on every retry.
type Draft struct {
	// CandidateID links the draft to its candidate.
	CandidateID string `json:"candidate_id" yaml:"candidate_id"`

	// Bullets holds the generated bullet-point prose in order.
	Bullets []string `json:"bullets" yaml:"bullets"`
}

// BulletVerdict records the critic's decision for a single bullet.
type BulletVerdict struct {
	// Index is the bullet's position within the draft.
	Index int `json:"index" yaml:"index"`

	// Pass reports whether the bullet's citation checked out.
	Pass bool `json:"pass" yaml:"pass"`

	// CitedURL is the normalized URL the critic extracted, empty when no
	// citation token was found.
	CitedURL string `json:"cited_url,omitempty" yaml:"cited_url,omitempty"`

	// Reason explains a failure. Empty on pass.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// ValidationResult is the critic's verdict for one draft against one
// evidence set. Derived purely from the two inputs; no identity beyond
// a single validation call.
type ValidationResult struct {
	// OverallPass is true only when the draft has at least one bullet and
	// every bullet passed.
	OverallPass bool `json:"overall_pass" yaml:"overall_pass"`

	// Bullets holds the per-bullet verdicts in draft order.
	Bullets []BulletVerdict `json:"bullets" yaml:"bullets"`

	// FirstFailure is the first failing bullet's reason, empty on pass.
	FirstFailure string `json:"first_failure,omitempty" yaml:"first_failure,omitempty"`
}

// ApprovedBriefingItem is the terminal artifact of the core: a draft whose
// every bullet was verified against its own evidence set.
type ApprovedBriefingItem struct {
	// Title is the candidate headline.
	Title string `json:"title" yaml:"title"`

	// SourceURL is the primary citation URL for the story heading.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// SeedURL is the normalized URL the candidate arrived with.
	SeedURL string `json:"seed_url" yaml:"seed_url"`

	// Bullets is the approved bullet prose.
	Bullets []string `json:"bullets" yaml:"bullets"`

	// Market is the optional market suffix for the story heading
	// (e.g. " (NVDA: $512.10 +1.3%)"). Empty when no snapshot applies.
	Market string `json:"market,omitempty" yaml:"market,omitempty"`

	// Attempts is how many generation attempts the item took.
	Attempts int `json:"attempts" yaml:"attempts"`
}
