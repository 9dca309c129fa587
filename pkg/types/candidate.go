// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the news-analyst pipeline.
package types

import "time"

// Candidate is a raw headline item supplied by a scout source. Immutable
// once scored.
type Candidate struct {
	// ID is a stable slug for this candidate within a run.
	ID string `json:"id" yaml:"id"`

	// Title is the headline text as reported by the source.
	Title string `json:"title" yaml:"title"`

	// URL is the story link reported by the source.
	URL string `json:"url" yaml:"url"`

	// Rank is the 1-based position the source reported the item at.
	// A rank of zero or less marks bad source data; the scorer rejects it.
	Rank int `json:"rank" yaml:"rank"`

	// AgeHours is the item age in hours at fetch time. Never negative.
	AgeHours float64 `json:"age_hours" yaml:"age_hours"`

	// SourceName identifies which scout source produced the candidate
	// (e.g. "hackernews", "techcrunch").
	SourceName string `json:"source_name" yaml:"source_name"`

	// FetchedAt is when the scout fetched the item.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// ScoredCandidate pairs a Candidate with its hotness score. Ordering is
// total: by score descending, ties broken by source rank ascending.
type ScoredCandidate struct {
	Candidate `yaml:",inline"`

	// Score is the recency-decayed hotness value.
	Score float64 `json:"score" yaml:"score"`
}
