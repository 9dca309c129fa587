// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Excerpt is one retrieved snippet of source text attributed to a URL.
type Excerpt struct {
	// URL is the normalized source URL for the snippet.
	URL string `json:"url" yaml:"url"`

	// Text is the snippet content, whitespace-flattened and truncated
	// to the per-excerpt budget.
	Text string `json:"text" yaml:"text"`

	// Relevance is the source-reported relevance in [0,1], or a
	// position-derived value when the provider reports none.
	Relevance float64 `json:"relevance" yaml:"relevance"`
}

// EvidenceSet is the bounded, immutable evidence window for one candidate:
// the retrieved excerpts plus the set of URLs a draft is allowed to cite.
// Built once per candidate per run; consumed, never mutated.
type EvidenceSet struct {
	// CandidateID links back to the scored candidate.
	CandidateID string `json:"candidate_id" yaml:"candidate_id"`

	// PrimaryURL is the citation the generator is instructed to prefer.
	PrimaryURL string `json:"primary_url" yaml:"primary_url"`

	// Excerpts holds the retrieved (url, text) pairs in retrieval order.
	Excerpts []Excerpt `json:"excerpts" yaml:"excerpts"`

	// AllowedURLs is the normalized admissible citation set, in first-seen
	// order. Membership here is what the critic checks.
	AllowedURLs []string `json:"allowed_urls" yaml:"allowed_urls"`
}

// IsEmpty reports whether the set carries no usable evidence.
func (e EvidenceSet) IsEmpty() bool {
	return len(e.Excerpts) == 0 || len(e.AllowedURLs) == 0
}
