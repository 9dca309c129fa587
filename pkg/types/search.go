// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SearchResult is one web search hit: a source URL, an excerpt of its
// content, and the provider's relevance estimate.
type SearchResult struct {
	// URL is the result link as returned by the provider.
	URL string `json:"url" yaml:"url"`

	// Title is the result page title.
	Title string `json:"title" yaml:"title"`

	// Content is the provider's excerpt of the page.
	Content string `json:"content" yaml:"content"`

	// Relevance is the provider-reported score in [0,1]. Zero when the
	// provider does not rank results.
	Relevance float64 `json:"relevance" yaml:"relevance"`
}
