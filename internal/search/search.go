// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries a web search provider for evidence excerpts.
// Providers implement a single interface per the Strategy pattern so the
// context builder and tests can swap implementations.
package search

import (
	"context"

	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

// Provider searches the web for a query string. Implementations make
// exactly one upstream exchange per call; timeout bounding and retry
// policy belong to the caller.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.SearchResult, error)
}
