// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// MarketSnapshot is a point-in-time quote for an allowlisted ticker.
// Produced by a timeout-bounded probe; absence is a valid non-error state.
type MarketSnapshot struct {
	// Ticker is the exchange symbol (e.g. "NVDA").
	Ticker string `json:"ticker" yaml:"ticker"`

	// Price is the last traded price.
	Price float64 `json:"price" yaml:"price"`

	// ChangePct is the percentage change against the previous close.
	ChangePct float64 `json:"change_pct" yaml:"change_pct"`

	// FetchedAt is when the probe returned the quote.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}
