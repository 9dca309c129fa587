// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// quoteEndpoint is the chart API queried by the probe subcommand.
// Package-level var for test substitution.
var quoteEndpoint = "https://query1.finance.yahoo.com/v8/finance/chart/%s?range=1d&interval=1d"

// chartResponse is the subset of the chart API response the probe reads.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// FetchQuote retrieves the current price and previous close for one
// ticker. It runs inside the probe child process, so hanging here costs
// nothing: the parent kills the process at the deadline.
func FetchQuote(ctx context.Context, client *http.Client, ticker string) (Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(quoteEndpoint, ticker), nil)
	if err != nil {
		return Quote{}, fmt.Errorf("creating quote request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("fetching quote for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("quote API returned HTTP %d for %s", resp.StatusCode, ticker)
	}

	var cr chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Quote{}, fmt.Errorf("parsing quote response: %w", err)
	}
	if len(cr.Chart.Result) == 0 {
		return Quote{}, fmt.Errorf("no quote data for %s", ticker)
	}

	meta := cr.Chart.Result[0].Meta
	return Quote{
		Ticker:        ticker,
		Price:         meta.RegularMarketPrice,
		PreviousClose: meta.ChartPreviousClose,
	}, nil
}
