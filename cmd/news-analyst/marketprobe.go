// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/HeroicSpider/ai-news-analyst/internal/market"
)

// marketProbeCmd is the child-process half of the market snapshot
// stage. The pipeline re-invokes its own binary with this subcommand so
// the quote fetch can be killed at the deadline no matter where it
// hangs. Hidden: not part of the user-facing surface.
var marketProbeCmd = &cobra.Command{
	Use:    "market-probe [ticker]",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 30 * time.Second}
		quote, err := market.FetchQuote(cmd.Context(), client, args[0])
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(quote)
	},
}

func init() {
	rootCmd.AddCommand(marketProbeCmd)
}
