// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HeroicSpider/ai-news-analyst/internal/rank"
	"github.com/HeroicSpider/ai-news-analyst/internal/scout"
)

var scoutCmd = &cobra.Command{
	Use:   "scout",
	Short: "Preview ranked candidates without running the pipeline",
	Long: `Scout fetches candidates from the configured source, scores them by
hotness, and prints the ranking. No search, generation, or publishing
happens; use it to sanity-check a source before a full run.`,
	RunE: runScout,
}

func init() {
	scoutCmd.Flags().String("source", "", "news source preset or raw RSS URL")
	scoutCmd.Flags().Int("scan-depth", 0, "how far down the source listing to look")

	rootCmd.AddCommand(scoutCmd)
}

func runScout(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("source") {
		cfg.Scout.Source, _ = cmd.Flags().GetString("source")
	}
	if cmd.Flags().Changed("scan-depth") {
		cfg.Scout.ScanDepth, _ = cmd.Flags().GetInt("scan-depth")
	}

	client := &http.Client{Timeout: cfg.Scout.Timeout}
	src := scout.Resolve(cfg.Scout.Source, client, log)

	candidates, err := src.Fetch(cmd.Context(), cfg.Scout)
	if err != nil {
		return fmt.Errorf("fetching candidates from %s: %w", src.Name(), err)
	}

	ranked := rank.Rank(candidates)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tRANK\tAGE(H)\tTITLE\tURL")
	for _, sc := range ranked.Scored {
		fmt.Fprintf(w, "%.4f\t%d\t%.1f\t%s\t%s\n", sc.Score, sc.Rank, sc.AgeHours, sc.Title, sc.URL)
	}
	w.Flush()

	if len(ranked.Rejected) > 0 {
		fmt.Fprintf(os.Stderr, "%d candidate(s) rejected for invalid rank\n", len(ranked.Rejected))
	}
	return nil
}
