// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/HeroicSpider/ai-news-analyst/internal/evidence"
	"github.com/HeroicSpider/ai-news-analyst/internal/generate"
	"github.com/HeroicSpider/ai-news-analyst/internal/market"
	"github.com/HeroicSpider/ai-news-analyst/internal/pipeline"
	"github.com/HeroicSpider/ai-news-analyst/internal/publish"
	"github.com/HeroicSpider/ai-news-analyst/internal/scout"
	"github.com/HeroicSpider/ai-news-analyst/internal/search"
	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full briefing pipeline",
	Long: `Run scouts candidates, scores them by hotness, builds evidence for the
top stories, and loops draft generation against the citation validator.
Approved stories are published as a dated markdown briefing; every run
writes a machine-readable report and is recorded in the run history.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().String("source", "", "news source preset (hackernews, techcrunch, theverge, wired, nytimes, wsj) or raw RSS URL")
	runCmd.Flags().Int("top-k", 0, "number of scored candidates to enrich")
	runCmd.Flags().Int("workers", 0, "concurrent candidate workers")
	runCmd.Flags().Int("max-attempts", 0, "generation attempts per candidate")
	runCmd.Flags().String("save-evidence", "", "directory for per-candidate evidence YAML snapshots")
	runCmd.Flags().Bool("no-market", false, "disable market snapshots")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("source") {
		cfg.Scout.Source, _ = cmd.Flags().GetString("source")
	}
	if cmd.Flags().Changed("top-k") {
		cfg.TopK, _ = cmd.Flags().GetInt("top-k")
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("max-attempts") {
		cfg.Generation.MaxAttempts, _ = cmd.Flags().GetInt("max-attempts")
	}
	if cmd.Flags().Changed("save-evidence") {
		cfg.Evidence.SnapshotDir, _ = cmd.Flags().GetString("save-evidence")
	}
	if noMarket, _ := cmd.Flags().GetBool("no-market"); noMarket {
		cfg.Market.Enabled = false
	}

	if cfg.Generation.APIKey == "" {
		return fmt.Errorf("missing Gemini API key: set GEMINI_API_KEY or .secrets/gemini-api-key")
	}
	if cfg.Search.APIKey == "" {
		return fmt.Errorf("missing Tavily API key: set TAVILY_API_KEY or .secrets/tavily-api-key")
	}

	ctx := cmd.Context()

	backend, err := generate.NewGeminiBackend(ctx, cfg.Generation.AIConfig)
	if err != nil {
		return err
	}
	defer backend.Close()

	client := &http.Client{Timeout: cfg.Scout.Timeout}
	bin, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving own binary for market probe: %w", err)
	}

	p := &pipeline.Pipeline{
		Scout: scout.Resolve(cfg.Scout.Source, client, log),
		Builder: &evidence.Builder{
			Provider: &search.TavilyProvider{Client: &http.Client{Timeout: cfg.Search.Timeout}},
			Search:   cfg.Search,
			Config:   cfg.Evidence,
			Log:      log,
		},
		Backend: backend,
		Market:  market.NewSnapshotter(bin, cfg.Market, log),
		Sink:    &publish.ReportFile{Path: cfg.Publish.ReportPath},
		Config:  cfg,
		Log:     log,
	}

	result, err := p.Run(ctx)
	if err != nil {
		return err
	}

	recordHistory(cfg.Publish.HistoryDir, result.Report)

	if len(result.Items) == 0 {
		log.Warn("no stories approved, briefing not written")
		return nil
	}

	path, err := publish.WriteBriefing(cfg.Publish.OutputDir, time.Now(), result.Items)
	if err != nil {
		return err
	}
	log.WithField("path", path).Info("briefing published")
	return nil
}

// recordHistory best-effort persists the run; a history failure never
// fails a run that already produced its briefing and report.
func recordHistory(historyDir string, report types.RunReport) {
	h, err := publish.OpenHistory(historyDir)
	if err != nil {
		log.WithError(err).Warn("run history unavailable")
		return
	}
	defer h.Close()

	if _, err := h.RecordRun(context.Background(), report); err != nil {
		log.WithError(err).Warn("run not recorded in history")
	}
}
