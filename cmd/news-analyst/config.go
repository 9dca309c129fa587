// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/HeroicSpider/ai-news-analyst/internal/market"
	"github.com/HeroicSpider/ai-news-analyst/internal/secrets"
	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

const defaultUserAgent = "news-analyst/0.1"

// validate checks assembled configuration before any network work.
var validate = validator.New()

func init() {
	viper.SetDefault("scout.source", "hackernews")
	viper.SetDefault("scout.limit", 3)
	viper.SetDefault("scout.scan_depth", 30)
	viper.SetDefault("scout.timeout", 10*time.Second)

	viper.SetDefault("search.timeout", 3*time.Second)
	viper.SetDefault("search.max_results", 3)
	viper.SetDefault("search.max_retries", 2)

	viper.SetDefault("evidence.char_budget", 1800)
	viper.SetDefault("evidence.excerpt_budget", 600)
	viper.SetDefault("evidence.min_content_length", 300)
	viper.SetDefault("evidence.primary", string(types.PrimarySeedFirst))
	viper.SetDefault("evidence.snapshot_dir", "")

	viper.SetDefault("generation.model", "gemini-2.0-flash")
	viper.SetDefault("generation.max_attempts", 3)
	viper.SetDefault("generation.timeout", 45*time.Second)

	viper.SetDefault("market.enabled", true)
	viper.SetDefault("market.timeout", 5*time.Second)

	viper.SetDefault("publish.output_dir", "briefings")
	viper.SetDefault("publish.report_path", "run_report.json")
	viper.SetDefault("publish.history_dir", "history")

	viper.SetDefault("top_k", 3)
	viper.SetDefault("workers", 2)
}

// buildConfig assembles the pipeline configuration from config file,
// environment, and defaults, then resolves API keys from secrets.
func buildConfig() (types.PipelineConfig, error) {
	cfg := types.PipelineConfig{
		Scout: types.ScoutConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("scout.timeout"),
				UserAgent: defaultUserAgent,
			},
			Source:    viper.GetString("scout.source"),
			Limit:     viper.GetInt("scout.limit"),
			ScanDepth: viper.GetInt("scout.scan_depth"),
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: defaultUserAgent,
			},
			APIKey:     secrets.Resolve(loadedSecrets, "tavily-api-key"),
			MaxResults: viper.GetInt("search.max_results"),
			MaxRetries: viper.GetInt("search.max_retries"),
		},
		Evidence: types.EvidenceConfig{
			CharBudget:       viper.GetInt("evidence.char_budget"),
			ExcerptBudget:    viper.GetInt("evidence.excerpt_budget"),
			MinContentLength: viper.GetInt("evidence.min_content_length"),
			Primary:          types.PrimaryPolicy(viper.GetString("evidence.primary")),
			SnapshotDir:      viper.GetString("evidence.snapshot_dir"),
		},
		Generation: types.GenerationConfig{
			AIConfig: types.AIConfig{
				Model:  viper.GetString("generation.model"),
				APIKey: secrets.Resolve(loadedSecrets, "gemini-api-key"),
			},
			MaxAttempts: viper.GetInt("generation.max_attempts"),
			Timeout:     viper.GetDuration("generation.timeout"),
		},
		Market: types.MarketConfig{
			Enabled:   viper.GetBool("market.enabled"),
			Timeout:   viper.GetDuration("market.timeout"),
			Allowlist: viper.GetStringMapString("market.allowlist"),
		},
		Publish: types.PublishConfig{
			OutputDir:  viper.GetString("publish.output_dir"),
			ReportPath: viper.GetString("publish.report_path"),
			HistoryDir: viper.GetString("publish.history_dir"),
		},
		TopK:    viper.GetInt("top_k"),
		Workers: viper.GetInt("workers"),
	}

	if len(cfg.Market.Allowlist) == 0 {
		cfg.Market.Allowlist = market.DefaultAllowlist
	}

	if err := validate.Struct(cfg); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
