// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "news-analyst/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ScoutConfig holds settings for candidate acquisition.
type ScoutConfig struct {
	HTTPConfig `yaml:",inline"`

	// Source is a preset name (hackernews, techcrunch, theverge, wired,
	// nytimes, wsj) or a raw RSS/Atom feed URL.
	Source string `json:"source" yaml:"source"`

	// Limit is the number of candidates the scout hands to the pipeline.
	Limit int `json:"limit" yaml:"limit" validate:"min=1,max=50"`

	// ScanDepth is how far down the Hacker News top-stories list to look
	// before scoring.
	ScanDepth int `json:"scan_depth" yaml:"scan_depth" validate:"min=1,max=500"`
}

// SearchConfig holds settings for the evidence retrieval stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the search service.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxResults is the number of results requested per query.
	MaxResults int `json:"max_results" yaml:"max_results" validate:"min=1,max=20"`

	// MaxRetries is the small fixed retry count for transient search
	// failures before the candidate is marked insufficient-context.
	MaxRetries int `json:"max_retries" yaml:"max_retries" validate:"min=0,max=5"`
}

// PrimaryPolicy selects how the context builder picks the primary citation
// URL when the seed URL is not in the admissible set.
type PrimaryPolicy string

const (
	// PrimarySeedFirst prefers the candidate's own URL when admissible,
	// then falls back to the first retrieved URL.
	PrimarySeedFirst PrimaryPolicy = "seed-first"

	// PrimaryFirstReturned always uses the first retrieved URL.
	PrimaryFirstReturned PrimaryPolicy = "first-returned"
)

// EvidenceConfig holds settings for the context builder.
type EvidenceConfig struct {
	// CharBudget bounds the aggregate excerpt text per candidate.
	CharBudget int `json:"char_budget" yaml:"char_budget" validate:"min=200"`

	// ExcerptBudget bounds a single excerpt's text.
	ExcerptBudget int `json:"excerpt_budget" yaml:"excerpt_budget" validate:"min=100"`

	// MinContentLength is the aggregate length below which a candidate is
	// marked insufficient-context.
	MinContentLength int `json:"min_content_length" yaml:"min_content_length" validate:"min=0"`

	// Primary selects the primary-URL tie-break policy.
	Primary PrimaryPolicy `json:"primary" yaml:"primary" validate:"oneof=seed-first first-returned"`

	// SnapshotDir, when set, receives one YAML evidence snapshot per
	// candidate for offline inspection.
	SnapshotDir string `json:"snapshot_dir,omitempty" yaml:"snapshot_dir,omitempty"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gemini-2.0-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// GenerationConfig holds settings for the draft generator and its retry bound.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`

	// MaxAttempts bounds generation attempts per candidate. Each attempt
	// is a fresh generate-then-validate cycle.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" validate:"min=1,max=10"`

	// Timeout is the generation-scale deadline for a single call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// MarketConfig holds settings for the optional market snapshot stage.
type MarketConfig struct {
	// Enabled turns market enrichment on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Timeout is the hard deadline for one quote probe. The probe process
	// is killed on expiry.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Allowlist maps company names to tickers. Only candidates whose title
	// mentions an allowlisted company get a snapshot.
	Allowlist map[string]string `json:"allowlist,omitempty" yaml:"allowlist,omitempty"`
}

// PublishConfig holds settings for briefing output and run observability.
type PublishConfig struct {
	// OutputDir receives the daily briefing markdown files.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// ReportPath is where the machine-readable run report JSON is written.
	ReportPath string `json:"report_path" yaml:"report_path"`

	// HistoryDir is the base directory for the run-history database.
	HistoryDir string `json:"history_dir" yaml:"history_dir"`
}

// PipelineConfig groups all stage configurations for one run.
type PipelineConfig struct {
	Scout      ScoutConfig      `json:"scout" yaml:"scout"`
	Search     SearchConfig     `json:"search" yaml:"search"`
	Evidence   EvidenceConfig   `json:"evidence" yaml:"evidence"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Market     MarketConfig     `json:"market" yaml:"market"`
	Publish    PublishConfig    `json:"publish" yaml:"publish"`

	// TopK bounds how many scored candidates proceed to enrichment.
	TopK int `json:"top_k" yaml:"top_k" validate:"min=1,max=20"`

	// Workers bounds the concurrent candidate workers. 1 means sequential.
	Workers int `json:"workers" yaml:"workers" validate:"min=1,max=16"`
}
