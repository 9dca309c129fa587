// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish renders approved briefing items to markdown, writes
// the machine-readable run report, and keeps a queryable history of
// past runs.
package publish

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

// RenderBriefing produces the daily briefing markdown: YAML frontmatter
// for static-site pipelines, then one section per story with its cited
// bullets. Story headings link to the primary source and carry the
// optional market suffix.
func RenderBriefing(date time.Time, items []types.ApprovedBriefingItem) string {
	dateStr := date.Format("2006-01-02")

	var b strings.Builder
	fmt.Fprintf(&b, `---
title: "Daily Briefing: %s"
pubDate: "%s"
description: "AI-curated analysis of %d tech stories."
tags: ["tech", "ai"]
---
# ☕ Daily Tech Briefing
`, dateStr, dateStr, len(items))

	for _, item := range items {
		fmt.Fprintf(&b, "## [%s](%s)%s\n", item.Title, item.SourceURL, item.Market)
		for _, bullet := range item.Bullets {
			fmt.Fprintf(&b, "* %s\n", bullet)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// WriteBriefing renders and writes the briefing as OutputDir/YYYY-MM-DD.md.
// Returns the written path.
func WriteBriefing(outputDir string, date time.Time, items []types.ApprovedBriefingItem) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(outputDir, date.Format("2006-01-02")+".md")
	if err := os.WriteFile(path, []byte(RenderBriefing(date, items)), 0o644); err != nil {
		return "", fmt.Errorf("writing briefing %s: %w", path, err)
	}
	return path, nil
}
