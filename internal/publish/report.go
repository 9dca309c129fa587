// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

// ReportFile writes run report snapshots to a JSON file. Each write
// replaces the previous snapshot, so the file always reflects the run's
// latest known state even after a crash.
type ReportFile struct {
	Path string
}

// Write marshals and persists one report snapshot. Written via a temp
// file and rename so a reader never sees a torn report.
func (r *ReportFile) Write(report types.RunReport) error {
	if err := os.MkdirAll(filepath.Dir(r.Path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run report: %w", err)
	}

	tmp := r.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing run report: %w", err)
	}
	if err := os.Rename(tmp, r.Path); err != nil {
		return fmt.Errorf("replacing run report: %w", err)
	}
	return nil
}
