// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

// SaveSnapshot writes one YAML snapshot of the evidence set for offline
// inspection. Returns the written path.
func SaveSnapshot(dir string, es types.EvidenceSet) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating snapshot directory: %w", err)
	}

	data, err := yaml.Marshal(es)
	if err != nil {
		return "", fmt.Errorf("marshaling evidence set: %w", err)
	}

	path := filepath.Join(dir, es.CandidateID+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return path, nil
}
