// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate drafts cited briefing bullets for a candidate from
// its evidence set. Backends implement a single interface per the
// Strategy pattern so tests can supply a mock; a Gemini implementation
// ships in-tree.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/HeroicSpider/ai-news-analyst/internal/deadline"
	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

// Backend abstracts the Generative AI API. Implementations return the
// raw model text for one prompt.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrBulletCount reports a draft whose bullet count is outside the
// accepted shape: zero bullets (insufficient context) or two to three.
var ErrBulletCount = errors.New("bullet count must be 0 or 2-3")

// bulletsPayload is the JSON object the model is asked to return.
type bulletsPayload struct {
	Bullets []string `json:"bullets"`
}

// Generate renders the prompt, calls the backend under the generation
// deadline, and parses the response into a Draft. An empty Bullets
// slice is a valid draft meaning the model judged the context
// insufficient; malformed JSON or an out-of-shape bullet count is an
// error so the caller can retry.
func Generate(ctx context.Context, backend Backend, cand types.Candidate, es types.EvidenceSet, cfg types.GenerationConfig) (types.Draft, error) {
	prompt, err := renderPrompt(cand, es)
	if err != nil {
		return types.Draft{}, err
	}

	out := deadline.Call(ctx, cfg.Timeout, func(ctx context.Context) (string, error) {
		return backend.Generate(ctx, prompt)
	})
	if out.Status == deadline.StatusTimeout {
		return types.Draft{}, fmt.Errorf("generation timed out for %s", cand.ID)
	}
	if out.Failed() {
		return types.Draft{}, fmt.Errorf("generation failed for %s: %w", cand.ID, out.Err)
	}

	block, ok := ExtractJSONBlock(out.Value)
	if !ok {
		return types.Draft{}, fmt.Errorf("no JSON object in model response for %s", cand.ID)
	}

	var payload bulletsPayload
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return types.Draft{}, fmt.Errorf("parsing model response for %s: %w", cand.ID, err)
	}
	if n := len(payload.Bullets); n == 1 || n > 3 {
		return types.Draft{}, fmt.Errorf("%w: got %d", ErrBulletCount, n)
	}

	return types.Draft{CandidateID: cand.ID, Bullets: payload.Bullets}, nil
}

var fencedBlockRe = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)\\s*```")

// ExtractJSONBlock finds the JSON payload in a model response that may
// wrap it in code fences or surrounding prose. It tries, in order: the
// whole trimmed text, the first fenced code block, the outermost object
// braces, the outermost array brackets.
func ExtractJSONBlock(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if json.Valid([]byte(text)) {
		return text, true
	}

	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		if candidate := strings.TrimSpace(m[1]); json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}

	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(text, pair[0])
		end := strings.LastIndex(text, pair[1])
		if start >= 0 && end > start {
			if candidate := text[start : end+1]; json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
	}
	return "", false
}
