// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

// mockBackend returns canned responses or an error.
type mockBackend struct {
	response string
	err      error
	delay    time.Duration

	gotPrompt string
}

func (m *mockBackend) Generate(ctx context.Context, prompt string) (string, error) {
	m.gotPrompt = prompt
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.response, m.err
}

func testCandidate() types.Candidate {
	return types.Candidate{
		ID:    "cand-1",
		Title: "Nvidia announces new chip",
		URL:   "https://example.com/nvidia-chip",
	}
}

func testEvidence() types.EvidenceSet {
	return types.EvidenceSet{
		CandidateID: "cand-1",
		PrimaryURL:  "https://example.com/nvidia-chip",
		AllowedURLs: []string{"https://example.com/nvidia-chip", "https://other.test/coverage"},
		Excerpts: []types.Excerpt{
			{URL: "https://example.com/nvidia-chip", Text: "Nvidia unveiled a chip.", Relevance: 0.9},
		},
	}
}

func genCfg() types.GenerationConfig {
	return types.GenerationConfig{MaxAttempts: 3, Timeout: time.Second}
}

func TestGenerate(t *testing.T) {
	m := &mockBackend{response: `{"bullets": ["Nvidia shipped a chip [Example](https://example.com/nvidia-chip)", "Analysts approve [Other](https://other.test/coverage)"]}`}

	draft, err := Generate(context.Background(), m, testCandidate(), testEvidence(), genCfg())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.CandidateID != "cand-1" {
		t.Errorf("CandidateID = %q", draft.CandidateID)
	}
	if len(draft.Bullets) != 2 {
		t.Fatalf("len(Bullets) = %d, want 2", len(draft.Bullets))
	}
}

func TestGeneratePromptContents(t *testing.T) {
	m := &mockBackend{response: `{"bullets": []}`}

	if _, err := Generate(context.Background(), m, testCandidate(), testEvidence(), genCfg()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := m.gotPrompt
	for _, want := range []string{
		"STORY: Nvidia announces new chip",
		"Nvidia unveiled a chip. (Source: https://example.com/nvidia-chip)",
		"PRIMARY CITATION TARGET: https://example.com/nvidia-chip",
		`["https://example.com/nvidia-chip","https://other.test/coverage"]`,
		"hxxps://example.com/nvidia-chip",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\nprompt:\n%s", want, prompt)
		}
	}
	// The seed reference line must carry the defanged URL.
	if strings.Contains(prompt, "SEED URL (Reference Only): https://") {
		t.Error("seed reference line leaks a live URL")
	}
}

func TestGenerateEmptyBulletsIsValid(t *testing.T) {
	m := &mockBackend{response: `{"bullets": []}`}

	draft, err := Generate(context.Background(), m, testCandidate(), testEvidence(), genCfg())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(draft.Bullets) != 0 {
		t.Errorf("Bullets = %v, want empty", draft.Bullets)
	}
}

func TestGenerateBulletCountOutOfShape(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"one bullet", `{"bullets": ["only one [S](https://example.com/nvidia-chip)"]}`},
		{"four bullets", `{"bullets": ["a", "b", "c", "d"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockBackend{response: tt.response}
			_, err := Generate(context.Background(), m, testCandidate(), testEvidence(), genCfg())
			if !errors.Is(err, ErrBulletCount) {
				t.Errorf("err = %v, want ErrBulletCount", err)
			}
		})
	}
}

func TestGenerateBackendError(t *testing.T) {
	m := &mockBackend{err: errors.New("quota exceeded")}
	if _, err := Generate(context.Background(), m, testCandidate(), testEvidence(), genCfg()); err == nil {
		t.Fatal("expected error from backend failure")
	}
}

func TestGenerateTimeout(t *testing.T) {
	m := &mockBackend{delay: 200 * time.Millisecond, response: `{"bullets": []}`}
	cfg := genCfg()
	cfg.Timeout = 10 * time.Millisecond

	_, err := Generate(context.Background(), m, testCandidate(), testEvidence(), cfg)
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("err = %v, want timeout", err)
	}
}

func TestGenerateMalformedJSON(t *testing.T) {
	m := &mockBackend{response: "I could not produce JSON today."}
	if _, err := Generate(context.Background(), m, testCandidate(), testEvidence(), genCfg()); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"bullets": []}`, `{"bullets": []}`, true},
		{"fenced json", "```json\n{\"bullets\": []}\n```", `{"bullets": []}`, true},
		{"fenced no lang", "```\n{\"a\": 1}\n```", `{"a": 1}`, true},
		{"prose around object", `Here you go: {"a": 1} hope that helps`, `{"a": 1}`, true},
		{"array payload", `the list: [1, 2, 3]`, `[1, 2, 3]`, true},
		{"whitespace padding", "  \n {\"a\": 1} \n", `{"a": 1}`, true},
		{"no json", "nothing here", "", false},
		{"broken json", `{"a": `, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONBlock(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ExtractJSONBlock(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRedactScheme(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/a", "hxxps://example.com/a"},
		{"http://example.com/a", "hxxp://example.com/a"},
		{"ftp://example.com/a", "ftp://example.com/a"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := redactScheme(tt.in); got != tt.want {
			t.Errorf("redactScheme(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
