// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

// briefingPromptTmpl instructs the model to summarize one story as cited
// bullets. The citation rules here are advisory; the validator enforces
// them after the fact. The seed URL is scheme-redacted so the model
// cannot copy it verbatim into a citation unless it also appeared in the
// admissible list.
var briefingPromptTmpl = template.Must(template.New("briefing").Parse(`You are a strict financial analyst.
STORY: {{.Title}}
CONTEXT:
{{range .Excerpts}}- {{.Text}} (Source: {{.URL}})
{{end}}
SEED URL (Reference Only): {{.SeedRedacted}}
PRIMARY CITATION TARGET: {{.PrimaryURL}}

TASK: Write 2-3 bullet points summarizing the story.

CRITICAL RULES:
1. Return ONLY a valid JSON object.
2. Every bullet MUST end with the citation format: [Source Name](URL)
3. DO NOT add a trailing period after the citation.
4. Use URLs from this list ONLY: {{.AllowedJSON}}
5. If context is insufficient, return "bullets": []

OUTPUT SCHEMA: {"bullets": ["Bullet text [Source](URL)", "Another bullet [Source](URL)"]}`))

// promptData is the template context for one generation attempt.
type promptData struct {
	Title        string
	Excerpts     []types.Excerpt
	SeedRedacted string
	PrimaryURL   string
	AllowedJSON  string
}

// renderPrompt builds the generation prompt for a candidate and its
// evidence set.
func renderPrompt(cand types.Candidate, es types.EvidenceSet) (string, error) {
	allowed, err := json.Marshal(es.AllowedURLs)
	if err != nil {
		return "", fmt.Errorf("marshaling allowed URLs: %w", err)
	}

	var buf bytes.Buffer
	err = briefingPromptTmpl.Execute(&buf, promptData{
		Title:        cand.Title,
		Excerpts:     es.Excerpts,
		SeedRedacted: redactScheme(cand.URL),
		PrimaryURL:   es.PrimaryURL,
		AllowedJSON:  string(allowed),
	})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

// redactScheme defangs a URL so it reads as a reference, not a link.
func redactScheme(u string) string {
	u = strings.Replace(u, "https://", "hxxps://", 1)
	return strings.Replace(u, "http://", "hxxp://", 1)
}
