// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package critic is the deterministic citation gate: it checks every
// bullet of a draft against the candidate's admissible URL set. Pure
// string work, no network, so the same draft and evidence always yield
// the same verdict.
package critic

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/HeroicSpider/ai-news-analyst/internal/urlnorm"
	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

// Failure reasons carried in BulletVerdict.Reason.
const (
	ReasonEmptyDraft    = "draft has no bullets"
	ReasonNoCitation    = "bullet has no citation"
	ReasonNotAdmissible = "citation URL not in admissible set"
	ReasonTrailingProse = "prose after the citation"
	ReasonHallucinated  = "body URL not in admissible set"
)

// trailingJunk is what may follow a citation without counting as prose.
const trailingJunk = ".,;:!?'\"* \t"

// urlPattern matches bare URLs in prose for the hallucination check.
var urlPattern = regexp.MustCompile(`https?://[^ \s\]\[")>]+`)

// Validate checks a draft against the evidence set it was generated
// from. OverallPass requires at least one bullet and every bullet
// passing; an empty draft fails closed.
func Validate(draft types.Draft, es types.EvidenceSet) types.ValidationResult {
	allowed := make(map[string]bool, len(es.AllowedURLs))
	for _, u := range es.AllowedURLs {
		allowed[urlnorm.Normalize(u)] = true
	}

	if len(draft.Bullets) == 0 {
		return types.ValidationResult{FirstFailure: ReasonEmptyDraft}
	}

	res := types.ValidationResult{OverallPass: true}
	for i, bullet := range draft.Bullets {
		v := checkBullet(i, bullet, allowed)
		res.Bullets = append(res.Bullets, v)
		if !v.Pass {
			res.OverallPass = false
			if res.FirstFailure == "" {
				res.FirstFailure = v.Reason
			}
		}
	}
	return res
}

func checkBullet(index int, bullet string, allowed map[string]bool) types.BulletVerdict {
	v := types.BulletVerdict{Index: index}

	rawURL, end, ok := lastCitation(bullet)
	if !ok {
		v.Reason = ReasonNoCitation
		return v
	}
	v.CitedURL = urlnorm.Normalize(rawURL)

	if rest := strings.TrimRight(bullet[end:], trailingJunk); rest != "" {
		v.Reason = ReasonTrailingProse
		return v
	}
	if !allowed[v.CitedURL] {
		v.Reason = fmt.Sprintf("%s: %s", ReasonNotAdmissible, v.CitedURL)
		return v
	}

	// Every other URL in the bullet body must also be admissible. The
	// prose extractor stops at a parenthesis the tokenizer balances, so
	// a prefix of the cited URL is the citation itself, not a body URL.
	for _, u := range ExtractURLs(bullet) {
		if strings.HasPrefix(v.CitedURL, u) {
			continue
		}
		if !allowed[u] {
			v.Reason = fmt.Sprintf("%s: %s", ReasonHallucinated, u)
			return v
		}
	}

	v.Pass = true
	return v
}

// lastCitation tokenizes the last markdown-link citation in a bullet:
// a bracketed label immediately followed by a parenthesized URL. The
// URL is matched strictly (no whitespace, parentheses balanced, so wiki
// style URLs survive); end is the offset just past the closing
// parenthesis.
func lastCitation(bullet string) (url string, end int, ok bool) {
	for j := strings.LastIndex(bullet, "]("); j >= 0; j = strings.LastIndex(bullet[:j], "](") {
		labelStart := strings.LastIndexByte(bullet[:j], '[')
		if labelStart < 0 {
			continue
		}

		// Scan forward from the opening parenthesis, balancing nested
		// parentheses inside the URL.
		depth := 1
		closeIdx := -1
		for k := j + 2; k < len(bullet); k++ {
			switch bullet[k] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					closeIdx = k
				}
			case ' ', '\t', '\n':
				k = len(bullet)
			}
			if closeIdx >= 0 {
				break
			}
		}
		if closeIdx < 0 {
			continue
		}

		candidate := bullet[j+2 : closeIdx]
		if candidate == "" || !strings.HasPrefix(candidate, "http") {
			continue
		}
		return candidate, closeIdx + 1, true
	}
	return "", 0, false
}

// ExtractURLs finds every URL in the text, cleans wrapper characters,
// and returns the normalized forms in order of appearance.
func ExtractURLs(text string) []string {
	var urls []string
	for _, m := range urlPattern.FindAllString(text, -1) {
		norm := urlnorm.Normalize(urlnorm.CleanRaw(m))
		if norm != "" {
			urls = append(urls, norm)
		}
	}
	return urls
}
