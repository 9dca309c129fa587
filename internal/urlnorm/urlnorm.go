// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package urlnorm canonicalizes URLs so that citation membership checks and
// evidence deduplication compare like with like. The same normalization is
// applied when building an evidence set and when validating a draft, so a
// citation can only differ from its evidence entry by tracking noise.
package urlnorm

import (
	"net/url"
	"strings"
)

// strippedParams lists query parameters removed during normalization.
// utm_* parameters are matched by prefix.
var strippedParams = map[string]bool{
	"ref":    true,
	"source": true,
}

// Normalize canonicalizes a URL: percent-decoding, https for http scheme,
// lowercased host, tracking query parameters removed, a single trailing
// slash stripped from non-root paths, and the fragment dropped. Inputs that
// do not parse are returned unchanged; an empty input stays empty.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	if dec, err := url.QueryUnescape(raw); err == nil {
		raw = dec
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme == "http" {
		scheme = "https"
	}
	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for key := range q {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "utm_") || strippedParams[lower] {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()

	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String()
}

// CleanRaw trims the wrapper characters a URL picks up when extracted from
// prose or markdown: leading angle brackets, trailing punctuation, and the
// label half of a markdown link. Unbalanced closing parentheses are trimmed
// so that "(see https://x.test/a)" yields "https://x.test/a".
func CleanRaw(raw string) string {
	if i := strings.Index(raw, "]("); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimLeft(raw, "<")
	raw = strings.TrimRight(raw, ".,]\"'> ")
	for strings.HasSuffix(raw, ")") && strings.Count(raw, ")") > strings.Count(raw, "(") {
		raw = raw[:len(raw)-1]
	}
	return raw
}
