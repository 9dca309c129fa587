// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores raw candidates by recency-decayed hotness and selects
// the top slice that proceeds to enrichment.
package rank

import (
	"fmt"
	"math"
	"sort"

	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

// decayHours is the e-folding time of the age decay.
const decayHours = 24.0

// ErrInvalidRank reports a candidate whose source rank is zero or negative.
var ErrInvalidRank = fmt.Errorf("source rank must be >= 1")

// Score computes the hotness value for a 1-based source rank and an age in
// hours: (1/rank) * e^(-age/24). Negative ages are clamped to zero. A rank
// below 1 returns ErrInvalidRank; the caller treats that as a data-quality
// skip, not a failure.
func Score(rank int, ageHours float64) (float64, error) {
	if rank < 1 {
		return 0, ErrInvalidRank
	}
	if ageHours < 0 {
		ageHours = 0
	}
	return (1.0 / float64(rank)) * math.Exp(-ageHours/decayHours), nil
}

// RankOutput holds the ordered candidates and the count rejected for bad
// source data.
type RankOutput struct {
	Scored   []types.ScoredCandidate
	Rejected []types.Candidate
}

// Rank scores every candidate, drops those with invalid ranks, and returns
// the rest ordered by score descending with ties broken by source rank
// ascending. The ordering is total and deterministic for identical input.
func Rank(candidates []types.Candidate) RankOutput {
	var out RankOutput
	for _, c := range candidates {
		score, err := Score(c.Rank, c.AgeHours)
		if err != nil {
			out.Rejected = append(out.Rejected, c)
			continue
		}
		out.Scored = append(out.Scored, types.ScoredCandidate{Candidate: c, Score: score})
	}

	sort.SliceStable(out.Scored, func(i, j int) bool {
		if out.Scored[i].Score != out.Scored[j].Score {
			return out.Scored[i].Score > out.Scored[j].Score
		}
		return out.Scored[i].Rank < out.Scored[j].Rank
	})

	return out
}

// TopK returns the first k scored candidates, or all of them when fewer
// exist. k below 1 yields an empty slice.
func TopK(scored []types.ScoredCandidate, k int) []types.ScoredCandidate {
	if k < 1 {
		return nil
	}
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
