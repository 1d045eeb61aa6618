package classify

import (
	"context"
	"strings"

	"InboxScheduler/internal/domain"
)

// KeywordHeuristic is the default terminal strategy: a weighted keyword score
// over strong task terms minus noise terms. It never passes.
type KeywordHeuristic struct {
	strongTerms []string
	noiseTerms  []string
}

var _ Strategy = (*KeywordHeuristic)(nil)

// NewKeywordHeuristic wires the strong/noise vocabularies.
func NewKeywordHeuristic(strongTerms, noiseTerms []string) *KeywordHeuristic {
	return &KeywordHeuristic{
		strongTerms: lowerAll(strongTerms),
		noiseTerms:  lowerAll(noiseTerms),
	}
}

// Name identifies the stage in logs and audit entries.
func (k *KeywordHeuristic) Name() string {
	return "keyword_heuristic"
}

// Classify accepts when the keyword score reaches 1. Each present term
// counts once regardless of repetition.
func (k *KeywordHeuristic) Classify(_ context.Context, in Input) Decision {
	lowered := strings.ToLower(in.Text)
	score := countPresent(lowered, k.strongTerms) - countPresent(lowered, k.noiseTerms)
	confidence := clamp(0.5+0.12*float64(score), 0.05, 0.95)

	if score >= 1 {
		return accept("keyword_score", confidence)
	}
	return reject(domain.ReasonNoIntent, confidence)
}

func countPresent(text string, terms []string) int {
	count := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			count++
		}
	}
	return count
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
