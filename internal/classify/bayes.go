package classify

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"

	"InboxScheduler/internal/domain"
)

// ErrInsufficientData signals that the audit history is too small to train
// the Bayes strategy; callers fall back to the heuristic chain.
var ErrInsufficientData = errors.New("not enough labeled examples to train")

// tokenExpr captures alphanumeric runs and Korean-syllable runs; everything
// else is a separator.
var tokenExpr = regexp.MustCompile(`[0-9A-Za-z]+|[가-힣]+`)

// Example is one labeled historical decision used for training.
type Example struct {
	Text     string
	Positive bool
}

// Tokenize lowercases and splits text into alphanumeric and Korean runs.
func Tokenize(text string) []string {
	return tokenExpr.FindAllString(strings.ToLower(text), -1)
}

// Trainable reports whether the examples contain at least minPerClass
// positive and minPerClass negative entries with non-empty token streams.
func Trainable(examples []Example, minPerClass int) bool {
	pos, neg := 0, 0
	for _, ex := range examples {
		if len(Tokenize(ex.Text)) == 0 {
			continue
		}
		if ex.Positive {
			pos++
		} else {
			neg++
		}
	}
	return pos >= minPerClass && neg >= minPerClass
}

// Bayes is a multinomial naive-Bayes terminal strategy trained from
// historical accept/skip outcomes. It never passes.
type Bayes struct {
	posTokens map[string]int
	negTokens map[string]int
	posTotal  int
	negTotal  int
	posDocs   int
	negDocs   int
	vocab     map[string]struct{}
	threshold float64
}

var _ Strategy = (*Bayes)(nil)

// TrainBayes fits Laplace-smoothed per-class token frequencies. It returns
// ErrInsufficientData below minPerClass usable examples per class.
func TrainBayes(examples []Example, minPerClass int, threshold float64) (*Bayes, error) {
	b := &Bayes{
		posTokens: map[string]int{},
		negTokens: map[string]int{},
		vocab:     map[string]struct{}{},
		threshold: threshold,
	}

	for _, ex := range examples {
		tokens := Tokenize(ex.Text)
		if len(tokens) == 0 {
			continue
		}
		if ex.Positive {
			b.posDocs++
		} else {
			b.negDocs++
		}
		for _, tok := range tokens {
			b.vocab[tok] = struct{}{}
			if ex.Positive {
				b.posTokens[tok]++
				b.posTotal++
			} else {
				b.negTokens[tok]++
				b.negTotal++
			}
		}
	}

	if b.posDocs < minPerClass || b.negDocs < minPerClass {
		return nil, ErrInsufficientData
	}
	return b, nil
}

// Name identifies the stage in logs and audit entries.
func (b *Bayes) Name() string {
	return "trained_bayes"
}

// Classify scores the text and accepts above the configured threshold.
func (b *Bayes) Classify(_ context.Context, in Input) Decision {
	p := b.Probability(in.Text)
	if p >= b.threshold {
		return accept("trained_probability", p)
	}
	return Decision{
		Verdict: VerdictReject,
		Result:  domain.ClassificationResult{Confidence: p, Reason: domain.ReasonNoIntent},
	}
}

// Probability returns P(schedule | text) via a clamped logistic transform of
// the class log-odds, which stays stable for long token streams.
func (b *Bayes) Probability(text string) float64 {
	tokens := Tokenize(text)

	total := float64(b.posDocs + b.negDocs)
	logOdds := math.Log(float64(b.posDocs)/total) - math.Log(float64(b.negDocs)/total)

	vocabSize := float64(len(b.vocab))
	for _, tok := range tokens {
		posP := (float64(b.posTokens[tok]) + 1) / (float64(b.posTotal) + vocabSize)
		negP := (float64(b.negTokens[tok]) + 1) / (float64(b.negTotal) + vocabSize)
		logOdds += math.Log(posP) - math.Log(negP)
	}

	if logOdds > 30 {
		logOdds = 30
	}
	if logOdds < -30 {
		logOdds = -30
	}
	return 1 / (1 + math.Exp(-logOdds))
}
