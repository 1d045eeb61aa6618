package classify

import (
	"context"
	"strings"

	"InboxScheduler/internal/domain"
)

// HardExclude rejects unconditionally on known informational, marketing or
// notification patterns, bypassing every later stage. It never accepts.
type HardExclude struct {
	phrases     []string
	senders     []string
	checkSender bool
}

var _ Strategy = (*HardExclude)(nil)

// NewHardExclude wires the fixed phrase and sender tables.
func NewHardExclude(phrases, senders []string, checkSender bool) *HardExclude {
	return &HardExclude{
		phrases:     lowerAll(phrases),
		senders:     lowerAll(senders),
		checkSender: checkSender,
	}
}

// Name identifies the stage in logs and audit entries.
func (h *HardExclude) Name() string {
	return "hard_exclude"
}

// Classify rejects on any phrase match in the text, or, in the strict
// variant, any sender substring match; otherwise passes.
func (h *HardExclude) Classify(_ context.Context, in Input) Decision {
	lowered := strings.ToLower(in.Text)
	for _, phrase := range h.phrases {
		if strings.Contains(lowered, phrase) {
			return reject(domain.ReasonHardExclude, 0.9)
		}
	}

	if h.checkSender && in.From != "" {
		from := strings.ToLower(in.From)
		for _, sender := range h.senders {
			if strings.Contains(from, sender) {
				return reject(domain.ReasonHardExclude, 0.9)
			}
		}
	}

	return Decision{Verdict: VerdictPass}
}

func reject(reason string, confidence float64) Decision {
	return Decision{
		Verdict: VerdictReject,
		Result:  domain.ClassificationResult{Confidence: confidence, Reason: reason},
	}
}

func accept(reason string, confidence float64) Decision {
	return Decision{
		Verdict: VerdictAccept,
		Result:  domain.ClassificationResult{Confidence: confidence, Reason: reason},
	}
}

func lowerAll(values []string) []string {
	lowered := make([]string, len(values))
	for i, v := range values {
		lowered[i] = strings.ToLower(v)
	}
	return lowered
}
