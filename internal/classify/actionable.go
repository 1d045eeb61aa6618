package classify

import (
	"context"
	"strings"

	"InboxScheduler/internal/domain"
)

// ActionableGate requires at least one positive action term and no overriding
// completion/FYI phrase before letting a message reach a terminal strategy.
type ActionableGate struct {
	actionTerms       []string
	completionPhrases []string
}

var _ Strategy = (*ActionableGate)(nil)

// NewActionableGate wires the action and completion vocabularies.
func NewActionableGate(actionTerms, completionPhrases []string) *ActionableGate {
	return &ActionableGate{
		actionTerms:       lowerAll(actionTerms),
		completionPhrases: lowerAll(completionPhrases),
	}
}

// Name identifies the stage in logs and audit entries.
func (g *ActionableGate) Name() string {
	return "actionable_gate"
}

// Classify rejects messages without an action term, or with a completion
// phrase overriding it; otherwise passes.
func (g *ActionableGate) Classify(_ context.Context, in Input) Decision {
	lowered := strings.ToLower(in.Text)

	hasAction := false
	for _, term := range g.actionTerms {
		if strings.Contains(lowered, term) {
			hasAction = true
			break
		}
	}
	if !hasAction {
		return reject(domain.ReasonNotActionable, 0.8)
	}

	for _, phrase := range g.completionPhrases {
		if strings.Contains(lowered, phrase) {
			return reject(domain.ReasonNotActionable, 0.7)
		}
	}

	return Decision{Verdict: VerdictPass}
}
