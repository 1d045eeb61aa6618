package classify

import (
	"context"
	"log/slog"

	"InboxScheduler/internal/domain"
)

// Input carries everything a strategy may inspect for one message.
type Input struct {
	Text    string // normalized text
	Subject string
	Snippet string
	Body    string
	From    string
}

// Verdict is a single strategy's position on a message.
type Verdict int

const (
	// VerdictPass defers the decision to the next strategy in the chain.
	VerdictPass Verdict = iota
	// VerdictAccept terminates the chain with a schedule-worthy decision.
	VerdictAccept
	// VerdictReject terminates the chain with a rejection.
	VerdictReject
)

// Decision pairs a verdict with its evidence.
type Decision struct {
	Verdict Verdict
	Result  domain.ClassificationResult
}

// Strategy is one independently testable classification stage.
type Strategy interface {
	Name() string
	Classify(ctx context.Context, in Input) Decision
}

// Chain runs strategies in order and stops at the first accept or reject.
type Chain struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewChain composes an ordered strategy chain.
func NewChain(logger *slog.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, logger: logger}
}

// Classify drives the message through the chain. A chain whose every stage
// passes rejects the message; the terminal strategies never pass.
func (c *Chain) Classify(ctx context.Context, in Input) domain.ClassificationResult {
	for _, strategy := range c.strategies {
		decision := strategy.Classify(ctx, in)
		if decision.Verdict == VerdictPass {
			c.debug("strategy passed", "strategy", strategy.Name())
			continue
		}

		result := decision.Result
		result.Strategy = strategy.Name()
		result.IsSchedule = decision.Verdict == VerdictAccept
		return result
	}

	return domain.ClassificationResult{
		IsSchedule: false,
		Confidence: 0.05,
		Reason:     domain.ReasonNoIntent,
		Strategy:   "chain",
	}
}

func (c *Chain) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
