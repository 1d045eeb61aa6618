package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"InboxScheduler/internal/classify"
	"InboxScheduler/internal/domain"
	"InboxScheduler/internal/ports"
	"InboxScheduler/internal/schedule"
	"InboxScheduler/internal/temporal"
	"InboxScheduler/internal/textproc"
)

// PipelineDeps wires all collaborators into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.MessageSource
	Sink       ports.CalendarSink
	States     ports.StateStore
	Audit      ports.AuditLog
	Chain      *classify.Chain
	Normalizer *textproc.Normalizer
	Titles     *textproc.Deriver
	Temporal   *temporal.Extractor
	Builder    *schedule.Builder
	Logger     *slog.Logger
	Clock      func() time.Time
}

// Options bound a single batch run.
type Options struct {
	Max          int
	LookbackDays int
	DryRun       bool
	IgnoreState  bool
}

// Summary aggregates one run's outcomes. StatePath and AuditPath are filled
// in by the caller for the printed report.
type Summary struct {
	RunID     string `json:"run_id"`
	Scanned   int    `json:"scanned"`
	Created   int    `json:"created"`
	Skipped   int    `json:"skipped"`
	Errors    int    `json:"errors"`
	DryRun    bool   `json:"dry_run"`
	StatePath string `json:"state,omitempty"`
	AuditPath string `json:"log,omitempty"`
}

// Pipeline drives each candidate message through normalization,
// classification, temporal extraction and event creation, strictly
// sequentially. Per-message failures are contained; state-file and audit-log
// failures abort the run.
type Pipeline struct {
	source     ports.MessageSource
	sink       ports.CalendarSink
	states     ports.StateStore
	audit      ports.AuditLog
	chain      *classify.Chain
	normalizer *textproc.Normalizer
	titles     *textproc.Deriver
	temporal   *temporal.Extractor
	builder    *schedule.Builder
	logger     *slog.Logger
	clock      func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Pipeline{
		source:     deps.Source,
		sink:       deps.Sink,
		states:     deps.States,
		audit:      deps.Audit,
		chain:      deps.Chain,
		normalizer: deps.Normalizer,
		titles:     deps.Titles,
		temporal:   deps.Temporal,
		builder:    deps.Builder,
		logger:     deps.Logger,
		clock:      clock,
	}
}

type outcome int

const (
	outcomeSkippedQuiet outcome = iota // dedup/watermark skip, no audit entry
	outcomeSkipped
	outcomeCreated
)

// Run processes one bounded batch and persists state incrementally: after
// every message that mutates the ledger, not only at run end, so a crash can
// duplicate at most the message in flight.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Summary, error) {
	summary := Summary{RunID: uuid.NewString(), DryRun: opts.DryRun}

	var state *domain.ProcessingState
	if opts.IgnoreState {
		state = domain.NewProcessingState()
	} else {
		loaded, err := p.states.Load()
		if err != nil {
			return summary, fmt.Errorf("load state: %w", err)
		}
		state = loaded
	}

	now := p.clock()
	listReq := ports.ListRequest{Max: opts.Max}
	if opts.LookbackDays > 0 {
		listReq.ReceivedAfter = now.AddDate(0, 0, -opts.LookbackDays)
	}

	ids, err := p.source.ListCandidates(ctx, listReq)
	if err != nil {
		return summary, fmt.Errorf("list candidates: %w", err)
	}
	summary.Scanned = len(ids)

	for _, id := range ids {
		entry, result, procErr := p.processMessage(ctx, state, id, now, opts.DryRun)
		if procErr != nil {
			summary.Errors++
			p.logger.Warn("message failed", "message_id", id, "error", procErr)
			entry = &domain.AuditEntry{
				MessageID: id,
				Action:    domain.ActionError,
				Error:     procErr.Error(),
			}
		}

		switch result {
		case outcomeCreated:
			summary.Created++
		case outcomeSkipped, outcomeSkippedQuiet:
			if procErr == nil {
				summary.Skipped++
			}
		}

		if entry != nil {
			entry.ProcessedAt = p.clock().UTC().Format(time.RFC3339)
			entry.RunID = summary.RunID
			if err := p.audit.Append(*entry); err != nil {
				return summary, fmt.Errorf("append audit entry: %w", err)
			}
		}

		if procErr == nil && result != outcomeSkippedQuiet {
			if err := p.states.Save(state); err != nil {
				return summary, fmt.Errorf("save state: %w", err)
			}
		}
	}

	state.LastRunAt = p.clock().UTC().Format(time.RFC3339)
	if err := p.states.Save(state); err != nil {
		return summary, fmt.Errorf("save state: %w", err)
	}

	p.logger.Info("run complete",
		"run_id", summary.RunID,
		"scanned", summary.Scanned,
		"created", summary.Created,
		"skipped", summary.Skipped,
		"errors", summary.Errors,
		"dry_run", summary.DryRun)
	return summary, nil
}

func (p *Pipeline) processMessage(ctx context.Context, state *domain.ProcessingState, id string, now time.Time, dryRun bool) (*domain.AuditEntry, outcome, error) {
	msg, err := p.source.Fetch(ctx, id)
	if err != nil {
		return nil, outcomeSkipped, fmt.Errorf("fetch: %w", err)
	}

	if !state.Eligible(msg.ID, msg.ThreadID, msg.InternalDate) {
		p.logger.Debug("already handled", "message_id", msg.ID, "thread_id", msg.ThreadID)
		return nil, outcomeSkippedQuiet, nil
	}

	normalized := p.normalizer.Normalize(msg.Subject, msg.Snippet, msg.Body)
	result := p.chain.Classify(ctx, classify.Input{
		Text:    normalized,
		Subject: msg.Subject,
		Snippet: msg.Snippet,
		Body:    msg.Body,
		From:    msg.From,
	})

	if !result.IsSchedule {
		state.AdvanceWatermark(msg.ThreadID, msg.InternalDate)
		return &domain.AuditEntry{
			MessageID:  msg.ID,
			ThreadID:   msg.ThreadID,
			Subject:    msg.Subject,
			Action:     domain.ActionSkip,
			Reason:     result.Reason,
			Strategy:   result.Strategy,
			Confidence: result.Confidence,
		}, outcomeSkipped, nil
	}

	match := p.temporal.Extract(normalized, now)
	title := p.titles.Derive(msg.Subject, normalized)
	event := p.builder.Build(msg, title, match)

	action := domain.ActionDryRunCreate
	eventID := ""
	if !dryRun {
		eventID, err = p.sink.CreateEvent(ctx, event)
		if err != nil {
			return nil, outcomeSkipped, fmt.Errorf("create event: %w", err)
		}
		action = domain.ActionCreateEvent
		state.RecordEvent(msg.ID, eventID)
	}
	state.AdvanceWatermark(msg.ThreadID, msg.InternalDate)

	p.logger.Info("event scheduled",
		"message_id", msg.ID,
		"summary", event.Summary,
		"all_day", event.AllDay,
		"dry_run", dryRun)

	return &domain.AuditEntry{
		MessageID:  msg.ID,
		ThreadID:   msg.ThreadID,
		Subject:    msg.Subject,
		Action:     action,
		Strategy:   result.Strategy,
		Confidence: result.Confidence,
		EventID:    eventID,
		AllDay:     event.AllDay,
		Start:      &event.Start,
		End:        &event.End,
	}, outcomeCreated, nil
}
