package ports

import (
	"context"
	"time"

	"InboxScheduler/internal/domain"
)

// ListRequest bounds a candidate-message listing.
type ListRequest struct {
	Max           int
	ReceivedAfter time.Time // zero value means no lower bound
}

// MessageSource pulls candidate messages from the mailbox.
type MessageSource interface {
	ListCandidates(ctx context.Context, req ListRequest) ([]string, error)
	Fetch(ctx context.Context, id string) (domain.Message, error)
}

// CalendarSink creates events downstream and returns their identifiers.
type CalendarSink interface {
	CreateEvent(ctx context.Context, event domain.CalendarEvent) (string, error)
}

// StateStore persists the dedup/watermark ledger as one atomic blob.
type StateStore interface {
	Load() (*domain.ProcessingState, error)
	Save(state *domain.ProcessingState) error
}

// AuditLog appends one decision record per processed message.
type AuditLog interface {
	Append(entry domain.AuditEntry) error
}
