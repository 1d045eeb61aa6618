package domain

// Message is a core entity describing one inbox message as fetched from the source.
// Immutable after fetch.
type Message struct {
	ID           string
	ThreadID     string
	InternalDate int64 // receipt timestamp, epoch milliseconds
	Headers      map[string]string
	Subject      string
	From         string
	Snippet      string
	Body         string
}

// ClassificationResult is the outcome of one intent-classification pass.
type ClassificationResult struct {
	IsSchedule bool
	Confidence float64
	Reason     string
	Strategy   string
}

// Audit actions recorded per processed message.
const (
	ActionSkip         = "skip"
	ActionCreateEvent  = "create_event"
	ActionDryRunCreate = "dry_run_create"
	ActionError        = "error"
)

// Skip reasons emitted by the pipeline.
const (
	ReasonHardExclude   = "hard_exclude_informational"
	ReasonNotActionable = "not_actionable"
	ReasonNoIntent      = "no_intent_keyword"
	ReasonNoDate        = "no_date_detected"
)

// AuditEntry is one append-only decision record. Field names match the
// historical JSONL log so older entries stay readable as training data.
type AuditEntry struct {
	ProcessedAt string       `json:"processed_at"`
	RunID       string       `json:"run_id,omitempty"`
	MessageID   string       `json:"message_id"`
	ThreadID    string       `json:"thread_id,omitempty"`
	Subject     string       `json:"subject,omitempty"`
	Action      string       `json:"action"`
	Reason      string       `json:"reason,omitempty"`
	Strategy    string       `json:"strategy,omitempty"`
	Confidence  float64      `json:"confidence,omitempty"`
	EventID     string       `json:"event_id,omitempty"`
	AllDay      bool         `json:"all_day,omitempty"`
	Start       *EventMoment `json:"start,omitempty"`
	End         *EventMoment `json:"end,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// ProcessingState is the persisted dedup/watermark ledger.
type ProcessingState struct {
	ThreadLatestProcessed map[string]int64  `json:"thread_latest_processed"`
	CreatedEventByMessage map[string]string `json:"created_event_by_message"`
	LastRunAt             string            `json:"last_run_at"`
}

// NewProcessingState returns an empty ledger with maps allocated.
func NewProcessingState() *ProcessingState {
	return &ProcessingState{
		ThreadLatestProcessed: map[string]int64{},
		CreatedEventByMessage: map[string]string{},
	}
}

// Eligible reports whether a message still needs processing: not yet turned
// into an event and newer than its thread watermark.
func (s *ProcessingState) Eligible(messageID, threadID string, internalDate int64) bool {
	if _, ok := s.CreatedEventByMessage[messageID]; ok {
		return false
	}
	return internalDate > s.ThreadLatestProcessed[threadID]
}

// AdvanceWatermark raises the thread watermark; it never moves backwards.
func (s *ProcessingState) AdvanceWatermark(threadID string, internalDate int64) {
	if internalDate > s.ThreadLatestProcessed[threadID] {
		s.ThreadLatestProcessed[threadID] = internalDate
	}
}

// RecordEvent remembers the calendar event created for a message.
func (s *ProcessingState) RecordEvent(messageID, eventID string) {
	s.CreatedEventByMessage[messageID] = eventID
}
