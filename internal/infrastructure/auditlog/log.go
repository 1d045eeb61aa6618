package auditlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"InboxScheduler/internal/classify"
	"InboxScheduler/internal/domain"
	"InboxScheduler/internal/ports"
)

// Log is an append-only newline-delimited JSON decision log. Entries are
// written synchronously, one object per processed message, and never mutated.
type Log struct {
	path string
}

var _ ports.AuditLog = (*Log)(nil)

// NewLog binds the log file path.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Append writes one entry and flushes before returning.
func (l *Log) Append(entry domain.AuditEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create audit dir: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log %s: %w", l.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// TrainingExamples derives labeled classifier examples from the historical
// log: created events are positives; skips for missing intent or missing
// date are negatives. Subjects carry the text. Malformed lines are ignored
// so a partially written tail never blocks training.
func (l *Log) TrainingExamples() ([]classify.Example, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open audit log %s: %w", l.path, err)
	}
	defer f.Close()

	var examples []classify.Example
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry domain.AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if entry.Subject == "" {
			continue
		}

		switch entry.Action {
		case domain.ActionCreateEvent, domain.ActionDryRunCreate:
			examples = append(examples, classify.Example{Text: entry.Subject, Positive: true})
		case domain.ActionSkip:
			if entry.Reason == domain.ReasonNoIntent || entry.Reason == domain.ReasonNoDate {
				examples = append(examples, classify.Example{Text: entry.Subject, Positive: false})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan audit log: %w", err)
	}
	return examples, nil
}
