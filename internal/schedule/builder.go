package schedule

import (
	"fmt"
	"time"

	"InboxScheduler/internal/domain"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"

	// asapWindowDays spans the placeholder window when no explicit time
	// exists: receipt date through receipt date + 2, exclusive end.
	asapWindowDays = 2

	maxSummaryRunes = 120
)

// Builder turns an accepted message plus an optional temporal match into a
// concrete calendar event payload.
type Builder struct {
	location *time.Location
	timezone string
}

// NewBuilder binds the target timezone.
func NewBuilder(location *time.Location, timezone string) *Builder {
	return &Builder{location: location, timezone: timezone}
}

// Build constructs the event. Without an explicit temporal match the ASAP
// fallback applies: an all-day placeholder covering the two days after
// receipt, signaling "handle soon" instead of a false-precision time.
func (b *Builder) Build(msg domain.Message, title string, match *domain.TemporalMatch) domain.CalendarEvent {
	event := domain.CalendarEvent{
		Summary: truncateRunes(title, maxSummaryRunes),
		Description: fmt.Sprintf("Gmail 자동생성\n\nThread: %s\nMessage: %s\n\nSnippet:\n%s",
			msg.ThreadID, msg.ID, msg.Snippet),
	}

	switch {
	case match == nil:
		receipt := time.UnixMilli(msg.InternalDate).In(b.location)
		day := time.Date(receipt.Year(), receipt.Month(), receipt.Day(), 0, 0, 0, 0, b.location)
		event.AllDay = true
		event.Start = domain.EventMoment{Date: day.Format(dateLayout)}
		event.End = domain.EventMoment{Date: day.AddDate(0, 0, asapWindowDays).Format(dateLayout)}

	case match.AllDay:
		event.AllDay = true
		event.Start = domain.EventMoment{Date: match.Date.Format(dateLayout)}
		event.End = domain.EventMoment{Date: match.Date.AddDate(0, 0, 1).Format(dateLayout)}

	default:
		event.Start = domain.EventMoment{DateTime: match.Start.Format(dateTimeLayout), TimeZone: b.timezone}
		event.End = domain.EventMoment{DateTime: match.End.Format(dateTimeLayout), TimeZone: b.timezone}
	}

	return event
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
