package domain

import "time"

// TemporalMatch is an explicit date/time mention extracted from message text.
// AllDay matches carry only Date; timed matches carry Start and a one-hour End.
type TemporalMatch struct {
	AllDay bool
	Date   time.Time // midnight, for all-day matches
	Start  time.Time
	End    time.Time
}

// EventMoment is a calendar boundary, provider-independent: either a bare
// date (all-day, end exclusive) or a timestamp with timezone.
type EventMoment struct {
	Date     string `json:"date,omitempty"`     // 2006-01-02
	DateTime string `json:"dateTime,omitempty"` // RFC3339 without offset, zone named separately
	TimeZone string `json:"timeZone,omitempty"`
}

// CalendarEvent is the payload handed to the calendar sink.
type CalendarEvent struct {
	Summary     string
	Description string
	AllDay      bool
	Start       EventMoment
	End         EventMoment
}
