package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"InboxScheduler/internal/domain"
)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(20\d{2})[/-](\d{1,2})[/-](\d{1,2})`),
	regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})\b`),
	regexp.MustCompile(`(\d{1,2})\s*월\s*(\d{1,2})\s*일`),
}

var (
	ampmTimeExpr = regexp.MustCompile(`(오전|오후)\s*(\d{1,2})\s*시(?:\s*(\d{1,2})\s*분)?`)
	hourTimeExpr = regexp.MustCompile(`\b(\d{1,2})\s*시(?:\s*(\d{1,2})\s*분)?`)
	clockExpr    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
)

const eventDuration = time.Hour

// Extractor finds explicit date/time mentions in normalized message text.
// Localized time forms are accepted anywhere; a bare HH:MM token only counts
// when it sits within the proximity window of the matched date, so that
// timestamps in distant quoted material are not mistaken for schedule times.
type Extractor struct {
	proximityWindow int
	requireContext  bool
	contextTerms    []string
}

// NewExtractor wires the proximity window and the optional context gate.
func NewExtractor(proximityWindow int, requireContext bool, contextTerms []string) *Extractor {
	lowered := make([]string, len(contextTerms))
	for i, t := range contextTerms {
		lowered[i] = strings.ToLower(t)
	}
	return &Extractor{
		proximityWindow: proximityWindow,
		requireContext:  requireContext,
		contextTerms:    lowered,
	}
}

// Extract returns the first date mention with an optional time, or nil when
// no explicit date exists. Partial dates resolve against now's year and
// location. Date-only mentions become all-day matches; date+time mentions
// become one-hour timed entries.
func (e *Extractor) Extract(text string, now time.Time) *domain.TemporalMatch {
	if e.requireContext && !e.hasContextTerm(text) {
		return nil
	}

	date, datePos, ok := e.findDate(text, now)
	if !ok {
		return nil
	}

	hour, minute, ok := e.findTime(text, datePos)
	if !ok {
		return &domain.TemporalMatch{AllDay: true, Date: date}
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, now.Location())
	return &domain.TemporalMatch{Start: start, End: start.Add(eventDuration)}
}

type span struct {
	start, end int // byte offsets into the searched text
}

func (e *Extractor) findDate(text string, now time.Time) (time.Time, span, bool) {
	for _, pattern := range datePatterns {
		m := pattern.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}

		groups := pattern.NumSubexp()
		var year, month, day int
		if groups == 3 {
			year = atoiAt(text, m, 1)
			month = atoiAt(text, m, 2)
			day = atoiAt(text, m, 3)
		} else {
			year = now.Year()
			month = atoiAt(text, m, 1)
			day = atoiAt(text, m, 2)
		}

		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
		if date.Year() != year || int(date.Month()) != month || date.Day() != day {
			continue
		}
		return date, span{start: m[0], end: m[1]}, true
	}
	return time.Time{}, span{}, false
}

func (e *Extractor) findTime(text string, datePos span) (int, int, bool) {
	if m := ampmTimeExpr.FindStringSubmatchIndex(text); m != nil {
		meridiem := text[m[2]:m[3]]
		hour := atoiAt(text, m, 2)
		minute := 0
		if m[6] >= 0 {
			minute = atoiAt(text, m, 3)
		}
		if meridiem == "오후" && hour < 12 {
			hour += 12
		}
		if meridiem == "오전" && hour == 12 {
			hour = 0
		}
		if validClock(hour, minute) {
			return hour, minute, true
		}
	}

	for _, m := range hourTimeExpr.FindAllStringSubmatchIndex(text, -1) {
		// "2시간" is a duration, not a clock time.
		if strings.HasPrefix(text[m[1]:], "간") {
			continue
		}
		hour := atoiAt(text, m, 1)
		minute := 0
		if m[4] >= 0 {
			minute = atoiAt(text, m, 2)
		}
		if validClock(hour, minute) {
			return hour, minute, true
		}
	}

	if m := clockExpr.FindStringSubmatchIndex(text); m != nil {
		hour := atoiAt(text, m, 1)
		minute := atoiAt(text, m, 2)
		if validClock(hour, minute) && e.nearDate(text, datePos, span{start: m[0], end: m[1]}) {
			return hour, minute, true
		}
	}

	return 0, 0, false
}

// nearDate applies the proximity gate: the clock token must lie within the
// configured character distance of the date match.
func (e *Extractor) nearDate(text string, date, clock span) bool {
	var between string
	switch {
	case clock.start >= date.end:
		between = text[date.end:clock.start]
	case date.start >= clock.end:
		between = text[clock.end:date.start]
	default:
		return true
	}
	return utf8.RuneCountInString(between) <= e.proximityWindow
}

func (e *Extractor) hasContextTerm(text string) bool {
	lowered := strings.ToLower(text)
	for _, term := range e.contextTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

func validClock(hour, minute int) bool {
	return hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59
}

func atoiAt(text string, m []int, group int) int {
	v, _ := strconv.Atoi(text[m[2*group]:m[2*group+1]])
	return v
}
