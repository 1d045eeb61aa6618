package temporal

import (
	"strings"
	"testing"
	"time"
)

var seoul, _ = time.LoadLocation("Asia/Seoul")

func testNow() time.Time {
	return time.Date(2025, time.June, 1, 9, 0, 0, 0, seoul)
}

func newTestExtractor() *Extractor {
	return NewExtractor(40, false, nil)
}

func TestExtractFullDateWithClockTime(t *testing.T) {
	t.Parallel()

	m := newTestExtractor().Extract("2025-03-10 14:30 회의", testNow())
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.AllDay {
		t.Fatal("expected a timed match")
	}

	wantStart := time.Date(2025, time.March, 10, 14, 30, 0, 0, seoul)
	if !m.Start.Equal(wantStart) {
		t.Fatalf("unexpected start: %v", m.Start)
	}
	if !m.End.Equal(wantStart.Add(time.Hour)) {
		t.Fatalf("unexpected end: %v", m.End)
	}
}

func TestExtractKoreanDateWithMeridiem(t *testing.T) {
	t.Parallel()

	m := newTestExtractor().Extract("3월 10일 오후 2시 면담", testNow())
	if m == nil || m.AllDay {
		t.Fatalf("expected a timed match, got %+v", m)
	}

	wantStart := time.Date(2025, time.March, 10, 14, 0, 0, 0, seoul)
	if !m.Start.Equal(wantStart) {
		t.Fatalf("unexpected start: %v", m.Start)
	}
}

func TestExtractMorningMeridiem(t *testing.T) {
	t.Parallel()

	m := newTestExtractor().Extract("4월 2일 오전 12시 콜", testNow())
	if m == nil || m.AllDay {
		t.Fatalf("expected a timed match, got %+v", m)
	}
	if m.Start.Hour() != 0 {
		t.Fatalf("오전 12시 should resolve to midnight, got hour %d", m.Start.Hour())
	}
}

func TestProximityGateRejectsDistantClock(t *testing.T) {
	t.Parallel()

	// A timestamp far from the date mention, as in a quoted header or
	// signature, must not become the event time.
	text := "2025-04-01 워크숍 공지" + strings.Repeat("가", 60) + "14:30"
	m := newTestExtractor().Extract(text, testNow())
	if m == nil {
		t.Fatal("expected an all-day match")
	}
	if !m.AllDay {
		t.Fatalf("distant clock token selected as event time: %+v", m)
	}
	if m.Date.Month() != time.April || m.Date.Day() != 1 {
		t.Fatalf("unexpected date: %v", m.Date)
	}
}

func TestClockWithinWindowAccepted(t *testing.T) {
	t.Parallel()

	m := newTestExtractor().Extract("마감: 2025-04-01 14:30", testNow())
	if m == nil || m.AllDay {
		t.Fatalf("expected a timed match, got %+v", m)
	}
	if m.Start.Hour() != 14 || m.Start.Minute() != 30 {
		t.Fatalf("unexpected time: %v", m.Start)
	}
}

func TestNoDateMeansNoMatch(t *testing.T) {
	t.Parallel()

	if m := newTestExtractor().Extract("14:30에 전화 주세요", testNow()); m != nil {
		t.Fatalf("expected no match without a date, got %+v", m)
	}
}

func TestBareMonthDayAssumesCurrentYear(t *testing.T) {
	t.Parallel()

	m := newTestExtractor().Extract("7/15 제출 마감", testNow())
	if m == nil || !m.AllDay {
		t.Fatalf("expected an all-day match, got %+v", m)
	}
	if m.Date.Year() != 2025 || m.Date.Month() != time.July || m.Date.Day() != 15 {
		t.Fatalf("unexpected date: %v", m.Date)
	}
}

func TestInvalidDateFallsThrough(t *testing.T) {
	t.Parallel()

	if m := newTestExtractor().Extract("2025-13-40 이상한 날짜", testNow()); m != nil {
		t.Fatalf("expected no match for impossible date, got %+v", m)
	}
}

func TestDurationTokenIsNotAClockTime(t *testing.T) {
	t.Parallel()

	m := newTestExtractor().Extract("3월 10일 회의는 2시간 진행", testNow())
	if m == nil {
		t.Fatal("expected a match")
	}
	if !m.AllDay {
		t.Fatalf("duration token treated as clock time: %+v", m)
	}
}

func TestContextGateSuppressesIncidentalNumbers(t *testing.T) {
	t.Parallel()

	strict := NewExtractor(40, true, []string{"회의", "마감", "meeting"})
	if m := strict.Extract("주문번호 2025-03-10 접수", testNow()); m != nil {
		t.Fatalf("expected context gate to suppress match, got %+v", m)
	}
	if m := strict.Extract("2025-03-10 회의", testNow()); m == nil {
		t.Fatal("expected match when context keyword present")
	}
}
