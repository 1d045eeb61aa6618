package calendarsink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"InboxScheduler/internal/config"
	"InboxScheduler/internal/domain"
	"InboxScheduler/internal/ports"
)

// Sink creates events on a Google Calendar.
type Sink struct {
	srv        *calendar.Service
	calendarID string
	logger     *slog.Logger
}

var _ ports.CalendarSink = (*Sink)(nil)

// NewSink builds an authenticated calendar client from the shared Google
// credentials; the stored token must carry the events scope.
func NewSink(ctx context.Context, gmailCfg config.GmailConfig, calCfg config.CalendarConfig, logger *slog.Logger) (*Sink, error) {
	raw, err := os.ReadFile(gmailCfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(raw, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	token, err := tokenFromFile(gmailCfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("load token %s: %w", gmailCfg.TokenFile, err)
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &Sink{srv: srv, calendarID: calCfg.CalendarID, logger: logger}, nil
}

// NewSinkWithClient wires a prebuilt HTTP client; used by tests.
func NewSinkWithClient(ctx context.Context, client *http.Client, endpoint, calendarID string, logger *slog.Logger) (*Sink, error) {
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client), option.WithEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Sink{srv: srv, calendarID: calendarID, logger: logger}, nil
}

// CreateEvent inserts the event and returns the provider's event id.
func (s *Sink) CreateEvent(ctx context.Context, event domain.CalendarEvent) (string, error) {
	payload := &calendar.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start:       toEventDateTime(event.Start),
		End:         toEventDateTime(event.End),
	}

	created, err := s.srv.Events.Insert(s.calendarID, payload).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}

	s.debug("event created", "event_id", created.Id, "summary", event.Summary)
	return created.Id, nil
}

func toEventDateTime(m domain.EventMoment) *calendar.EventDateTime {
	if m.Date != "" {
		return &calendar.EventDateTime{Date: m.Date}
	}
	return &calendar.EventDateTime{DateTime: m.DateTime, TimeZone: m.TimeZone}
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *Sink) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
