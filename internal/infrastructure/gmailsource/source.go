package gmailsource

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"InboxScheduler/internal/config"
	"InboxScheduler/internal/domain"
	"InboxScheduler/internal/ports"
	"InboxScheduler/internal/textproc"
)

const user = "me"

// Source pulls candidate messages from Gmail over the official API.
type Source struct {
	srv    *gmail.Service
	query  string
	logger *slog.Logger
}

var _ ports.MessageSource = (*Source)(nil)

// NewSource builds an authenticated read-only Gmail client. The OAuth token
// must already exist on disk; a batch run never blocks on an interactive
// consent flow.
func NewSource(ctx context.Context, cfg config.GmailConfig, logger *slog.Logger) (*Source, error) {
	raw, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(raw, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	token, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("load token %s: %w", cfg.TokenFile, err)
	}

	httpClient := oauthConfig.Client(ctx, token)
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	return &Source{srv: srv, query: cfg.Query, logger: logger}, nil
}

// NewSourceWithClient wires a prebuilt HTTP client; used by tests.
func NewSourceWithClient(ctx context.Context, client *http.Client, endpoint, query string, logger *slog.Logger) (*Source, error) {
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client), option.WithEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &Source{srv: srv, query: query, logger: logger}, nil
}

// ListCandidates returns up to req.Max message ids matching the configured
// query, optionally bounded below by a received-after date.
func (s *Source) ListCandidates(ctx context.Context, req ports.ListRequest) ([]string, error) {
	query := s.query
	if !req.ReceivedAfter.IsZero() {
		query = fmt.Sprintf("%s after:%s", query, req.ReceivedAfter.Format("2006/01/02"))
	}

	s.debug("list candidates", "query", query, "max", req.Max)
	resp, err := s.srv.Users.Messages.List(user).
		Q(query).
		MaxResults(int64(req.Max)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// Fetch retrieves full message content by id.
func (s *Source) Fetch(ctx context.Context, id string) (domain.Message, error) {
	msg, err := s.srv.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return domain.Message{}, fmt.Errorf("get message %s: %w", id, err)
	}

	headers := map[string]string{}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			headers[h.Name] = h.Value
		}
	}

	return domain.Message{
		ID:           msg.Id,
		ThreadID:     msg.ThreadId,
		InternalDate: msg.InternalDate,
		Headers:      headers,
		Subject:      headers["Subject"],
		From:         headers["From"],
		Snippet:      msg.Snippet,
		Body:         extractBody(msg.Payload),
	}, nil
}

// extractBody prefers a text/plain part anywhere in the tree; failing that,
// the first text/html part flattened to text.
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}
	if plain := findPart(payload, "text/plain"); plain != "" {
		return plain
	}
	if html := findPart(payload, "text/html"); html != "" {
		return textproc.HTMLToText(html)
	}
	return ""
}

func findPart(part *gmail.MessagePart, mimeType string) string {
	if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
		if decoded := decodeBody(part.Body.Data); decoded != "" {
			return decoded
		}
	}
	for _, child := range part.Parts {
		if strings.HasPrefix(strings.ToLower(child.MimeType), "text/") ||
			strings.HasPrefix(strings.ToLower(child.MimeType), "multipart/") {
			if body := findPart(child, mimeType); body != "" {
				return body
			}
		}
	}
	return ""
}

func decodeBody(data string) string {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	return ""
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

func (s *Source) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
