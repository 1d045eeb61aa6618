package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"InboxScheduler/internal/classify"
	"InboxScheduler/internal/config"
	"InboxScheduler/internal/domain"
)

// Judge delegates the schedule-worthiness decision to an OpenAI-compatible
// chat endpoint. Any failure, from transport to malformed response, makes the
// stage pass so the chain degrades to the keyword heuristic; the judge is
// never fatal.
type Judge struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
	logger       *slog.Logger
}

var _ classify.Strategy = (*Judge)(nil)

// NewJudge builds a judge from configuration.
func NewJudge(cfg config.JudgeConfig, logger *slog.Logger) *Judge {
	return &Judge{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: safePrompt(cfg.SystemPrompt),
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		logger: logger,
	}
}

// Name identifies the stage in logs and audit entries.
func (j *Judge) Name() string {
	return "semantic_judge"
}

type verdictPayload struct {
	IsSchedule bool    `json:"is_schedule"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Classify asks the model for a structured verdict over subject/snippet/body.
func (j *Judge) Classify(ctx context.Context, in classify.Input) classify.Decision {
	verdict, err := j.judge(ctx, in)
	if err != nil {
		j.debug("semantic judge unavailable", "error", err)
		return classify.Decision{Verdict: classify.VerdictPass}
	}

	result := domain.ClassificationResult{
		Confidence: clamp01(verdict.Confidence),
		Reason:     verdict.Reason,
	}
	if verdict.IsSchedule {
		return classify.Decision{Verdict: classify.VerdictAccept, Result: result}
	}
	if result.Reason == "" {
		result.Reason = domain.ReasonNotActionable
	}
	return classify.Decision{Verdict: classify.VerdictReject, Result: result}
}

func (j *Judge) judge(ctx context.Context, in classify.Input) (verdictPayload, error) {
	var verdict verdictPayload
	if j.apiKey == "" || j.endpoint == "" || j.model == "" {
		return verdict, fmt.Errorf("semantic judge misconfigured")
	}

	userPrompt, err := json.Marshal(map[string]string{
		"subject": in.Subject,
		"snippet": in.Snippet,
		"body":    in.Body,
	})
	if err != nil {
		return verdict, fmt.Errorf("marshal judge input: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"model": j.model,
		"messages": []map[string]string{
			{"role": "system", "content": j.systemPrompt},
			{"role": "user", "content": string(userPrompt)},
		},
	})
	if err != nil {
		return verdict, fmt.Errorf("marshal judge payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.endpoint, bytes.NewReader(body))
	if err != nil {
		return verdict, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+j.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return verdict, fmt.Errorf("call judge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return verdict, fmt.Errorf("judge error %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return verdict, fmt.Errorf("decode completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return verdict, fmt.Errorf("empty completion")
	}

	content := stripFence(completion.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return verdict, fmt.Errorf("parse verdict: %w", err)
	}
	return verdict, nil
}

func (j *Judge) debug(msg string, args ...any) {
	if j.logger != nil {
		j.logger.Debug(msg, args...)
	}
}

func stripFence(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "Decide whether the email describes a schedulable commitment. " +
			"Respond with JSON: {\"is_schedule\": bool, \"confidence\": number, \"reason\": string}."
	}
	return prompt + " Respond with JSON: {\"is_schedule\": bool, \"confidence\": number, \"reason\": string}."
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
