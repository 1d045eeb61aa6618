package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"InboxScheduler/internal/classify"
	"InboxScheduler/internal/config"
)

func judgeServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		var payload struct {
			Model    string           `json:"model"`
			Messages []map[string]any `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if payload.Model != "test-model" || len(payload.Messages) != 2 {
			t.Errorf("unexpected payload: %+v", payload)
		}

		w.WriteHeader(status)
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, content)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testJudge(endpoint string) *Judge {
	return NewJudge(config.JudgeConfig{
		Endpoint: endpoint,
		Model:    "test-model",
		APIKey:   "test-key",
	}, nil)
}

func TestJudgeAcceptsStructuredVerdict(t *testing.T) {
	t.Parallel()

	srv := judgeServer(t, `{"is_schedule": true, "confidence": 0.91, "reason": "meeting_invite"}`, http.StatusOK)
	decision := testJudge(srv.URL).Classify(context.Background(), classify.Input{Subject: "회의 요청"})

	if decision.Verdict != classify.VerdictAccept {
		t.Fatalf("expected accept, got %v", decision.Verdict)
	}
	if decision.Result.Confidence != 0.91 || decision.Result.Reason != "meeting_invite" {
		t.Fatalf("unexpected result: %+v", decision.Result)
	}
}

func TestJudgeRejectsWithDefaultReason(t *testing.T) {
	t.Parallel()

	srv := judgeServer(t, `{"is_schedule": false, "confidence": 0.8}`, http.StatusOK)
	decision := testJudge(srv.URL).Classify(context.Background(), classify.Input{Subject: "뉴스레터"})

	if decision.Verdict != classify.VerdictReject {
		t.Fatalf("expected reject, got %v", decision.Verdict)
	}
	if decision.Result.Reason == "" {
		t.Fatal("reject must carry a reason")
	}
}

func TestJudgeStripsCodeFence(t *testing.T) {
	t.Parallel()

	srv := judgeServer(t, "```json\n{\"is_schedule\": true, \"confidence\": 0.7, \"reason\": \"ok\"}\n```", http.StatusOK)
	decision := testJudge(srv.URL).Classify(context.Background(), classify.Input{})
	if decision.Verdict != classify.VerdictAccept {
		t.Fatalf("fenced verdict not parsed: %+v", decision)
	}
}

func TestJudgeFailurePassesToNextStage(t *testing.T) {
	t.Parallel()

	cases := map[string]*Judge{
		"server error":  testJudge(judgeServer(t, `oops`, http.StatusInternalServerError).URL),
		"bad verdict":   testJudge(judgeServer(t, `not json at all`, http.StatusOK).URL),
		"misconfigured": NewJudge(config.JudgeConfig{}, nil),
	}
	for name, judge := range cases {
		if got := judge.Classify(context.Background(), classify.Input{}).Verdict; got != classify.VerdictPass {
			t.Fatalf("%s: expected pass, got %v", name, got)
		}
	}
}

func TestJudgeConfidenceClamped(t *testing.T) {
	t.Parallel()

	srv := judgeServer(t, `{"is_schedule": true, "confidence": 4.2, "reason": "x"}`, http.StatusOK)
	decision := testJudge(srv.URL).Classify(context.Background(), classify.Input{})
	if decision.Result.Confidence != 1 {
		t.Fatalf("confidence not clamped: %v", decision.Result.Confidence)
	}
}
