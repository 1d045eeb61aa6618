package classify

import (
	"context"
	"math"
	"testing"

	"InboxScheduler/internal/domain"
)

func testVocabChain() *Chain {
	hard := NewHardExclude(
		[]string{"뉴스레터", "newsletter", "unsubscribe", "인증번호"},
		[]string{"no-reply", "newsletter"},
		true,
	)
	gate := NewActionableGate(
		[]string{"회의", "요청", "제출", "마감", "meeting", "review"},
		[]string{"완료되었습니다", "no action required", "fyi"},
	)
	keyword := NewKeywordHeuristic(
		[]string{"회의", "마감", "제출", "meeting", "deadline"},
		[]string{"광고", "newsletter", "sale"},
	)
	return NewChain(nil, hard, gate, keyword)
}

func TestHardExcludePrecedesActionKeywords(t *testing.T) {
	t.Parallel()

	// Newsletter boilerplate rejects even when action keywords abound.
	in := Input{Text: "주간 뉴스레터: 회의 제출 마감 meeting deadline 요청"}
	result := testVocabChain().Classify(context.Background(), in)

	if result.IsSchedule {
		t.Fatal("expected rejection")
	}
	if result.Reason != domain.ReasonHardExclude {
		t.Fatalf("unexpected reason: %s", result.Reason)
	}
	if result.Strategy != "hard_exclude" {
		t.Fatalf("unexpected strategy: %s", result.Strategy)
	}
}

func TestHardExcludeMatchesSender(t *testing.T) {
	t.Parallel()

	in := Input{Text: "회의 일정 요청드립니다", From: "Service <no-reply@example.com>"}
	result := testVocabChain().Classify(context.Background(), in)

	if result.IsSchedule || result.Reason != domain.ReasonHardExclude {
		t.Fatalf("expected sender hard-exclude, got %+v", result)
	}
}

func TestSenderCheckDisabled(t *testing.T) {
	t.Parallel()

	hard := NewHardExclude(nil, []string{"no-reply"}, false)
	d := hard.Classify(context.Background(), Input{Text: "회의", From: "no-reply@example.com"})
	if d.Verdict != VerdictPass {
		t.Fatalf("expected pass when sender check disabled, got %v", d.Verdict)
	}
}

func TestGateRejectsWithoutActionTerm(t *testing.T) {
	t.Parallel()

	result := testVocabChain().Classify(context.Background(), Input{Text: "좋은 하루 보내세요"})
	if result.IsSchedule {
		t.Fatal("expected rejection")
	}
	if result.Reason != domain.ReasonNotActionable {
		t.Fatalf("unexpected reason: %s", result.Reason)
	}
}

func TestGateRejectsCompletionOverride(t *testing.T) {
	t.Parallel()

	result := testVocabChain().Classify(context.Background(), Input{Text: "제출이 완료되었습니다"})
	if result.IsSchedule || result.Reason != domain.ReasonNotActionable {
		t.Fatalf("expected completion override rejection, got %+v", result)
	}
}

func TestKeywordHeuristicAccepts(t *testing.T) {
	t.Parallel()

	result := testVocabChain().Classify(context.Background(), Input{Text: "내일 회의 자료 제출 마감입니다"})
	if !result.IsSchedule {
		t.Fatalf("expected acceptance, got %+v", result)
	}
	if result.Strategy != "keyword_heuristic" {
		t.Fatalf("unexpected strategy: %s", result.Strategy)
	}

	// Three strong terms, no noise: confidence = 0.5 + 0.12*3.
	if math.Abs(result.Confidence-0.86) > 1e-9 {
		t.Fatalf("unexpected confidence: %f", result.Confidence)
	}
}

func TestKeywordHeuristicNoiseCancelsScore(t *testing.T) {
	t.Parallel()

	k := NewKeywordHeuristic([]string{"meeting"}, []string{"sale", "promo"})
	d := k.Classify(context.Background(), Input{Text: "meeting about the big sale promo"})
	if d.Verdict != VerdictReject {
		t.Fatalf("expected rejection at score -1, got %v", d.Verdict)
	}
	if d.Result.Reason != domain.ReasonNoIntent {
		t.Fatalf("unexpected reason: %s", d.Result.Reason)
	}

	// score -1: confidence = 0.5 - 0.12.
	if math.Abs(d.Result.Confidence-0.38) > 1e-9 {
		t.Fatalf("unexpected confidence: %f", d.Result.Confidence)
	}
}

func TestKeywordConfidenceClamped(t *testing.T) {
	t.Parallel()

	strong := []string{"a1", "b2", "c3", "d4", "e5", "f6", "g7"}
	k := NewKeywordHeuristic(strong, nil)
	d := k.Classify(context.Background(), Input{Text: "a1 b2 c3 d4 e5 f6 g7"})
	if d.Result.Confidence != 0.95 {
		t.Fatalf("expected clamp at 0.95, got %f", d.Result.Confidence)
	}
}
