package classify

import (
	"context"
	"errors"
	"testing"
)

func trainingExamples() []Example {
	return []Example{
		{Text: "주간 회의 일정 안내", Positive: true},
		{Text: "프로젝트 회의 참석 요청", Positive: true},
		{Text: "3월 면담 일정 조율", Positive: true},
		{Text: "weekly newsletter digest", Positive: false},
		{Text: "특가 할인 쿠폰 안내", Positive: false},
		{Text: "newsletter promo update", Positive: false},
	}
}

func TestTokenizeSplitsScripts(t *testing.T) {
	t.Parallel()

	got := Tokenize("3월 10일 Meeting 안내- OK")
	want := []string{"3", "월", "10", "일", "meeting", "안내", "ok"}
	if len(got) != len(want) {
		t.Fatalf("unexpected tokens: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestTrainBayesRequiresBothClasses(t *testing.T) {
	t.Parallel()

	// Two positives only: below the per-class floor even though data exists.
	examples := []Example{
		{Text: "회의 안내", Positive: true},
		{Text: "면담 일정", Positive: true},
		{Text: "뉴스레터", Positive: false},
		{Text: "할인 행사", Positive: false},
		{Text: "특가 안내", Positive: false},
	}

	if Trainable(examples, 3) {
		t.Fatal("expected not trainable with 2 positives")
	}
	if _, err := TrainBayes(examples, 3, 0.55); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestTrainBayesIgnoresTokenlessExamples(t *testing.T) {
	t.Parallel()

	examples := append(trainingExamples(), Example{Text: "!!! ...", Positive: true})
	b, err := TrainBayes(examples, 3, 0.55)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if b.posDocs != 3 {
		t.Fatalf("tokenless example counted: posDocs=%d", b.posDocs)
	}
}

func TestBayesClassifiesScheduleText(t *testing.T) {
	t.Parallel()

	b, err := TrainBayes(trainingExamples(), 3, 0.55)
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	d := b.Classify(context.Background(), Input{Text: "다음 주 회의 참석 요청"})
	if d.Verdict != VerdictAccept {
		t.Fatalf("expected accept, got %+v", d)
	}
	if d.Result.Confidence < 0.55 || d.Result.Confidence > 1 {
		t.Fatalf("confidence outside [0.55,1]: %f", d.Result.Confidence)
	}

	d = b.Classify(context.Background(), Input{Text: "monthly newsletter digest promo"})
	if d.Verdict != VerdictReject {
		t.Fatalf("expected reject, got %+v", d)
	}
}

func TestBayesProbabilityIsStableOnLongText(t *testing.T) {
	t.Parallel()

	b, err := TrainBayes(trainingExamples(), 3, 0.55)
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	long := ""
	for i := 0; i < 500; i++ {
		long += "회의 일정 "
	}
	p := b.Probability(long)
	if p <= 0 || p >= 1 {
		t.Fatalf("probability not in (0,1): %f", p)
	}
}
