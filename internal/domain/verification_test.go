package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewVerificationStepDefaults(t *testing.T) {
	rec := NewVerificationStep(42)

	if rec.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", rec.UserID)
	}
	if rec.CurrentStage() != 1 {
		t.Fatalf("expected current stage 1 on a fresh record, got %d", rec.CurrentStage())
	}
	if rec.AllCompleted() {
		t.Fatal("fresh record must not be all-completed")
	}

	wantAmounts := []int64{75, 150, 225, 180, 95}
	for n := 1; n <= NumVerificationStages; n++ {
		if !rec.StepAmount(n).Equal(decimal.NewFromInt(wantAmounts[n-1])) {
			t.Fatalf("stage %d: expected default amount %d, got %s", n, wantAmounts[n-1], rec.StepAmount(n))
		}
		if rec.StepDate(n) != nil {
			t.Fatalf("stage %d: fresh record must have no completion date", n)
		}
	}
}

func TestSetStepCompletedDateEdges(t *testing.T) {
	rec := NewVerificationStep(1)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	if changed := rec.SetStepCompleted(1, true, now); !changed {
		t.Fatal("false→true must report a change")
	}
	if rec.Step1Date == nil || !rec.Step1Date.Equal(now) {
		t.Fatalf("expected date %v after completion, got %v", now, rec.Step1Date)
	}

	// Re-completing an already-complete stage is idempotent: no change, date kept.
	later := now.Add(24 * time.Hour)
	if changed := rec.SetStepCompleted(1, true, later); changed {
		t.Fatal("true→true must not report a change")
	}
	if !rec.Step1Date.Equal(now) {
		t.Fatalf("idempotent completion must keep the original date, got %v", rec.Step1Date)
	}

	// Cancelling clears the date.
	if changed := rec.SetStepCompleted(1, false, later); !changed {
		t.Fatal("true→false must report a change")
	}
	if rec.Step1Date != nil {
		t.Fatalf("cancellation must clear the date, got %v", rec.Step1Date)
	}
}

func TestSetStepAmountDoesNotTouchFlags(t *testing.T) {
	rec := NewVerificationStep(1)
	rec.SetStepCompleted(2, true, time.Now())
	date := rec.Step2Date

	rec.SetStepAmount(2, decimal.NewFromInt(500))

	if !rec.Step2Completed {
		t.Fatal("amount change must not clear the completed flag")
	}
	if rec.Step2Date != date {
		t.Fatal("amount change must not touch the completion date")
	}
	if !rec.Step2Amount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected amount 500, got %s", rec.Step2Amount)
	}
}

func TestCurrentStageAndStatus(t *testing.T) {
	rec := NewVerificationStep(1)
	now := time.Now()
	rec.SetStepCompleted(1, true, now)
	rec.SetStepCompleted(2, true, now)

	if got := rec.CurrentStage(); got != 3 {
		t.Fatalf("expected current stage 3, got %d", got)
	}
	if rec.CompletedCount() != 2 {
		t.Fatalf("expected 2 completed stages, got %d", rec.CompletedCount())
	}

	cases := []struct {
		stage int
		want  StepStatus
	}{
		{1, StepStatusCompleted},
		{2, StepStatusCompleted},
		{3, StepStatusPending},
		{4, StepStatusLocked},
		{5, StepStatusLocked},
	}
	for _, tc := range cases {
		if got := rec.StepStatusOf(tc.stage); got != tc.want {
			t.Fatalf("stage %d: expected status %s, got %s", tc.stage, tc.want, got)
		}
	}
}

func TestAllCompleted(t *testing.T) {
	rec := NewVerificationStep(1)
	now := time.Now()
	for n := 1; n <= NumVerificationStages; n++ {
		rec.SetStepCompleted(n, true, now)
	}
	if !rec.AllCompleted() {
		t.Fatal("expected all-completed after every stage is set")
	}
	if got := rec.CurrentStage(); got != NumVerificationStages+1 {
		t.Fatalf("expected current stage %d, got %d", NumVerificationStages+1, got)
	}
}

func TestUpdateRequestHelpers(t *testing.T) {
	completed := true
	amount := decimal.NewFromInt(300)

	req := VerificationStepUpdateRequest{Step3Completed: &completed}
	if req.Completed(3) == nil || !*req.Completed(3) {
		t.Fatal("expected Completed(3) to surface the requested flag")
	}
	if req.Completed(1) != nil {
		t.Fatal("expected Completed(1) to be nil for an untouched stage")
	}
	if req.TouchesAmountsOrNotes() {
		t.Fatal("flag-only request must not report amount/notes writes")
	}

	req.Step2Amount = &amount
	if !req.TouchesAmountsOrNotes() {
		t.Fatal("request with an amount must report amount/notes writes")
	}
}
