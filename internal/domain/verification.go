/**
 * @description
 * This file defines the verification workflow record: a per-user sequence of
 * five fee-payment stages that must be cleared, in order, before a transfer
 * is unlocked. Each stage carries a completed flag, an admin-configurable
 * amount, and a completion timestamp set on the false→true edge only.
 *
 * The flat step{N}Completed/Amount/Date layout mirrors the wire format the
 * admin and client portals exchange on PATCH /api/verification-steps/{id}.
 */

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NumVerificationStages is the number of sequential stages in the workflow.
const NumVerificationStages = 5

// DefaultStepAmounts returns the default fee for each stage, in EUR.
func DefaultStepAmounts() [NumVerificationStages]decimal.Decimal {
	return [NumVerificationStages]decimal.Decimal{
		decimal.NewFromInt(75),
		decimal.NewFromInt(150),
		decimal.NewFromInt(225),
		decimal.NewFromInt(180),
		decimal.NewFromInt(95),
	}
}

// StepStatus is the displayed state of one stage.
type StepStatus string

const (
	StepStatusCompleted StepStatus = "completed"
	StepStatusPending   StepStatus = "pending"
	StepStatusLocked    StepStatus = "locked"
)

// VerificationStep is the single per-user verification record.
type VerificationStep struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"userId"`
	TransactionID *int64 `json:"transactionId"`

	Step1Completed bool            `json:"step1Completed"`
	Step1Amount    decimal.Decimal `json:"step1Amount"`
	Step1Date      *time.Time      `json:"step1Date"`
	Step2Completed bool            `json:"step2Completed"`
	Step2Amount    decimal.Decimal `json:"step2Amount"`
	Step2Date      *time.Time      `json:"step2Date"`
	Step3Completed bool            `json:"step3Completed"`
	Step3Amount    decimal.Decimal `json:"step3Amount"`
	Step3Date      *time.Time      `json:"step3Date"`
	Step4Completed bool            `json:"step4Completed"`
	Step4Amount    decimal.Decimal `json:"step4Amount"`
	Step4Date      *time.Time      `json:"step4Date"`
	Step5Completed bool            `json:"step5Completed"`
	Step5Amount    decimal.Decimal `json:"step5Amount"`
	Step5Date      *time.Time      `json:"step5Date"`

	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewVerificationStep returns a fresh record for the given user: all stages
// pending with default amounts.
func NewVerificationStep(userID int64) *VerificationStep {
	amounts := DefaultStepAmounts()
	return &VerificationStep{
		UserID:      userID,
		Step1Amount: amounts[0],
		Step2Amount: amounts[1],
		Step3Amount: amounts[2],
		Step4Amount: amounts[3],
		Step5Amount: amounts[4],
	}
}

// StepCompleted reports the completed flag of stage n (1-based).
func (v *VerificationStep) StepCompleted(n int) bool {
	switch n {
	case 1:
		return v.Step1Completed
	case 2:
		return v.Step2Completed
	case 3:
		return v.Step3Completed
	case 4:
		return v.Step4Completed
	case 5:
		return v.Step5Completed
	}
	return false
}

// StepAmount returns the configured fee of stage n.
func (v *VerificationStep) StepAmount(n int) decimal.Decimal {
	switch n {
	case 1:
		return v.Step1Amount
	case 2:
		return v.Step2Amount
	case 3:
		return v.Step3Amount
	case 4:
		return v.Step4Amount
	case 5:
		return v.Step5Amount
	}
	return decimal.Zero
}

// StepDate returns the completion timestamp of stage n, nil when pending.
func (v *VerificationStep) StepDate(n int) *time.Time {
	switch n {
	case 1:
		return v.Step1Date
	case 2:
		return v.Step2Date
	case 3:
		return v.Step3Date
	case 4:
		return v.Step4Date
	case 5:
		return v.Step5Date
	}
	return nil
}

// SetStepCompleted writes stage n's completed flag and maintains the
// completion date: set on false→true, cleared on true→false, untouched when
// the flag does not change. It reports whether the flag changed.
func (v *VerificationStep) SetStepCompleted(n int, completed bool, now time.Time) bool {
	if v.StepCompleted(n) == completed {
		return false
	}
	var date *time.Time
	if completed {
		ts := now
		date = &ts
	}
	switch n {
	case 1:
		v.Step1Completed, v.Step1Date = completed, date
	case 2:
		v.Step2Completed, v.Step2Date = completed, date
	case 3:
		v.Step3Completed, v.Step3Date = completed, date
	case 4:
		v.Step4Completed, v.Step4Date = completed, date
	case 5:
		v.Step5Completed, v.Step5Date = completed, date
	default:
		return false
	}
	return true
}

// SetStepAmount overwrites stage n's fee. Amount changes never touch the
// completed flag or date.
func (v *VerificationStep) SetStepAmount(n int, amount decimal.Decimal) {
	switch n {
	case 1:
		v.Step1Amount = amount
	case 2:
		v.Step2Amount = amount
	case 3:
		v.Step3Amount = amount
	case 4:
		v.Step4Amount = amount
	case 5:
		v.Step5Amount = amount
	}
}

// CurrentStage returns the lowest-numbered incomplete stage, or
// NumVerificationStages+1 when every stage is complete.
func (v *VerificationStep) CurrentStage() int {
	for n := 1; n <= NumVerificationStages; n++ {
		if !v.StepCompleted(n) {
			return n
		}
	}
	return NumVerificationStages + 1
}

// AllCompleted reports whether every stage has been cleared.
func (v *VerificationStep) AllCompleted() bool {
	return v.CurrentStage() > NumVerificationStages
}

// CompletedCount returns how many of the five stages are complete.
func (v *VerificationStep) CompletedCount() int {
	count := 0
	for n := 1; n <= NumVerificationStages; n++ {
		if v.StepCompleted(n) {
			count++
		}
	}
	return count
}

// StepStatusOf classifies stage n for display: completed when its flag is
// set, pending when it is the next stage eligible for payment, locked while
// an earlier stage is still incomplete.
func (v *VerificationStep) StepStatusOf(n int) StepStatus {
	if v.StepCompleted(n) {
		return StepStatusCompleted
	}
	if n == 1 || v.StepCompleted(n-1) {
		return StepStatusPending
	}
	return StepStatusLocked
}

// StepDetail is the per-stage view returned alongside the raw record.
type StepDetail struct {
	Number int             `json:"number"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Status StepStatus      `json:"status"`
	Date   *time.Time      `json:"date,omitempty"`
}

// VerificationStepUpdateRequest is the PATCH body for the verification
// record. All fields are optional; the authorization policy decides which
// of them the actor may set.
type VerificationStepUpdateRequest struct {
	Step1Completed *bool `json:"step1Completed"`
	Step2Completed *bool `json:"step2Completed"`
	Step3Completed *bool `json:"step3Completed"`
	Step4Completed *bool `json:"step4Completed"`
	Step5Completed *bool `json:"step5Completed"`

	Step1Amount *decimal.Decimal `json:"step1Amount"`
	Step2Amount *decimal.Decimal `json:"step2Amount"`
	Step3Amount *decimal.Decimal `json:"step3Amount"`
	Step4Amount *decimal.Decimal `json:"step4Amount"`
	Step5Amount *decimal.Decimal `json:"step5Amount"`

	Notes *string `json:"notes"`
}

// Completed returns the requested completed flag for stage n, nil when the
// request leaves it untouched.
func (r *VerificationStepUpdateRequest) Completed(n int) *bool {
	switch n {
	case 1:
		return r.Step1Completed
	case 2:
		return r.Step2Completed
	case 3:
		return r.Step3Completed
	case 4:
		return r.Step4Completed
	case 5:
		return r.Step5Completed
	}
	return nil
}

// Amount returns the requested amount for stage n, nil when untouched.
func (r *VerificationStepUpdateRequest) Amount(n int) *decimal.Decimal {
	switch n {
	case 1:
		return r.Step1Amount
	case 2:
		return r.Step2Amount
	case 3:
		return r.Step3Amount
	case 4:
		return r.Step4Amount
	case 5:
		return r.Step5Amount
	}
	return nil
}

// TouchesAmountsOrNotes reports whether the request writes anything beyond
// completed flags.
func (r *VerificationStepUpdateRequest) TouchesAmountsOrNotes() bool {
	for n := 1; n <= NumVerificationStages; n++ {
		if r.Amount(n) != nil {
			return true
		}
	}
	return r.Notes != nil
}
