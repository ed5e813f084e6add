/**
 * @description
 * This file implements the verification workflow service: the five-stage
 * fee-payment sequence a client must clear before transfers are unlocked.
 *
 * Key features:
 * - Sequential gating for clients, enforced by the authorization policy in
 *   policy.go; admins may set any stage in either direction.
 * - Completion dates follow the flag edges: stamped on false→true, cleared
 *   on true→false, untouched otherwise.
 * - Exactly one notification per changed flag. Amount-only and notes-only
 *   updates stay silent.
 * - Optional rate limiting of client completion attempts.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/euronova/banking-service/internal/domain"
	"github.com/euronova/banking-service/internal/i18n"
	"github.com/euronova/banking-service/internal/store"
)

// GetVerificationForUser returns a user's verification record. Clients may
// only read their own; a user without a record yields
// store.ErrVerificationStepNotFound, which the API surfaces as null.
func (s *Service) GetVerificationForUser(ctx context.Context, actor domain.Actor, userID int64) (*domain.VerificationStep, error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, ErrUnauthorized
	}
	return s.repo.GetVerificationStepByUserID(ctx, userID)
}

// CreateVerificationRecord provisions a fresh all-pending record for a
// user. Admin only; when the user already has one it is returned as is.
func (s *Service) CreateVerificationRecord(ctx context.Context, actor domain.Actor, userID int64) (*domain.VerificationStep, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	rec, err := s.repo.GetVerificationStepByUserID(ctx, userID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, store.ErrVerificationStepNotFound) {
		return nil, err
	}

	created, err := s.repo.CreateVerificationStep(ctx, domain.NewVerificationStep(userID))
	if err != nil {
		return nil, err
	}
	log.Printf("level=info component=service msg=\"verification record created\" verification_id=%d user_id=%d", created.ID, userID)
	return created, nil
}

// GetVerificationStep returns a verification record by id, subject to the
// same ownership rule as GetVerificationForUser.
func (s *Service) GetVerificationStep(ctx context.Context, actor domain.Actor, id int64) (*domain.VerificationStep, error) {
	rec, err := s.repo.GetVerificationStep(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && rec.UserID != actor.UserID {
		return nil, ErrUnauthorized
	}
	return rec, nil
}

// UpdateVerificationSteps applies a partial update to a verification record.
// The authorization policy decides which fields the actor may write; each
// completed flag that actually changes emits one notification to the
// record's owner.
func (s *Service) UpdateVerificationSteps(ctx context.Context, actor domain.Actor, id int64, req *domain.VerificationStepUpdateRequest) (*domain.VerificationStep, error) {
	rec, err := s.repo.GetVerificationStep(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkVerificationUpdate(actor, rec, req); err != nil {
		return nil, err
	}

	// Bound how fast a client can burn through completion attempts.
	if !actor.IsAdmin() && s.stepLimiter != nil && hasCompletionWrites(req) {
		key := fmt.Sprintf("verification:%d", actor.UserID)
		allowed, err := s.stepLimiter.Allow(ctx, key)
		if err != nil {
			// Fail open: the limiter being down must not block the workflow.
			log.Printf("level=warn component=service msg=\"rate limiter unavailable; allowing request\" user_id=%d err=%v", actor.UserID, err)
		} else if !allowed {
			return nil, ErrRateLimited
		}
	}

	now := time.Now()
	type flagChange struct {
		stage     int
		completed bool
	}
	var changes []flagChange

	for n := 1; n <= domain.NumVerificationStages; n++ {
		if amount := req.Amount(n); amount != nil {
			rec.SetStepAmount(n, *amount)
		}
		if want := req.Completed(n); want != nil {
			if rec.SetStepCompleted(n, *want, now) {
				changes = append(changes, flagChange{stage: n, completed: *want})
			}
		}
	}
	if req.Notes != nil {
		rec.Notes = req.Notes
	}

	if err := s.repo.ReplaceVerificationStep(ctx, rec); err != nil {
		return nil, err
	}

	owner, err := s.repo.GetUser(ctx, rec.UserID)
	if err != nil {
		log.Printf("level=warn component=service msg=\"verification owner lookup failed; notifications skipped\" verification_id=%d err=%v", rec.ID, err)
		return rec, nil
	}
	lang := userLang(owner)
	for _, c := range changes {
		titleKey, msgKey := "step.cancelled.title", "step.cancelled.message"
		if c.completed {
			titleKey, msgKey = "step.validated.title", "step.validated.message"
		}
		s.notifier.Notify(ctx, owner.ID, domain.NotificationTypeVerification,
			i18n.Tf(lang, titleKey, c.stage),
			i18n.Tf(lang, msgKey, i18n.StepName(lang, c.stage)),
			map[string]interface{}{"stepNumber": c.stage, "completed": c.completed})
		log.Printf("level=info component=service msg=\"verification stage changed\" verification_id=%d stage=%d completed=%t actor_id=%d", rec.ID, c.stage, c.completed, actor.UserID)
	}

	return rec, nil
}

func hasCompletionWrites(req *domain.VerificationStepUpdateRequest) bool {
	for n := 1; n <= domain.NumVerificationStages; n++ {
		if req.Completed(n) != nil {
			return true
		}
	}
	return false
}

// UnlockAllSteps marks every stage of a record complete in one shot. Admin
// only. Stages that were already complete keep their original dates and emit
// no notification.
func (s *Service) UnlockAllSteps(ctx context.Context, actor domain.Actor, id int64) (*domain.VerificationStep, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	completed := true
	req := &domain.VerificationStepUpdateRequest{
		Step1Completed: &completed,
		Step2Completed: &completed,
		Step3Completed: &completed,
		Step4Completed: &completed,
		Step5Completed: &completed,
	}
	return s.UpdateVerificationSteps(ctx, actor, id, req)
}

// SendStepReminder emails a client the fee details for their current stage,
// including the configured beneficiary when one exists. Admin only. It
// reports whether the email was handed off.
func (s *Service) SendStepReminder(ctx context.Context, actor domain.Actor, userID int64) (bool, error) {
	if !actor.IsAdmin() {
		return false, ErrUnauthorized
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	rec, err := s.repo.GetVerificationStepByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	if rec.AllCompleted() {
		return false, fmt.Errorf("verification already complete for user %d", userID)
	}

	stage := rec.CurrentStage()
	beneficiary, err := s.repo.GetPaymentAccount(ctx, stage)
	if err != nil {
		if !errors.Is(err, store.ErrPaymentAccountNotFound) {
			return false, err
		}
		beneficiary = nil
	}

	sent := s.notifier.SendStepReminderEmail(ctx, user, rec, stage, beneficiary)
	log.Printf("level=info component=service msg=\"step reminder dispatched\" user_id=%d stage=%d sent=%t", userID, stage, sent)
	return sent, nil
}

// StepDetails expands a record into the per-stage display view, with fee
// names in the given language.
func (s *Service) StepDetails(rec *domain.VerificationStep, lang string) []domain.StepDetail {
	details := make([]domain.StepDetail, 0, domain.NumVerificationStages)
	for n := 1; n <= domain.NumVerificationStages; n++ {
		details = append(details, domain.StepDetail{
			Number: n,
			Name:   i18n.StepName(lang, n),
			Amount: rec.StepAmount(n),
			Status: rec.StepStatusOf(n),
			Date:   rec.StepDate(n),
		})
	}
	return details
}
