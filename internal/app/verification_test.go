package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/euronova/banking-service/internal/domain"
	"github.com/euronova/banking-service/internal/store"
)

func boolPtr(b bool) *bool { return &b }

func setupVerification(t *testing.T) (*testEnv, *domain.VerificationStep) {
	t.Helper()
	env := newTestEnv(t)
	rec, err := env.service.GetVerificationForUser(context.Background(), env.client, env.client.UserID)
	if err != nil {
		t.Fatalf("GetVerificationForUser returned error: %v", err)
	}
	return env, rec
}

func TestCreateVerificationRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// The demo seed already created the client's record; a new user starts
	// without one until an admin provisions it.
	user, _ := env.repo.CreateUser(ctx, &domain.User{Username: "client2", Role: domain.RoleClient, IsActive: true})
	actor := domain.Actor{UserID: user.ID, Role: domain.RoleClient}

	if _, err := env.service.GetVerificationForUser(ctx, actor, user.ID); !errors.Is(err, store.ErrVerificationStepNotFound) {
		t.Fatalf("expected ErrVerificationStepNotFound before provisioning, got %v", err)
	}
	if _, err := env.service.CreateVerificationRecord(ctx, actor, user.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for client create, got %v", err)
	}

	rec, err := env.service.CreateVerificationRecord(ctx, env.admin, user.ID)
	if err != nil {
		t.Fatalf("CreateVerificationRecord returned error: %v", err)
	}
	if rec.CompletedCount() != 0 || rec.CurrentStage() != 1 {
		t.Fatalf("expected a fresh all-pending record, got %+v", rec)
	}

	// Re-creating is a no-op returning the existing record.
	again, err := env.service.CreateVerificationRecord(ctx, env.admin, user.ID)
	if err != nil {
		t.Fatalf("CreateVerificationRecord returned error: %v", err)
	}
	if again.ID != rec.ID {
		t.Fatalf("expected the same record on re-create, got ids %d and %d", rec.ID, again.ID)
	}

	got, err := env.service.GetVerificationForUser(ctx, actor, user.ID)
	if err != nil {
		t.Fatalf("GetVerificationForUser returned error: %v", err)
	}
	if got.ID != rec.ID {
		t.Fatalf("expected record %d on read, got %d", rec.ID, got.ID)
	}
}

func TestGetVerificationForUserForeignRecordForbidden(t *testing.T) {
	env, rec := setupVerification(t)
	ctx := context.Background()

	other, _ := env.repo.CreateUser(ctx, &domain.User{Username: "client2", Role: domain.RoleClient, IsActive: true})
	actor := domain.Actor{UserID: other.ID, Role: domain.RoleClient}

	if _, err := env.service.GetVerificationForUser(ctx, actor, env.client.UserID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := env.service.GetVerificationStep(ctx, actor, rec.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized by id, got %v", err)
	}
}

func TestClientCompletesStagesInOrder(t *testing.T) {
	env, rec := setupVerification(t)
	ctx := context.Background()

	got, err := env.service.UpdateVerificationSteps(ctx, env.client, rec.ID, &domain.VerificationStepUpdateRequest{
		Step1Completed: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("UpdateVerificationSteps returned error: %v", err)
	}
	if !got.Step1Completed || got.Step1Date == nil {
		t.Fatalf("expected stage 1 complete with a date, got %+v", got)
	}
	if got.CurrentStage() != 2 {
		t.Fatalf("expected current stage 2, got %d", got.CurrentStage())
	}

	if len(env.notifier.notifications) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(env.notifier.notifications))
	}
	n := env.notifier.notifications[0]
	if n.typ != domain.NotificationTypeVerification || n.title != "Étape 1 validée" {
		t.Fatalf("unexpected notification: %+v", n)
	}
}

func TestClientOutOfOrderRejected(t *testing.T) {
	env, rec := setupVerification(t)

	_, err := env.service.UpdateVerificationSteps(context.Background(), env.client, rec.ID, &domain.VerificationStepUpdateRequest{
		Step3Completed: boolPtr(true),
	})
	if !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}
	if len(env.notifier.notifications) != 0 {
		t.Fatalf("rejected update must emit no notifications, got %d", len(env.notifier.notifications))
	}
}

func TestClientBatchCompletionOfConsecutiveStages(t *testing.T) {
	env, rec := setupVerification(t)

	got, err := env.service.UpdateVerificationSteps(context.Background(), env.client, rec.ID, &domain.VerificationStepUpdateRequest{
		Step1Completed: boolPtr(true),
		Step2Completed: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("UpdateVerificationSteps returned error: %v", err)
	}
	if got.CurrentStage() != 3 {
		t.Fatalf("expected current stage 3, got %d", got.CurrentStage())
	}
	if len(env.notifier.notifications) != 2 {
		t.Fatalf("expected one notification per changed stage, got %d", len(env.notifier.notifications))
	}
}

func TestClientCannotCancelOrWriteAmounts(t *testing.T) {
	env, rec := setupVerification(t)
	ctx := context.Background()

	if _, err := env.service.UpdateVerificationSteps(ctx, env.client, rec.ID, &domain.VerificationStepUpdateRequest{
		Step1Completed: boolPtr(true),
	}); err != nil {
		t.Fatalf("UpdateVerificationSteps returned error: %v", err)
	}

	// true→false is admin territory.
	if _, err := env.service.UpdateVerificationSteps(ctx, env.client, rec.ID, &domain.VerificationStepUpdateRequest{
		Step1Completed: boolPtr(false),
	}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for client cancellation, got %v", err)
	}

	amount := decimal.NewFromInt(1)
	if _, err := env.service.UpdateVerificationSteps(ctx, env.client, rec.ID, &domain.VerificationStepUpdateRequest{
		Step2Amount: &amount,
	}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for client amount write, got %v", err)
	}
}

func TestIdempotentRecompletionKeepsDateAndStaysSilent(t *testing.T) {
	env, rec := setupVerification(t)
	ctx := context.Background()

	first, err := env.service.UpdateVerificationSteps(ctx, env.client, rec.ID, &domain.VerificationStepUpdateRequest{
		Step1Completed: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("UpdateVerificationSteps returned error: %v", err)
	}
	originalDate := first.Step1Date

	second, err := env.service.UpdateVerificationSteps(ctx, env.client, rec.ID, &domain.VerificationStepUpdateRequest{
		Step1Completed: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("UpdateVerificationSteps returned error: %v", err)
	}
	if second.Step1Date == nil || !second.Step1Date.Equal(*originalDate) {
		t.Fatalf("idempotent re-completion must keep the date, got %v", second.Step1Date)
	}
	if len(env.notifier.notifications) != 1 {
		t.Fatalf("no-op update must not notify again, got %d notifications", len(env.notifier.notifications))
	}
}

func TestAdminOverrideSkipsSequence(t *testing.T) {
	env, rec := setupVerification(t)

	got, err := env.service.UpdateVerificationSteps(context.Background(), env.admin, rec.ID, &domain.VerificationStepUpdateRequest{
		Step4Completed: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("UpdateVerificationSteps returned error: %v", err)
	}
	if !got.Step4Completed || got.Step4Date == nil {
		t.Fatalf("expected stage 4 completed by admin override, got %+v", got)
	}
	// The owner, not the admin, receives the notification.
	if len(env.notifier.notifications) != 1 || env.notifier.notifications[0].userID != env.client.UserID {
		t.Fatalf("expected owner notification, got %+v", env.notifier.notifications)
	}
}

func TestAdminCancellationClearsDateAndNotifies(t *testing.T) {
	env, rec := setupVerification(t)
	ctx := context.Background()

	if _, err := env.service.UpdateVerificationSteps(ctx, env.client, rec.ID, &domain.VerificationStepUpdateRequest{
		Step1Completed: boolPtr(true),
	}); err != nil {
		t.Fatalf("UpdateVerificationSteps returned error: %v", err)
	}

	got, err := env.service.UpdateVerificationSteps(ctx, env.admin, rec.ID, &domain.VerificationStepUpdateRequest{
		Step1Completed: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("UpdateVerificationSteps returned error: %v", err)
	}
	if got.Step1Completed || got.Step1Date != nil {
		t.Fatalf("cancellation must clear the flag and date, got %+v", got)
	}

	last := env.notifier.notifications[len(env.notifier.notifications)-1]
	if last.title != "Étape 1 annulée" {
		t.Fatalf("expected cancellation notification, got %+v", last)
	}
}

func TestAdminAmountOnlyUpdateStaysSilent(t *testing.T) {
	env, rec := setupVerification(t)

	amount := decimal.NewFromInt(300)
	got, err := env.service.UpdateVerificationSteps(context.Background(), env.admin, rec.ID, &domain.VerificationStepUpdateRequest{
		Step2Amount: &amount,
	})
	if err != nil {
		t.Fatalf("UpdateVerificationSteps returned error: %v", err)
	}
	if !got.Step2Amount.Equal(amount) {
		t.Fatalf("expected amount 300, got %s", got.Step2Amount)
	}
	if len(env.notifier.notifications) != 0 {
		t.Fatalf("amount-only update must emit no notification, got %d", len(env.notifier.notifications))
	}
}

func TestUnlockAllSteps(t *testing.T) {
	env, rec := setupVerification(t)
	ctx := context.Background()

	// Pre-complete stage 1 so unlock-all must leave its date alone.
	first, err := env.service.UpdateVerificationSteps(ctx, env.client, rec.ID, &domain.VerificationStepUpdateRequest{
		Step1Completed: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("UpdateVerificationSteps returned error: %v", err)
	}
	stage1Date := first.Step1Date
	env.notifier.notifications = nil

	got, err := env.service.UnlockAllSteps(ctx, env.admin, rec.ID)
	if err != nil {
		t.Fatalf("UnlockAllSteps returned error: %v", err)
	}
	if !got.AllCompleted() {
		t.Fatalf("expected all stages complete, got %d", got.CompletedCount())
	}
	if !got.Step1Date.Equal(*stage1Date) {
		t.Fatalf("unlock-all must keep existing dates, got %v", got.Step1Date)
	}
	// Four stages changed, four notifications.
	if len(env.notifier.notifications) != 4 {
		t.Fatalf("expected 4 notifications, got %d", len(env.notifier.notifications))
	}

	if _, err := env.service.UnlockAllSteps(ctx, env.client, rec.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for client, got %v", err)
	}
}

// denyAllLimiter always refuses; errLimiter always fails.
type denyAllLimiter struct{}

func (denyAllLimiter) Allow(ctx context.Context, key string) (bool, error) { return false, nil }

type errLimiter struct{}

func (errLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return false, errors.New("redis down")
}

func TestVerificationRateLimit(t *testing.T) {
	env, rec := setupVerification(t)
	ctx := context.Background()
	env.service.SetVerificationRateLimiter(denyAllLimiter{})

	if _, err := env.service.UpdateVerificationSteps(ctx, env.client, rec.ID, &domain.VerificationStepUpdateRequest{
		Step1Completed: boolPtr(true),
	}); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	// Admins bypass the limiter.
	if _, err := env.service.UpdateVerificationSteps(ctx, env.admin, rec.ID, &domain.VerificationStepUpdateRequest{
		Step1Completed: boolPtr(true),
	}); err != nil {
		t.Fatalf("admin must bypass rate limiting, got %v", err)
	}
}

func TestVerificationRateLimitFailsOpen(t *testing.T) {
	env, rec := setupVerification(t)
	env.service.SetVerificationRateLimiter(errLimiter{})

	got, err := env.service.UpdateVerificationSteps(context.Background(), env.client, rec.ID, &domain.VerificationStepUpdateRequest{
		Step1Completed: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("limiter failure must not block the workflow, got %v", err)
	}
	if !got.Step1Completed {
		t.Fatal("expected stage 1 completed despite limiter failure")
	}
}

func TestSendStepReminder(t *testing.T) {
	env, rec := setupVerification(t)
	ctx := context.Background()

	if _, err := env.service.SendStepReminder(ctx, env.client, env.client.UserID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for client, got %v", err)
	}

	sent, err := env.service.SendStepReminder(ctx, env.admin, env.client.UserID)
	if err != nil {
		t.Fatalf("SendStepReminder returned error: %v", err)
	}
	if !sent {
		t.Fatal("expected reminder to be handed off")
	}
	if got := env.notifier.emailKinds(); len(got) != 1 || got[0] != "reminder" {
		t.Fatalf("expected one reminder email, got %v", got)
	}

	// No reminder once the workflow is done.
	if _, err := env.service.UnlockAllSteps(ctx, env.admin, rec.ID); err != nil {
		t.Fatalf("UnlockAllSteps returned error: %v", err)
	}
	if _, err := env.service.SendStepReminder(ctx, env.admin, env.client.UserID); err == nil {
		t.Fatal("expected error when the workflow is already complete")
	}
}

func TestStepDetailsLocalizedNames(t *testing.T) {
	env, rec := setupVerification(t)

	fr := env.service.StepDetails(rec, "fr")
	if len(fr) != domain.NumVerificationStages {
		t.Fatalf("expected %d step details, got %d", domain.NumVerificationStages, len(fr))
	}
	if fr[0].Name != "Frais d'enregistrement de crédit" {
		t.Fatalf("unexpected French stage 1 name: %q", fr[0].Name)
	}
	if fr[0].Status != domain.StepStatusPending || fr[1].Status != domain.StepStatusLocked {
		t.Fatalf("unexpected statuses: %+v", fr[:2])
	}

	en := env.service.StepDetails(rec, "en")
	if en[0].Name != "Credit registration fee" {
		t.Fatalf("unexpected English stage 1 name: %q", en[0].Name)
	}
}
