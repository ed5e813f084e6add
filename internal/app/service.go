/**
 * @description
 * This file contains the core application service for the banking-service.
 * It holds the business logic for the transaction ledger (recording money
 * movements and deriving balances), account and user administration, the
 * lazy initial-deposit backfill, and notification/read-model pass-throughs.
 *
 * Key features:
 * - Ledger writes: validation and authorization happen here; the balance
 *   deltas are applied by the store inside the same critical section as the
 *   transaction record.
 * - History backfill: the first read of a positive-balance account with no
 *   transactions materializes a synthetic initial deposit without touching
 *   the balance.
 * - All notification fan-out is best-effort and never fails the operation
 *   that triggered it.
 *
 * @dependencies
 * - internal/store: The persistence layer.
 * - internal/notify: Notification fan-out (in-app, broker event, email).
 * - internal/i18n: Localized notification text.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/euronova/banking-service/internal/domain"
	"github.com/euronova/banking-service/internal/i18n"
	"github.com/euronova/banking-service/internal/notify"
	"github.com/euronova/banking-service/internal/store"
)

// RateLimiter bounds how often a key may perform a guarded action. Allow
// reports whether the action may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// emailDispatchTimeout bounds a single background email delivery.
const emailDispatchTimeout = 20 * time.Second

// Service provides the application's business logic.
type Service struct {
	repo            store.Repository
	notifier        notify.Notifier
	defaultCurrency string

	stepLimiter RateLimiter
	mailGroup   sync.WaitGroup
}

// dispatchEmail hands a delivery off to a background goroutine with a
// detached context. Email must never block or fail the request that
// triggered it.
func (s *Service) dispatchEmail(send func(ctx context.Context)) {
	s.mailGroup.Add(1)
	go func() {
		defer s.mailGroup.Done()
		ctx, cancel := context.WithTimeout(context.Background(), emailDispatchTimeout)
		defer cancel()
		send(ctx)
	}()
}

// NewService creates a new application service.
func NewService(repo store.Repository, notifier notify.Notifier, defaultCurrency string) *Service {
	if defaultCurrency == "" {
		defaultCurrency = "EUR"
	}
	return &Service{repo: repo, notifier: notifier, defaultCurrency: defaultCurrency}
}

// SetVerificationRateLimiter installs a limiter for client step-completion
// attempts. Without one, attempts are unbounded.
func (s *Service) SetVerificationRateLimiter(rl RateLimiter) {
	s.stepLimiter = rl
}

// User operations

func (s *Service) GetUser(ctx context.Context, actor domain.Actor, userID int64) (*domain.User, error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, ErrUnauthorized
	}
	return s.repo.GetUser(ctx, userID)
}

// SetUserActive toggles a user's active flag and notifies them of the
// status change. Admin only.
func (s *Service) SetUserActive(ctx context.Context, actor domain.Actor, userID int64, active bool) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	user, err := s.repo.SetUserActive(ctx, userID, active)
	if err != nil {
		return nil, err
	}
	log.Printf("level=info component=service msg=\"user status changed\" user_id=%d active=%t", userID, active)

	lang := userLang(user)
	titleKey, msgKey := "status.deactivated.title", "status.deactivated.message"
	if active {
		titleKey, msgKey = "status.activated.title", "status.activated.message"
	}
	s.notifier.Notify(ctx, user.ID, domain.NotificationTypeStatus,
		i18n.T(lang, titleKey), i18n.T(lang, msgKey),
		map[string]interface{}{"isActive": active})
	s.dispatchEmail(func(ctx context.Context) {
		s.notifier.SendAccountStatusEmail(ctx, user, active)
	})

	return user, nil
}

// SetUserLanguage records the user's preferred language. Users may change
// their own preference; admins may change anyone's.
func (s *Service) SetUserLanguage(ctx context.Context, actor domain.Actor, userID int64, language string) (*domain.User, error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, ErrUnauthorized
	}
	if language != "fr" && language != "en" {
		return nil, fmt.Errorf("unsupported language %q", language)
	}
	return s.repo.SetUserLanguage(ctx, userID, language)
}

// Account operations

func (s *Service) GetAccount(ctx context.Context, actor domain.Actor, accountID int64) (*domain.Account, error) {
	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && account.UserID != actor.UserID {
		return nil, ErrUnauthorized
	}
	return account, nil
}

func (s *Service) ListUserAccounts(ctx context.Context, actor domain.Actor, userID int64) ([]domain.Account, error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, ErrUnauthorized
	}
	return s.repo.GetAccountsByUserID(ctx, userID)
}

// OpenAccount creates an account for a user and sends the welcome email
// with the generated credentials. Admin only.
func (s *Service) OpenAccount(ctx context.Context, actor domain.Actor, userID int64, accountType string, initialBalance decimal.Decimal) (*domain.Account, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if initialBalance.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if accountType == "" {
		accountType = domain.AccountTypeCurrent
	}

	account, err := s.repo.CreateAccount(ctx, &domain.Account{
		UserID:      userID,
		AccountType: accountType,
		Balance:     initialBalance,
		Currency:    s.defaultCurrency,
		IsActive:    true,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("level=info component=service msg=\"account opened\" account_id=%d user_id=%d type=%s", account.ID, userID, accountType)

	s.dispatchEmail(func(ctx context.Context) {
		s.notifier.SendWelcomeEmail(ctx, user, domain.WelcomeCredentials{
			ClientID:      user.Username,
			AccountNumber: account.AccountNumber,
		})
	})
	return account, nil
}

// SetAccountActive toggles an account's active flag. Admin only.
func (s *Service) SetAccountActive(ctx context.Context, actor domain.Actor, accountID int64, active bool) (*domain.Account, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return s.repo.SetAccountActive(ctx, accountID, active)
}

// AdjustAccountBalance applies a direct balance correction outside the
// ledger. Admin only; the delta may be negative.
func (s *Service) AdjustAccountBalance(ctx context.Context, actor domain.Actor, accountID int64, delta decimal.Decimal) (*domain.Account, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if delta.IsZero() {
		return nil, ErrInvalidAmount
	}
	if err := s.repo.ApplyBalanceDelta(ctx, accountID, delta); err != nil {
		return nil, err
	}
	log.Printf("level=info component=service msg=\"balance corrected\" account_id=%d delta=%s actor_id=%d", accountID, delta.String(), actor.UserID)
	return s.repo.GetAccount(ctx, accountID)
}

// Ledger operations

// RecordTransaction validates and persists a money movement. The store
// applies the balance deltas atomically with the record. Notification
// fan-out is the caller's choice via NotifyTransactionPosted so that
// internal writes (seeding, backfill) stay silent.
func (s *Service) RecordTransaction(ctx context.Context, actor domain.Actor, input domain.TransactionInput) (*domain.Transaction, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if input.FromAccountID == nil && input.ToAccountID == nil {
		return nil, ErrMissingParties
	}

	// Clients may only debit their own accounts. The destination can belong
	// to anyone; the store verifies it exists before applying deltas.
	if !actor.IsAdmin() && input.FromAccountID != nil {
		account, err := s.repo.GetAccount(ctx, *input.FromAccountID)
		if err != nil {
			return nil, err
		}
		if account.UserID != actor.UserID {
			return nil, ErrUnauthorized
		}
	}

	tx := &domain.Transaction{
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		Amount:        input.Amount,
		Currency:      input.Currency,
		Type:          input.Type,
		Status:        input.Status,
		Reference:     input.Reference,
		Description:   input.Description,
		Category:      input.Category,
	}
	if tx.Currency == "" {
		tx.Currency = s.defaultCurrency
	}
	if tx.Type == "" {
		tx.Type = domain.TransactionTypeTransfer
	}
	if tx.Status == "" {
		tx.Status = domain.TransactionStatusCompleted
	}
	if tx.Reference == nil || *tx.Reference == "" {
		ref := "TXN-" + uuid.NewString()
		tx.Reference = &ref
	}

	created, err := s.repo.CreateTransaction(ctx, tx, true)
	if err != nil {
		return nil, err
	}
	log.Printf("level=info component=service msg=\"transaction recorded\" transaction_id=%d amount=%s type=%s", created.ID, created.Amount.String(), created.Type)
	return created, nil
}

// NotifyTransactionPosted fans out a posted transaction to the owner of each
// involved account: an in-app notification and a transaction email.
func (s *Service) NotifyTransactionPosted(ctx context.Context, tx *domain.Transaction) {
	seen := make(map[int64]bool)
	for _, party := range []struct {
		accountID *int64
		credit    bool
	}{
		{tx.ToAccountID, true},
		{tx.FromAccountID, false},
	} {
		if party.accountID == nil {
			continue
		}
		account, err := s.repo.GetAccount(ctx, *party.accountID)
		if err != nil {
			continue
		}
		if seen[account.UserID] {
			continue
		}
		seen[account.UserID] = true

		user, err := s.repo.GetUser(ctx, account.UserID)
		if err != nil {
			continue
		}
		lang := userLang(user)
		titleKey := "transaction.debit.title"
		if party.credit {
			titleKey = "transaction.credit.title"
		}
		message := i18n.T(lang, "transaction.no.description")
		if tx.Description != nil && *tx.Description != "" {
			message = *tx.Description
		}
		s.notifier.Notify(ctx, user.ID, domain.NotificationTypeTransaction,
			i18n.Tf(lang, titleKey, tx.Amount.StringFixed(2)), message,
			map[string]interface{}{"transactionId": tx.ID, "accountId": account.ID})
		s.dispatchEmail(func(ctx context.Context) {
			s.notifier.SendTransactionEmail(ctx, user, tx, account)
		})
	}
}

// GetTransaction returns one transaction. Clients may only read movements
// that touch one of their own accounts.
func (s *Service) GetTransaction(ctx context.Context, actor domain.Actor, id int64) (*domain.Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return tx, nil
	}
	for _, accountID := range []*int64{tx.FromAccountID, tx.ToAccountID} {
		if accountID == nil {
			continue
		}
		account, err := s.repo.GetAccount(ctx, *accountID)
		if err != nil {
			continue
		}
		if account.UserID == actor.UserID {
			return tx, nil
		}
	}
	return nil, ErrUnauthorized
}

// ListAccountTransactions returns an account's history, newest first. The
// first read of a positive-balance account with no history materializes a
// synthetic initial deposit explaining where the balance came from; the
// balance itself is not touched.
func (s *Service) ListAccountTransactions(ctx context.Context, actor domain.Actor, accountID int64) ([]domain.Transaction, error) {
	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && account.UserID != actor.UserID {
		return nil, ErrUnauthorized
	}

	txs, err := s.repo.GetTransactionsByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(txs) > 0 || !account.Balance.IsPositive() {
		return txs, nil
	}

	if err := s.backfillInitialDeposit(ctx, account); err != nil {
		// The read still succeeds; the deposit will be retried next time.
		log.Printf("level=warn component=service msg=\"initial deposit backfill failed\" account_id=%d err=%v", accountID, err)
		return txs, nil
	}
	return s.repo.GetTransactionsByAccountID(ctx, accountID)
}

func (s *Service) backfillInitialDeposit(ctx context.Context, account *domain.Account) error {
	owner, err := s.repo.GetUser(ctx, account.UserID)
	if err != nil {
		return err
	}
	lang := userLang(owner)

	description := i18n.T(lang, "deposit.initial.description")
	toID := account.ID
	// applyBalances=false: the balance already includes this deposit.
	deposit, err := s.repo.CreateTransaction(ctx, &domain.Transaction{
		ToAccountID: &toID,
		Amount:      account.Balance,
		Currency:    account.Currency,
		Type:        domain.TransactionTypeDeposit,
		Status:      domain.TransactionStatusCompleted,
		Description: &description,
	}, false)
	if err != nil {
		return err
	}
	log.Printf("level=info component=service msg=\"initial deposit backfilled\" account_id=%d transaction_id=%d amount=%s", account.ID, deposit.ID, deposit.Amount.String())

	s.notifier.Notify(ctx, owner.ID, domain.NotificationTypeTransaction,
		i18n.T(lang, "deposit.initial.title"),
		i18n.Tf(lang, "deposit.initial.message", deposit.Amount.StringFixed(2)),
		map[string]interface{}{"transactionId": deposit.ID, "accountId": account.ID})
	return nil
}

// Notification operations

func (s *Service) ListNotifications(ctx context.Context, actor domain.Actor, userID int64) ([]domain.Notification, error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, ErrUnauthorized
	}
	return s.repo.GetNotificationsByUserID(ctx, userID)
}

func (s *Service) MarkNotificationRead(ctx context.Context, actor domain.Actor, notificationID int64) (*domain.Notification, error) {
	// Ownership is checked before the write so a rejected request leaves
	// the notification untouched.
	n, err := s.repo.GetNotification(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && n.UserID != actor.UserID {
		return nil, ErrUnauthorized
	}
	return s.repo.MarkNotificationRead(ctx, notificationID)
}

// Payment-account directory operations

// GetPaymentAccount returns the beneficiary configured for a verification
// stage. Any authenticated user may read it.
func (s *Service) GetPaymentAccount(ctx context.Context, stepNumber int) (*domain.PaymentAccount, error) {
	if stepNumber < 1 || stepNumber > domain.NumVerificationStages {
		return nil, store.ErrPaymentAccountNotFound
	}
	return s.repo.GetPaymentAccount(ctx, stepNumber)
}

// UpsertPaymentAccount overwrites the beneficiary of a stage. Admin only.
func (s *Service) UpsertPaymentAccount(ctx context.Context, actor domain.Actor, pa *domain.PaymentAccount) (*domain.PaymentAccount, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if pa.StepNumber < 1 || pa.StepNumber > domain.NumVerificationStages {
		return nil, fmt.Errorf("step number must be between 1 and %d", domain.NumVerificationStages)
	}
	return s.repo.UpsertPaymentAccount(ctx, pa)
}

// IsNotFound reports whether err is one of the store's not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrUserNotFound) ||
		errors.Is(err, store.ErrAccountNotFound) ||
		errors.Is(err, store.ErrTransactionNotFound) ||
		errors.Is(err, store.ErrVerificationStepNotFound) ||
		errors.Is(err, store.ErrNotificationNotFound) ||
		errors.Is(err, store.ErrPaymentAccountNotFound)
}

func userLang(user *domain.User) string {
	if user.Language != "" {
		return user.Language
	}
	return i18n.DefaultLanguage
}
