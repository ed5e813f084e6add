/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access the banking-service performs, together with the sentinel errors the
 * implementations return. Business logic in `internal/app` depends only on
 * this interface, which keeps the in-memory implementation swappable for a
 * database-backed one.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/shopspring/decimal: Exact decimal ledger arithmetic.
 * - internal/domain: Domain models.
 */

package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/euronova/banking-service/internal/domain"
)

// Sentinel errors returned by repository implementations.
var (
	ErrUserNotFound             = errors.New("user not found")
	ErrAccountNotFound          = errors.New("account not found")
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrVerificationStepNotFound = errors.New("verification record not found")
	ErrNotificationNotFound     = errors.New("notification not found")
	ErrPaymentAccountNotFound   = errors.New("payment account not configured")
)

// Repository defines the set of methods for interacting with the data store.
type Repository interface {
	// User methods
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	SetUserActive(ctx context.Context, id int64, active bool) (*domain.User, error)
	SetUserLanguage(ctx context.Context, id int64, language string) (*domain.User, error)

	// Account methods
	CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	GetAccountsByUserID(ctx context.Context, userID int64) ([]domain.Account, error)
	SetAccountActive(ctx context.Context, id int64, active bool) (*domain.Account, error)
	// ApplyBalanceDelta adds delta (positive or negative) to the account's
	// balance. Overdrafts are permitted; unknown accounts fail with
	// ErrAccountNotFound. The transaction recorder is the only regular
	// caller; admin balance corrections are the one exception.
	ApplyBalanceDelta(ctx context.Context, accountID int64, delta decimal.Decimal) error

	// Transaction methods. CreateTransaction assigns the id and timestamp
	// and, when applyBalances is set, debits the source and credits the
	// destination in the same critical section as the insert. Both account
	// references are validated before any state changes, so a failure never
	// leaves a partial write.
	CreateTransaction(ctx context.Context, tx *domain.Transaction, applyBalances bool) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error)
	GetTransactionsByAccountID(ctx context.Context, accountID int64) ([]domain.Transaction, error)

	// Verification workflow methods
	CreateVerificationStep(ctx context.Context, step *domain.VerificationStep) (*domain.VerificationStep, error)
	GetVerificationStep(ctx context.Context, id int64) (*domain.VerificationStep, error)
	GetVerificationStepByUserID(ctx context.Context, userID int64) (*domain.VerificationStep, error)
	// ReplaceVerificationStep atomically overwrites the stored record with
	// the given one (matched by id).
	ReplaceVerificationStep(ctx context.Context, step *domain.VerificationStep) error

	// Notification methods
	CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	GetNotification(ctx context.Context, id int64) (*domain.Notification, error)
	GetNotificationsByUserID(ctx context.Context, userID int64) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) (*domain.Notification, error)

	// Payment-account directory methods
	GetPaymentAccount(ctx context.Context, stepNumber int) (*domain.PaymentAccount, error)
	UpsertPaymentAccount(ctx context.Context, pa *domain.PaymentAccount) (*domain.PaymentAccount, error)
}
