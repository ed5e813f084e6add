/**
 * @description
 * This file defines the core domain models for the banking-service: users,
 * accounts, transactions, in-app notifications, and the per-step beneficiary
 * settings used by the verification workflow.
 *
 * @notes
 * - Monetary values use shopspring/decimal so that balances are always the
 *   exact sum of applied transaction amounts.
 * - Ids are small sequential integers allocated by the store, matching the
 *   public API where resources are addressed as /api/.../{id}.
 */

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts and balances are serialized as JSON numbers, the format the
	// portal's frontend consumes.
	decimal.MarshalJSONWithoutQuotes = true
}

// Role distinguishes the two actor kinds the API knows about.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// Actor is the authenticated caller of a service operation, as extracted
// from the bearer token by the API layer.
type Actor struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the actor may use the admin-only mutation paths.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// User is the minimal user view this service needs: identity, contact
// details for the notifier, preferred language and the active flag.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	Language  string    `json:"language"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Account types supported by the portal.
const (
	AccountTypeCurrent    = "current"
	AccountTypeSavings    = "savings"
	AccountTypeCredit     = "credit"
	AccountTypeInvestment = "investment"
	AccountTypeJoint      = "joint"
)

// Account holds the authoritative balance for one bank account. The balance
// is only ever mutated by the ledger when a transaction is recorded, except
// for the seed value at creation and explicit admin corrections.
type Account struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	AccountNumber string          `json:"accountNumber"`
	AccountType   string          `json:"accountType"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Transaction type and status values.
const (
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeTransfer   = "transfer"
	TransactionTypePayment    = "payment"
	TransactionTypeRefund     = "refund"
	TransactionTypeFee        = "fee"

	TransactionStatusCompleted = "completed"
	TransactionStatusPending   = "pending"
	TransactionStatusFailed    = "failed"
)

// Transaction is an immutable money-movement record. At least one of
// FromAccountID / ToAccountID is set; the amount is always positive and the
// sign of the ledger delta is derived from which side an account is on.
type Transaction struct {
	ID            int64           `json:"id"`
	FromAccountID *int64          `json:"fromAccountId"`
	ToAccountID   *int64          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Reference     *string         `json:"reference"`
	Description   *string         `json:"description"`
	Category      *string         `json:"category"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// TransactionInput is the DTO for creating a new transaction through the
// recorder. Optional fields default in the service layer.
type TransactionInput struct {
	FromAccountID *int64          `json:"fromAccountId"`
	ToAccountID   *int64          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Reference     *string         `json:"reference"`
	Description   *string         `json:"description"`
	Category      *string         `json:"category"`
}

// Notification is an in-app message shown to a user, newest first. Only the
// read flag is ever mutated after creation.
type Notification struct {
	ID        int64                  `json:"id"`
	UserID    int64                  `json:"userId"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	IsRead    bool                   `json:"isRead"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// Notification type tags.
const (
	NotificationTypeTransaction  = "transaction"
	NotificationTypeVerification = "verification"
	NotificationTypeStatus       = "status"
	NotificationTypeWelcome      = "welcome"
)

// PaymentAccount is the beneficiary a client must wire a given verification
// step's fee to. One entry per step number, last write wins.
type PaymentAccount struct {
	StepNumber    int    `json:"stepNumber"`
	AccountOwner  string `json:"accountOwner"`
	AccountNumber string `json:"accountNumber"`
	Description   string `json:"description,omitempty"`
}

// WelcomeCredentials carries the identifiers included in the welcome email
// sent when an account is opened.
type WelcomeCredentials struct {
	ClientID      string
	AccountNumber string
}
