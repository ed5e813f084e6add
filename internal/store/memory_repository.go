/**
 * @description
 * In-memory implementation of the Repository interface. All state lives in
 * maps guarded by a single mutex; ids are allocated from per-entity
 * counters. Nothing is durable: the store is rebuilt (and optionally
 * re-seeded) on every process start.
 *
 * Compound mutations that must not be observed half-done, such as recording
 * a transaction together with its balance deltas or replacing a verification
 * record, each run inside one critical section.
 */

package store

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/euronova/banking-service/internal/domain"
)

// MemoryRepository holds the whole service state in process memory.
type MemoryRepository struct {
	mu sync.Mutex

	users             map[int64]*domain.User
	accounts          map[int64]*domain.Account
	transactions      map[int64]*domain.Transaction
	verificationSteps map[int64]*domain.VerificationStep
	notifications     map[int64]*domain.Notification
	paymentAccounts   map[int]*domain.PaymentAccount

	nextUserID         int64
	nextAccountID      int64
	nextTransactionID  int64
	nextVerificationID int64
	nextNotificationID int64
}

// NewMemoryRepository creates an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:              make(map[int64]*domain.User),
		accounts:           make(map[int64]*domain.Account),
		transactions:       make(map[int64]*domain.Transaction),
		verificationSteps:  make(map[int64]*domain.VerificationStep),
		notifications:      make(map[int64]*domain.Notification),
		paymentAccounts:    make(map[int]*domain.PaymentAccount),
		nextUserID:         1,
		nextAccountID:      1,
		nextTransactionID:  1,
		nextVerificationID: 1,
		nextNotificationID: 1,
	}
}

// GenerateAccountNumber produces an IBAN-like FR76 account number for newly
// opened accounts.
func GenerateAccountNumber() string {
	return fmt.Sprintf("FR76 %04d %04d %04d %04d %03d",
		1000+rand.Intn(9000),
		1000+rand.Intn(9000),
		1000+rand.Intn(9000),
		1000+rand.Intn(9000),
		100+rand.Intn(900),
	)
}

// User methods

func (r *MemoryRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *user
	stored.ID = r.nextUserID
	r.nextUserID++
	stored.CreatedAt = time.Now()
	r.users[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *MemoryRepository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (r *MemoryRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Username == username {
			out := *user
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryRepository) SetUserActive(ctx context.Context, id int64, active bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	user.IsActive = active
	out := *user
	return &out, nil
}

func (r *MemoryRepository) SetUserLanguage(ctx context.Context, id int64, language string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	user.Language = language
	out := *user
	return &out, nil
}

// Account methods

func (r *MemoryRepository) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[account.UserID]; !ok {
		return nil, ErrUserNotFound
	}

	stored := *account
	stored.ID = r.nextAccountID
	r.nextAccountID++
	stored.CreatedAt = time.Now()
	if stored.AccountNumber == "" {
		stored.AccountNumber = GenerateAccountNumber()
	}
	r.accounts[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *MemoryRepository) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	out := *account
	return &out, nil
}

func (r *MemoryRepository) GetAccountsByUserID(ctx context.Context, userID int64) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var accounts []domain.Account
	for _, account := range r.accounts {
		if account.UserID == userID {
			accounts = append(accounts, *account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (r *MemoryRepository) SetAccountActive(ctx context.Context, id int64, active bool) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	account.IsActive = active
	out := *account
	return &out, nil
}

func (r *MemoryRepository) ApplyBalanceDelta(ctx context.Context, accountID int64, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applyBalanceDeltaLocked(accountID, delta)
}

func (r *MemoryRepository) applyBalanceDeltaLocked(accountID int64, delta decimal.Decimal) error {
	account, ok := r.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	// No overdraft floor: credit-account semantics allow negative balances.
	account.Balance = account.Balance.Add(delta)
	return nil
}

// Transaction methods

func (r *MemoryRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction, applyBalances bool) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Validate both parties before touching anything so a failure never
	// leaves the record without its deltas or vice versa.
	if tx.FromAccountID != nil {
		if _, ok := r.accounts[*tx.FromAccountID]; !ok {
			return nil, ErrAccountNotFound
		}
	}
	if tx.ToAccountID != nil {
		if _, ok := r.accounts[*tx.ToAccountID]; !ok {
			return nil, ErrAccountNotFound
		}
	}

	stored := *tx
	stored.ID = r.nextTransactionID
	r.nextTransactionID++
	stored.CreatedAt = time.Now()
	r.transactions[stored.ID] = &stored

	if applyBalances {
		if stored.FromAccountID != nil {
			_ = r.applyBalanceDeltaLocked(*stored.FromAccountID, stored.Amount.Neg())
		}
		if stored.ToAccountID != nil {
			_ = r.applyBalanceDeltaLocked(*stored.ToAccountID, stored.Amount)
		}
	}

	out := stored
	return &out, nil
}

func (r *MemoryRepository) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.transactions[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	out := *tx
	return &out, nil
}

func (r *MemoryRepository) GetTransactionsByAccountID(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var txs []domain.Transaction
	for _, tx := range r.transactions {
		fromMatch := tx.FromAccountID != nil && *tx.FromAccountID == accountID
		toMatch := tx.ToAccountID != nil && *tx.ToAccountID == accountID
		if fromMatch || toMatch {
			txs = append(txs, *tx)
		}
	}
	// Newest first; id breaks ties for records created in the same instant.
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
			return txs[i].ID > txs[j].ID
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
	return txs, nil
}

// Verification workflow methods

func (r *MemoryRepository) CreateVerificationStep(ctx context.Context, step *domain.VerificationStep) (*domain.VerificationStep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[step.UserID]; !ok {
		return nil, ErrUserNotFound
	}

	stored := *step
	stored.ID = r.nextVerificationID
	r.nextVerificationID++
	stored.CreatedAt = time.Now()
	r.verificationSteps[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *MemoryRepository) GetVerificationStep(ctx context.Context, id int64) (*domain.VerificationStep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	step, ok := r.verificationSteps[id]
	if !ok {
		return nil, ErrVerificationStepNotFound
	}
	out := *step
	return &out, nil
}

func (r *MemoryRepository) GetVerificationStepByUserID(ctx context.Context, userID int64) (*domain.VerificationStep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, step := range r.verificationSteps {
		if step.UserID == userID {
			out := *step
			return &out, nil
		}
	}
	return nil, ErrVerificationStepNotFound
}

func (r *MemoryRepository) ReplaceVerificationStep(ctx context.Context, step *domain.VerificationStep) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.verificationSteps[step.ID]; !ok {
		return ErrVerificationStepNotFound
	}
	stored := *step
	r.verificationSteps[step.ID] = &stored
	return nil
}

// Notification methods

func (r *MemoryRepository) CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *n
	stored.ID = r.nextNotificationID
	r.nextNotificationID++
	stored.CreatedAt = time.Now()
	r.notifications[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *MemoryRepository) GetNotification(ctx context.Context, id int64) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	out := *n
	return &out, nil
}

func (r *MemoryRepository) GetNotificationsByUserID(ctx context.Context, userID int64) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			items = append(items, *n)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (r *MemoryRepository) MarkNotificationRead(ctx context.Context, id int64) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	n.IsRead = true
	out := *n
	return &out, nil
}

// Payment-account directory methods

func (r *MemoryRepository) GetPaymentAccount(ctx context.Context, stepNumber int) (*domain.PaymentAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pa, ok := r.paymentAccounts[stepNumber]
	if !ok {
		return nil, ErrPaymentAccountNotFound
	}
	out := *pa
	return &out, nil
}

func (r *MemoryRepository) UpsertPaymentAccount(ctx context.Context, pa *domain.PaymentAccount) (*domain.PaymentAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *pa
	r.paymentAccounts[pa.StepNumber] = &stored
	out := stored
	return &out, nil
}
