/**
 * @description
 * This file contains the HTTP handlers for the banking-service's API
 * endpoints. Handlers are responsible for parsing incoming requests, calling
 * the appropriate methods on the application service, and writing the HTTP
 * response. They act as the bridge between the web layer and the business
 * logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - github.com/go-chi/chi/v5: URL parameter extraction.
 * - internal/app, internal/domain, internal/store: Service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/euronova/banking-service/internal/app"
	"github.com/euronova/banking-service/internal/domain"
	"github.com/euronova/banking-service/internal/i18n"
	"github.com/euronova/banking-service/internal/store"
)

// BankingHandlers holds the application service that handlers will use.
type BankingHandlers struct {
	service *app.Service
}

// NewBankingHandlers creates a new instance of BankingHandlers.
func NewBankingHandlers(service *app.Service) *BankingHandlers {
	return &BankingHandlers{service: service}
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Kind: kind, Message: message}})
}

// writeServiceError maps application and store errors onto the HTTP error
// contract.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, app.ErrMissingParties):
		writeError(w, http.StatusBadRequest, "missing_parties", err.Error())
	case errors.Is(err, app.ErrOutOfOrder):
		writeError(w, http.StatusBadRequest, "out_of_order", err.Error())
	case errors.Is(err, app.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, app.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", err.Error())
	case app.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		log.Printf("level=error component=api msg=\"unhandled service error\" err=%v", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func mustActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := GetActor(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	}
	return actor, ok
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// Transaction endpoints

// CreateTransactionHandler records a new money movement and fans out the
// posted-transaction notifications.
func (h *BankingHandlers) CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}

	var input domain.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	tx, err := h.service.RecordTransaction(r.Context(), actor, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.service.NotifyTransactionPosted(r.Context(), tx)

	writeJSON(w, http.StatusCreated, tx)
}

// GetTransactionHandler returns a single transaction by id.
func (h *BankingHandlers) GetTransactionHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid transaction id")
		return
	}

	tx, err := h.service.GetTransaction(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// ListAccountTransactionsHandler returns an account's history, newest first.
func (h *BankingHandlers) ListAccountTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	accountID, err := pathID(r, "accountId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid account id")
		return
	}

	txs, err := h.service.ListAccountTransactions(r.Context(), actor, accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

// Account endpoints

func (h *BankingHandlers) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	accountID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid account id")
		return
	}

	account, err := h.service.GetAccount(r.Context(), actor, accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// ListUserAccountsHandler returns a user's accounts. Without a userId path
// parameter it serves the caller's own accounts.
func (h *BankingHandlers) ListUserAccountsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	userID := actor.UserID
	if raw := chi.URLParam(r, "userId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation", "invalid user id")
			return
		}
		userID = parsed
	}

	accounts, err := h.service.ListUserAccounts(r.Context(), actor, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

type openAccountRequest struct {
	UserID         int64           `json:"userId"`
	AccountType    string          `json:"accountType"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

// OpenAccountHandler creates an account for a user. Admin only.
func (h *BankingHandlers) OpenAccountHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}

	var req openAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	account, err := h.service.OpenAccount(r.Context(), actor, req.UserID, req.AccountType, req.InitialBalance)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

type updateAccountRequest struct {
	IsActive     *bool            `json:"isActive"`
	BalanceDelta *decimal.Decimal `json:"balanceDelta"`
}

// UpdateAccountHandler applies admin account mutations: the active flag
// and/or a balance correction.
func (h *BankingHandlers) UpdateAccountHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	accountID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid account id")
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if req.IsActive == nil && req.BalanceDelta == nil {
		writeError(w, http.StatusBadRequest, "validation", "nothing to update")
		return
	}
	// Reject the whole patch up front so a bad delta cannot land after the
	// active flag already changed.
	if req.BalanceDelta != nil && req.BalanceDelta.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid_amount", "balance delta must be non-zero")
		return
	}

	var account *domain.Account
	if req.IsActive != nil {
		account, err = h.service.SetAccountActive(r.Context(), actor, accountID, *req.IsActive)
		if err != nil {
			writeServiceError(w, err)
			return
		}
	}
	if req.BalanceDelta != nil {
		account, err = h.service.AdjustAccountBalance(r.Context(), actor, accountID, *req.BalanceDelta)
		if err != nil {
			writeServiceError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, account)
}

// User endpoints

func (h *BankingHandlers) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid user id")
		return
	}

	user, err := h.service.GetUser(r.Context(), actor, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateUserRequest struct {
	IsActive *bool   `json:"isActive"`
	Language *string `json:"language"`
}

// UpdateUserHandler applies the allowed user mutations: the active flag
// (admin only) and the preferred language (self or admin).
func (h *BankingHandlers) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid user id")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if req.IsActive == nil && req.Language == nil {
		writeError(w, http.StatusBadRequest, "validation", "nothing to update")
		return
	}

	var user *domain.User
	if req.Language != nil {
		user, err = h.service.SetUserLanguage(r.Context(), actor, userID, *req.Language)
		if err != nil {
			if errors.Is(err, app.ErrUnauthorized) || app.IsNotFound(err) {
				writeServiceError(w, err)
				return
			}
			writeError(w, http.StatusBadRequest, "validation", err.Error())
			return
		}
	}
	if req.IsActive != nil {
		user, err = h.service.SetUserActive(r.Context(), actor, userID, *req.IsActive)
		if err != nil {
			writeServiceError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, user)
}

// Verification workflow endpoints

type verificationResponse struct {
	*domain.VerificationStep
	CurrentStage int                 `json:"currentStage"`
	AllCompleted bool                `json:"allCompleted"`
	Steps        []domain.StepDetail `json:"steps"`
}

func (h *BankingHandlers) verificationView(r *http.Request, rec *domain.VerificationStep) verificationResponse {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = i18n.DefaultLanguage
	}
	return verificationResponse{
		VerificationStep: rec,
		CurrentStage:     rec.CurrentStage(),
		AllCompleted:     rec.AllCompleted(),
		Steps:            h.service.StepDetails(rec, lang),
	}
}

// GetVerificationForUserHandler returns the verification record for a user,
// or a JSON null when none exists yet. Without a userId path parameter it
// serves the caller's own record.
func (h *BankingHandlers) GetVerificationForUserHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	userID := actor.UserID
	if raw := chi.URLParam(r, "userId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation", "invalid user id")
			return
		}
		userID = parsed
	}

	rec, err := h.service.GetVerificationForUser(r.Context(), actor, userID)
	if err != nil {
		if errors.Is(err, store.ErrVerificationStepNotFound) {
			writeJSON(w, http.StatusOK, json.RawMessage("null"))
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.verificationView(r, rec))
}

type createVerificationRequest struct {
	UserID int64 `json:"userId"`
}

// CreateVerificationRecordHandler provisions a fresh verification record for
// a user. Admin only; returns the existing record when one already exists.
func (h *BankingHandlers) CreateVerificationRecordHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}

	var req createVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "validation", "userId is required")
		return
	}

	rec, err := h.service.CreateVerificationRecord(r.Context(), actor, req.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.verificationView(r, rec))
}

// UpdateVerificationStepsHandler applies a partial update to a verification
// record, subject to the actor's permissions.
func (h *BankingHandlers) UpdateVerificationStepsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid verification id")
		return
	}

	var req domain.VerificationStepUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	rec, err := h.service.UpdateVerificationSteps(r.Context(), actor, id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.verificationView(r, rec))
}

// UnlockAllStepsHandler marks every stage complete in one shot. Admin only.
func (h *BankingHandlers) UnlockAllStepsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid verification id")
		return
	}

	rec, err := h.service.UnlockAllSteps(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.verificationView(r, rec))
}

// SendStepReminderHandler emails a client their current stage's fee details.
// Admin only.
func (h *BankingHandlers) SendStepReminderHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid user id")
		return
	}

	sent, err := h.service.SendStepReminder(r.Context(), actor, userID)
	if err != nil {
		if errors.Is(err, app.ErrUnauthorized) || app.IsNotFound(err) {
			writeServiceError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"sent": sent})
}

// Payment-account directory endpoints

// GetPaymentAccountHandler returns the beneficiary configured for a stage.
func (h *BankingHandlers) GetPaymentAccountHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := mustActor(w, r); !ok {
		return
	}
	stepNumber, err := strconv.Atoi(chi.URLParam(r, "stepNumber"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid step number")
		return
	}

	pa, err := h.service.GetPaymentAccount(r.Context(), stepNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pa)
}

// UpsertPaymentAccountHandler overwrites the beneficiary of a stage. Admin
// only.
func (h *BankingHandlers) UpsertPaymentAccountHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	stepNumber, err := strconv.Atoi(chi.URLParam(r, "stepNumber"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid step number")
		return
	}

	var pa domain.PaymentAccount
	if err := json.NewDecoder(r.Body).Decode(&pa); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	pa.StepNumber = stepNumber
	if pa.AccountOwner == "" || pa.AccountNumber == "" {
		writeError(w, http.StatusBadRequest, "validation", "accountOwner and accountNumber are required")
		return
	}

	saved, err := h.service.UpsertPaymentAccount(r.Context(), actor, &pa)
	if err != nil {
		if errors.Is(err, app.ErrUnauthorized) {
			writeServiceError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// Notification endpoints

// ListNotificationsHandler returns the authenticated user's notifications,
// newest first.
func (h *BankingHandlers) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}

	items, err := h.service.ListNotifications(r.Context(), actor, actor.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if items == nil {
		items = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, items)
}

// MarkNotificationReadHandler flips a notification's read flag.
func (h *BankingHandlers) MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid notification id")
		return
	}

	n, err := h.service.MarkNotificationRead(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}
