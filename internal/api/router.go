/**
 * @description
 * This file sets up the HTTP router for the banking-service. It defines the
 * API endpoints, associates them with their corresponding handlers, and
 * applies any necessary middleware, such as for authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// BankingRoutes creates and returns the router for the banking service.
func BankingRoutes(h *BankingHandlers, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		r.Route("/api", func(r chi.Router) {
			// Ledger
			r.Post("/transactions", h.CreateTransactionHandler)
			r.Get("/transactions/{id}", h.GetTransactionHandler)
			r.Get("/transactions/account/{accountId}", h.ListAccountTransactionsHandler)

			// Accounts
			r.Post("/accounts", h.OpenAccountHandler)
			r.Get("/accounts/user", h.ListUserAccountsHandler)
			r.Get("/accounts/user/{userId}", h.ListUserAccountsHandler)
			r.Get("/accounts/{id}", h.GetAccountHandler)
			r.Patch("/accounts/{id}", h.UpdateAccountHandler)

			// Users
			r.Get("/users/{id}", h.GetUserHandler)
			r.Patch("/users/{id}", h.UpdateUserHandler)

			// Verification workflow
			r.Get("/verification-steps/user", h.GetVerificationForUserHandler)
			r.Get("/verification-steps/user/{userId}", h.GetVerificationForUserHandler)
			r.Post("/verification-steps", h.CreateVerificationRecordHandler)
			r.Patch("/verification-steps/{id}", h.UpdateVerificationStepsHandler)
			r.Post("/verification-steps/{id}/unlock-all", h.UnlockAllStepsHandler)
			r.Post("/verification-steps/remind/{userId}", h.SendStepReminderHandler)

			// Payment-account directory
			r.Get("/payment-account/{stepNumber}", h.GetPaymentAccountHandler)
			r.Post("/payment-account/{stepNumber}", h.UpsertPaymentAccountHandler)

			// Notifications
			r.Get("/notifications", h.ListNotificationsHandler)
			r.Patch("/notifications/{id}/read", h.MarkNotificationReadHandler)
		})
	})

	return r
}
