/**
 * @description
 * Sentinel errors returned by the application services. The API layer maps
 * them to HTTP status codes and the structured error payload.
 */

package app

import "errors"

var (
	// ErrInvalidAmount is returned when a transaction amount is zero,
	// negative, or not a valid number.
	ErrInvalidAmount = errors.New("transaction amount must be positive")

	// ErrMissingParties is returned when a transaction names neither a
	// source nor a destination account.
	ErrMissingParties = errors.New("transaction must reference at least one account")

	// ErrOutOfOrder is returned when a client attempts to complete a
	// verification stage before the preceding stage is complete.
	ErrOutOfOrder = errors.New("verification stages must be completed in order")

	// ErrUnauthorized is returned when the actor is not allowed to perform
	// the requested mutation.
	ErrUnauthorized = errors.New("actor is not allowed to perform this operation")

	// ErrRateLimited is returned when a client exceeds the step-completion
	// attempt budget.
	ErrRateLimited = errors.New("too many verification attempts, retry later")
)
