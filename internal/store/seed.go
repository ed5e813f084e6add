/**
 * @description
 * Demo data seeding for the in-memory store: one admin, one client with a
 * funded current account, and a fresh all-pending verification record. The
 * seeded balance is deliberately left without transaction history so the
 * initial-deposit backfill path is exercised on first read.
 */

package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/euronova/banking-service/internal/domain"
)

// SeedResult names the identities created by SeedDemoData.
type SeedResult struct {
	Admin         *domain.User
	Client        *domain.User
	ClientAccount *domain.Account
}

// SeedDemoData populates the repository with the demo admin and client.
// Seeding an already-seeded store is an error so a misconfigured double
// bootstrap cannot duplicate the demo identities.
func SeedDemoData(ctx context.Context, repo Repository) (*SeedResult, error) {
	if existing, err := repo.GetUserByUsername(ctx, "admin"); err == nil {
		return nil, fmt.Errorf("store already seeded (admin user id %d)", existing.ID)
	}

	admin, err := repo.CreateUser(ctx, &domain.User{
		Username:  "admin",
		Email:     "admin@euronova-bank.com",
		FirstName: "Service",
		LastName:  "Administration",
		Role:      domain.RoleAdmin,
		Language:  "fr",
		IsActive:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	client, err := repo.CreateUser(ctx, &domain.User{
		Username:  "client1",
		Email:     "client1@example.com",
		FirstName: "Jean",
		LastName:  "Dupont",
		Role:      domain.RoleClient,
		Language:  "fr",
		IsActive:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("seed client: %w", err)
	}

	account, err := repo.CreateAccount(ctx, &domain.Account{
		UserID:      client.ID,
		AccountType: domain.AccountTypeCurrent,
		Balance:     decimal.NewFromInt(1000),
		Currency:    "EUR",
		IsActive:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("seed account: %w", err)
	}

	if _, err := repo.CreateVerificationStep(ctx, domain.NewVerificationStep(client.ID)); err != nil {
		return nil, fmt.Errorf("seed verification record: %w", err)
	}

	return &SeedResult{Admin: admin, Client: client, ClientAccount: account}, nil
}
