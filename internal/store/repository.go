package store

import (
	"context"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/shopspring/decimal"
)

// TransactionRepository is the durable copy of a user's transactions.
type TransactionRepository interface {
	ListTransactions(ctx context.Context, userID string) ([]finance.Transaction, error)
	CreateTransaction(ctx context.Context, t finance.Transaction) (finance.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, patch finance.TransactionPatch) (finance.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

type InvestmentRepository interface {
	ListInvestments(ctx context.Context, userID string) ([]finance.Investment, error)
	CreateInvestment(ctx context.Context, inv finance.Investment) (finance.Investment, error)
	UpdateInvestment(ctx context.Context, id string, patch finance.InvestmentPatch) (finance.Investment, error)
	DeleteInvestment(ctx context.Context, id string) error
}

// ProfileRepository returns finance.ErrNotFound (possibly wrapped) for unknown users.
type ProfileRepository interface {
	GetProfile(ctx context.Context, id string) (finance.Profile, error)
	SaveProfile(ctx context.Context, p finance.Profile) error
	AddToReservation(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error)
	SaveLayout(ctx context.Context, id, page string, widgetIDs []string) error
}

// Repository is everything the store persists through. *storage.Database satisfies it.
type Repository interface {
	TransactionRepository
	InvestmentRepository
	ProfileRepository
}
