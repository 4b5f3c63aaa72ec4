// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the report
// engine from the HTTP clients of the upstream services.
package port

import (
	"context"

	"github.com/boddenberg/reports-bfa-go/internal/domain"
)

// TransactionsFetcher retrieves projected transactions from the transaction service.
type TransactionsFetcher interface {
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Transaction, error)
	ListAll(ctx context.Context) ([]domain.Transaction, error)
}

// CustomerFetcher retrieves a customer profile.
type CustomerFetcher interface {
	GetCustomer(ctx context.Context, customerID string) (domain.Document, error)
}

// BankAccountsFetcher retrieves the bank accounts owned by a customer.
// A non-nil window is forwarded to the upstream as dateFrom/dateTo.
type BankAccountsFetcher interface {
	ListBankAccounts(ctx context.Context, customerID string, window *domain.DateRange) ([]domain.Document, error)
}

// CreditsFetcher retrieves the credits owned by a customer.
// A non-nil window is forwarded to the upstream as dateFrom/dateTo.
type CreditsFetcher interface {
	ListCredits(ctx context.Context, customerID string, window *domain.DateRange) ([]domain.Document, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
