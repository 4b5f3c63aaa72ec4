package client

import (
	"context"
	"errors"

	"github.com/boddenberg/reports-bfa-go/internal/domain"
)

// TransactionsClient reads transactions from the transaction service.
type TransactionsClient struct {
	upstream *Upstream
}

// NewTransactionsClient creates a new TransactionsClient.
func NewTransactionsClient(upstream *Upstream) *TransactionsClient {
	return &TransactionsClient{upstream: upstream}
}

// ListByCustomer fetches GET /transactions/customer/{id}.
func (c *TransactionsClient) ListByCustomer(ctx context.Context, customerID string) ([]domain.Transaction, error) {
	return c.list(ctx, customerPath("/transactions/customer", customerID))
}

// ListAll fetches GET /transactions.
func (c *TransactionsClient) ListAll(ctx context.Context) ([]domain.Transaction, error) {
	return c.list(ctx, "/transactions")
}

func (c *TransactionsClient) list(ctx context.Context, path string) ([]domain.Transaction, error) {
	var raws []domain.RawTransaction
	if err := c.upstream.getJSON(ctx, path, nil, &raws); err != nil {
		return nil, err
	}
	if raws == nil {
		return nil, &domain.ErrDecode{Upstream: c.upstream.Name(), Err: errors.New("expected a list, got null")}
	}

	transactions, err := domain.ProjectTransactions(raws)
	if err != nil {
		return nil, &domain.ErrDecode{Upstream: c.upstream.Name(), Err: err}
	}
	return transactions, nil
}
