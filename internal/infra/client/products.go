package client

import (
	"context"
	"errors"

	"github.com/boddenberg/reports-bfa-go/internal/domain"
)

// BankAccountsClient reads bank accounts from the bank-account service.
type BankAccountsClient struct {
	upstream *Upstream
}

// NewBankAccountsClient creates a new BankAccountsClient.
func NewBankAccountsClient(upstream *Upstream) *BankAccountsClient {
	return &BankAccountsClient{upstream: upstream}
}

// ListBankAccounts fetches GET /bank_accounts/customer/{id}[?dateFrom=&dateTo=].
func (c *BankAccountsClient) ListBankAccounts(ctx context.Context, customerID string, window *domain.DateRange) ([]domain.Document, error) {
	return listDocuments(ctx, c.upstream, customerPath("/bank_accounts/customer", customerID), window)
}

// CreditsClient reads credits from the credit service.
type CreditsClient struct {
	upstream *Upstream
}

// NewCreditsClient creates a new CreditsClient.
func NewCreditsClient(upstream *Upstream) *CreditsClient {
	return &CreditsClient{upstream: upstream}
}

// ListCredits fetches GET /credits/customer/{id}[?dateFrom=&dateTo=].
func (c *CreditsClient) ListCredits(ctx context.Context, customerID string, window *domain.DateRange) ([]domain.Document, error) {
	return listDocuments(ctx, c.upstream, customerPath("/credits/customer", customerID), window)
}

// listDocuments expects a JSON array of objects. A null body is a shape error.
func listDocuments(ctx context.Context, u *Upstream, path string, window *domain.DateRange) ([]domain.Document, error) {
	var docs []domain.Document
	if err := u.getJSON(ctx, path, windowQuery(window), &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		return nil, &domain.ErrDecode{Upstream: u.Name(), Err: errors.New("expected a list, got null")}
	}
	return docs, nil
}
