package client

import (
	"context"
	"errors"

	"github.com/boddenberg/reports-bfa-go/internal/domain"
)

// CustomerClient reads customer profiles from the customer service.
type CustomerClient struct {
	upstream *Upstream
}

// NewCustomerClient creates a new CustomerClient.
func NewCustomerClient(upstream *Upstream) *CustomerClient {
	return &CustomerClient{upstream: upstream}
}

// GetCustomer fetches GET /customers/{id}. The body must be a JSON object.
func (c *CustomerClient) GetCustomer(ctx context.Context, customerID string) (domain.Document, error) {
	var doc domain.Document
	if err := c.upstream.getJSON(ctx, customerPath("/customers", customerID), nil, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &domain.ErrDecode{Upstream: c.upstream.Name(), Err: errors.New("expected a customer object, got null")}
	}
	return doc, nil
}
