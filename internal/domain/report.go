package domain

import (
	"net/http"

	"github.com/shopspring/decimal"
)

// ============================================================
// Report fragments
// ============================================================

// Document is an opaque JSON object owned by an upstream service
// (customer profile, bank account, credit). Numbers are kept as json.Number.
type Document map[string]any

// BalancesByProduct maps productTypeId to a decimal figure.
type BalancesByProduct map[string]decimal.Decimal

// CardTransactions maps a card-type label to transactions, newest first.
type CardTransactions map[string][]Transaction

// CustomerSummary is returned by GET /api/v1/reports/customer-summary/{customerId}.
type CustomerSummary struct {
	CustomerInfo Document   `json:"customerInfo"`
	BankAccounts []Document `json:"bankAccounts"`
	Credits      []Document `json:"credits"`
}

// GeneralReport is returned by GET /api/v1/reports/general-report-by-product.
type GeneralReport struct {
	BankAccounts []Document `json:"bankAccounts"`
	Credits      []Document `json:"credits"`
}

// ============================================================
// Response envelope
// ============================================================

// MessageSuccess is the envelope message for every successful report.
const MessageSuccess = "Success"

// Envelope wraps every report response.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
	Code    int    `json:"code"`
}

// NewSuccess wraps a report fragment.
func NewSuccess(data any) Envelope {
	return Envelope{Message: MessageSuccess, Data: data, Code: http.StatusOK}
}

// NewFailure builds an envelope for a failed report. Data is always null.
func NewFailure(code int, message string) Envelope {
	return Envelope{Message: message, Code: code}
}
