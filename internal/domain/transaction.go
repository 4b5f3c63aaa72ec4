package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Upstream services exchange amounts as JSON numbers; keep the same wire format.
	decimal.MarshalJSONWithoutQuotes = true
}

// ============================================================
// Transaction enums
// ============================================================

// ProductType identifies the kind of product a transaction belongs to.
type ProductType string

const (
	ProductBankAccount ProductType = "BANK_ACCOUNT"
	ProductCredit      ProductType = "CREDIT"
)

// TransactionType is the movement kind.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTransfer   TransactionType = "TRANSFER"
	TransactionCommission TransactionType = "COMMISSION"
)

// TransactionStatus is the processing state of a transaction.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "PENDING"
	StatusApproved TransactionStatus = "APPROVED"
	StatusRejected TransactionStatus = "REJECTED"
)

// CardType is set only for card transactions.
type CardType string

const (
	CardDebit  CardType = "DEBIT"
	CardCredit CardType = "CREDIT"
)

// Valid reports whether c is a known card type.
func (c CardType) Valid() bool {
	return c == CardDebit || c == CardCredit
}

// Label is the grouping key used by card reports.
func (c CardType) Label() string {
	return string(c)
}

// ============================================================
// Transaction
// ============================================================

// Transaction is the normalized shape consumed by the report engine.
// It is produced by ProjectTransaction and never mutated afterwards.
type Transaction struct {
	ID               string            `json:"id"`
	CustomerID       string            `json:"customerId"`
	ProductType      ProductType       `json:"productType"`
	ProductTypeID    string            `json:"productTypeId"`
	TransactionType  TransactionType   `json:"transactionType"`
	CardType         *CardType         `json:"cardType"`
	CardID           string            `json:"cardId,omitempty"`
	Amount           decimal.Decimal   `json:"amount"`
	Status           TransactionStatus `json:"status"`
	CreatedAt        time.Time         `json:"createdAt"`
	CommissionAmount decimal.Decimal   `json:"commissionAmount"`

	// zoned is set when createdAt arrived with an explicit offset.
	// Zone-less values are echoed zone-less.
	zoned bool
}

// transactionFields has Transaction's fields without its JSON methods.
type transactionFields Transaction

// MarshalJSON writes createdAt in the form the upstream sent it.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		transactionFields
		CreatedAt string `json:"createdAt"`
	}{transactionFields(t), t.createdAtWire()})
}

// UnmarshalJSON accepts every createdAt form ProjectTransaction accepts.
func (t *Transaction) UnmarshalJSON(b []byte) error {
	aux := struct {
		*transactionFields
		CreatedAt string `json:"createdAt"`
	}{transactionFields: (*transactionFields)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.CreatedAt == "" {
		return nil
	}
	createdAt, zoned, err := parseTimestamp(aux.CreatedAt)
	if err != nil {
		return err
	}
	t.CreatedAt, t.zoned = createdAt, zoned
	return nil
}

func (t Transaction) createdAtWire() string {
	if t.zoned {
		return t.CreatedAt.Format(time.RFC3339Nano)
	}
	return t.CreatedAt.Format(LocalTimestampLayout)
}

// IsCard reports whether the transaction was made with a card.
func (t Transaction) IsCard() bool {
	return t.CardType != nil
}

// HasCommission reports whether a positive commission was charged.
func (t Transaction) HasCommission() bool {
	return t.CommissionAmount.IsPositive()
}
