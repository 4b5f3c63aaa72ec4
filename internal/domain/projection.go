package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RawTransaction is a transaction record exactly as the transaction service
// sends it. Optional fields are pointers so absence can be told apart from zero.
type RawTransaction struct {
	ID               string           `json:"id"`
	CustomerID       string           `json:"customerId"`
	ProductType      string           `json:"productType"`
	ProductTypeID    string           `json:"productTypeId"`
	TransactionType  string           `json:"transactionType"`
	CardType         *string          `json:"cardType"`
	CardID           string           `json:"cardId"`
	Amount           *decimal.Decimal `json:"amount"`
	Status           string           `json:"status"`
	CreatedAt        string           `json:"createdAt"`
	CommissionAmount *decimal.Decimal `json:"commissionAmount"`
}

// LocalTimestampLayout is the zone-less local date-time the transaction
// service emits. Fractional seconds are optional.
const LocalTimestampLayout = "2006-01-02T15:04:05.999999999"

// timestampLayouts are tried in order; zoned marks layouts carrying an offset.
var timestampLayouts = []struct {
	layout string
	zoned  bool
}{
	{LocalTimestampLayout, false},
	{time.RFC3339Nano, true},
	{"2006-01-02 15:04:05", false},
}

// ProjectTransaction maps a raw record into a Transaction.
// A record without id, amount or a parseable createdAt is rejected, as is an
// unknown card type. Absent commission becomes zero.
func ProjectTransaction(raw RawTransaction) (Transaction, error) {
	if strings.TrimSpace(raw.ID) == "" {
		return Transaction{}, errors.New("transaction: missing id")
	}
	if raw.Amount == nil {
		return Transaction{}, fmt.Errorf("transaction %s: missing amount", raw.ID)
	}

	createdAt, zoned, err := parseTimestamp(raw.CreatedAt)
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: %w", raw.ID, err)
	}

	var cardType *CardType
	if raw.CardType != nil && *raw.CardType != "" {
		ct := CardType(strings.ToUpper(*raw.CardType))
		if !ct.Valid() {
			return Transaction{}, fmt.Errorf("transaction %s: unknown card type %q", raw.ID, *raw.CardType)
		}
		cardType = &ct
	}

	commission := decimal.Zero
	if raw.CommissionAmount != nil {
		commission = *raw.CommissionAmount
	}

	return Transaction{
		ID:               raw.ID,
		CustomerID:       raw.CustomerID,
		ProductType:      ProductType(raw.ProductType),
		ProductTypeID:    raw.ProductTypeID,
		TransactionType:  TransactionType(raw.TransactionType),
		CardType:         cardType,
		CardID:           raw.CardID,
		Amount:           *raw.Amount,
		Status:           TransactionStatus(raw.Status),
		CreatedAt:        createdAt,
		CommissionAmount: commission,
		zoned:            zoned,
	}, nil
}

// ProjectTransactions projects every record and fails on the first bad one.
func ProjectTransactions(raws []RawTransaction) ([]Transaction, error) {
	out := make([]Transaction, 0, len(raws))
	for i, raw := range raws {
		t, err := ProjectTransaction(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// ParseTimestamp parses a createdAt value. Zone-less values are read as UTC,
// which leaves their calendar date untouched.
func ParseTimestamp(s string) (time.Time, error) {
	t, _, err := parseTimestamp(s)
	return t, err
}

func parseTimestamp(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, errors.New("missing createdAt")
	}
	for _, l := range timestampLayouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return t, l.zoned, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("malformed createdAt %q", s)
}
