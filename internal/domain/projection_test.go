package domain_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/reports-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

func ptr[T any](v T) *T { return &v }

func validRaw() domain.RawTransaction {
	return domain.RawTransaction{
		ID:              "tx-1",
		CustomerID:      "cust-1",
		ProductType:     "BANK_ACCOUNT",
		ProductTypeID:   "acc-1",
		TransactionType: "DEPOSIT",
		Amount:          ptr(decimal.RequireFromString("10.50")),
		Status:          "APPROVED",
		CreatedAt:       "2026-10-05T14:00:00",
	}
}

func TestProjectTransaction_Valid(t *testing.T) {
	raw := validRaw()
	raw.CardType = ptr("credit")
	raw.CommissionAmount = ptr(decimal.RequireFromString("0.25"))

	tx, err := domain.ProjectTransaction(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.CardType == nil || *tx.CardType != domain.CardCredit {
		t.Errorf("expected CREDIT card, got %v", tx.CardType)
	}
	if !tx.HasCommission() {
		t.Error("expected commission")
	}
	want := time.Date(2026, 10, 5, 14, 0, 0, 0, time.UTC)
	if !tx.CreatedAt.Equal(want) {
		t.Errorf("expected %s, got %s", want, tx.CreatedAt)
	}
}

func TestProjectTransaction_AbsentCommissionIsZero(t *testing.T) {
	tx, err := domain.ProjectTransaction(validRaw())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !tx.CommissionAmount.IsZero() || tx.HasCommission() {
		t.Errorf("expected zero commission, got %s", tx.CommissionAmount)
	}
	if tx.IsCard() {
		t.Error("expected non-card transaction")
	}
}

func TestProjectTransaction_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.RawTransaction)
	}{
		{"missing id", func(r *domain.RawTransaction) { r.ID = "" }},
		{"blank id", func(r *domain.RawTransaction) { r.ID = "   " }},
		{"missing amount", func(r *domain.RawTransaction) { r.Amount = nil }},
		{"missing createdAt", func(r *domain.RawTransaction) { r.CreatedAt = "" }},
		{"malformed createdAt", func(r *domain.RawTransaction) { r.CreatedAt = "yesterday" }},
		{"unknown card type", func(r *domain.RawTransaction) { r.CardType = ptr("PREPAID") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)
			if _, err := domain.ProjectTransaction(raw); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestProjectTransactions_FailsOnFirstBadRecord(t *testing.T) {
	bad := validRaw()
	bad.Amount = nil

	if _, err := domain.ProjectTransactions([]domain.RawTransaction{validRaw(), bad}); err == nil {
		t.Fatal("expected error, bad records must not be skipped")
	}
}

func TestParseTimestamp_Layouts(t *testing.T) {
	tests := []struct {
		in   string
		date string
	}{
		{"2026-10-05T14:00:00", "2026-10-05"},
		{"2026-10-05T14:00:00.123456", "2026-10-05"},
		{"2026-10-05T23:30:00-05:00", "2026-10-05"},
		{"2026-10-05T00:10:00Z", "2026-10-05"},
		{"2026-10-05 08:00:00", "2026-10-05"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ts, err := domain.ParseTimestamp(tt.in)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := domain.CalendarDate(ts).Format(domain.DateLayout); got != tt.date {
				t.Errorf("expected date %s, got %s", tt.date, got)
			}
		})
	}
}

func TestTransactionJSON_KeepsCreatedAtForm(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-10-05T14:00:00", "2026-10-05T14:00:00"},
		{"2026-10-02T10:00:00.123", "2026-10-02T10:00:00.123"},
		{"2026-10-05T23:30:00-05:00", "2026-10-05T23:30:00-05:00"},
		{"2026-10-05T00:10:00Z", "2026-10-05T00:10:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			raw := validRaw()
			raw.CreatedAt = tt.in
			tx, err := domain.ProjectTransaction(raw)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			b, err := json.Marshal(tx)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if want := `"createdAt":"` + tt.want + `"`; !strings.Contains(string(b), want) {
				t.Errorf("expected %s in %s", want, b)
			}

			var back domain.Transaction
			if err := json.Unmarshal(b, &back); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !back.CreatedAt.Equal(tx.CreatedAt) {
				t.Errorf("expected %s after round trip, got %s", tx.CreatedAt, back.CreatedAt)
			}
			again, _ := json.Marshal(back)
			if string(again) != string(b) {
				t.Errorf("round trip changed payload\nfirst:  %s\nsecond: %s", b, again)
			}
		})
	}
}

func TestTransactionJSON_Fields(t *testing.T) {
	raw := validRaw()
	raw.CardType = ptr("DEBIT")
	tx, err := domain.ProjectTransaction(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	b, _ := json.Marshal(tx)
	for _, want := range []string{`"id":"tx-1"`, `"amount":10.5`, `"cardType":"DEBIT"`, `"commissionAmount":0`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("expected %s in %s", want, b)
		}
	}
	if strings.Count(string(b), `"createdAt"`) != 1 {
		t.Errorf("expected a single createdAt key in %s", b)
	}
}
