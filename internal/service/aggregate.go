package service

import (
	"fmt"
	"sort"

	"github.com/boddenberg/reports-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

// BalancePrecision is the number of decimal places of averaged balances.
const BalancePrecision int32 = 2

// LastTransactionsLimit is how many card transactions the card report keeps.
const LastTransactionsLimit = 10

// ============================================================
// Pure aggregation over projected transactions
// ============================================================

// InWindow keeps transactions whose createdAt date falls inside window.
func InWindow(txs []domain.Transaction, window domain.DateRange) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if window.Contains(t.CreatedAt) {
			out = append(out, t)
		}
	}
	return out
}

// SumByProduct groups by productTypeId and sums value(t) per group.
// Only groups with at least one transaction appear.
func SumByProduct(txs []domain.Transaction, value func(domain.Transaction) decimal.Decimal) domain.BalancesByProduct {
	sums := make(domain.BalancesByProduct)
	for _, t := range txs {
		sums[t.ProductTypeID] = sums[t.ProductTypeID].Add(value(t))
	}
	return sums
}

// AverageDailyBalances sums amounts per product inside window and divides by
// the number of days in the window, rounding half-up to BalancePrecision.
func AverageDailyBalances(txs []domain.Transaction, window domain.DateRange) (domain.BalancesByProduct, error) {
	days := window.Days()
	if days <= 0 {
		return nil, fmt.Errorf("average balances: window %s..%s has %d days", window.FromString(), window.ToString(), days)
	}
	divisor := decimal.NewFromInt(days)

	totals := SumByProduct(InWindow(txs, window), func(t domain.Transaction) decimal.Decimal { return t.Amount })
	averages := make(domain.BalancesByProduct, len(totals))
	for product, total := range totals {
		averages[product] = total.DivRound(divisor, BalancePrecision)
	}
	return averages, nil
}

// CommissionsByProduct sums positive commissions per product inside window.
func CommissionsByProduct(txs []domain.Transaction, window domain.DateRange) domain.BalancesByProduct {
	charged := make([]domain.Transaction, 0, len(txs))
	for _, t := range InWindow(txs, window) {
		if t.HasCommission() {
			charged = append(charged, t)
		}
	}
	return SumByProduct(charged, func(t domain.Transaction) decimal.Decimal { return t.CommissionAmount })
}

// LatestCardTransactions keeps card transactions only, takes the n most recent
// and groups them by card-type label. The sort is stable: transactions with
// equal createdAt keep the order the upstream returned them in.
func LatestCardTransactions(txs []domain.Transaction, n int) domain.CardTransactions {
	cards := make([]domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.IsCard() {
			cards = append(cards, t)
		}
	}

	sortNewestFirst(cards)
	if len(cards) > n {
		cards = cards[:n]
	}

	grouped := make(domain.CardTransactions)
	for _, t := range cards {
		label := t.CardType.Label()
		grouped[label] = append(grouped[label], t)
	}
	return grouped
}

// sortNewestFirst orders by createdAt descending, stable on ties.
func sortNewestFirst(txs []domain.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}
