// Package service provides the business logic layer (use cases).
// ReportService builds the customer financial reports out of the
// transaction, customer, bank-account and credit services.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/reports-bfa-go/internal/domain"
	"github.com/boddenberg/reports-bfa-go/internal/infra/cache"
	"github.com/boddenberg/reports-bfa-go/internal/infra/observability"
	"github.com/boddenberg/reports-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/report")

// Operation names used for metrics and logs.
const (
	OpDailyAverageBalances = "daily_average_balances"
	OpCommissionsByProduct = "commissions_by_product"
	OpCustomerSummary      = "customer_summary"
	OpGeneralReport        = "general_report_by_product"
	OpLastCardTransactions = "last_card_transactions"
	OpCustomerTransactions = "customer_transactions"
)

const (
	customerCacheName    = "customer"
	upstreamTransactions = "transactions"
	upstreamCustomers    = "customers"
	upstreamBankAccounts = "bank_accounts"
	upstreamCredits      = "credits"
)

// ReportService computes the reports. It holds no per-request state and is
// safe for concurrent use.
type ReportService struct {
	transactions port.TransactionsFetcher
	customers    port.CustomerFetcher
	bankAccounts port.BankAccountsFetcher
	credits      port.CreditsFetcher
	cache        port.Cache[domain.Document]
	metrics      *observability.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// Option customizes a ReportService.
type Option func(*ReportService)

// WithClock overrides the clock used for the current-month window.
func WithClock(now func() time.Time) Option {
	return func(s *ReportService) { s.now = now }
}

// NewReportService creates the report service with all dependencies injected.
func NewReportService(
	transactions port.TransactionsFetcher,
	customers port.CustomerFetcher,
	bankAccounts port.BankAccountsFetcher,
	credits port.CreditsFetcher,
	cache port.Cache[domain.Document],
	metrics *observability.Metrics,
	logger *zap.Logger,
	opts ...Option,
) *ReportService {
	s := &ReportService{
		transactions: transactions,
		customers:    customers,
		bankAccounts: bankAccounts,
		credits:      credits,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ============================================================
// Reports
// ============================================================

// DailyAverageBalances averages each product's transaction amounts over the
// days of the current month.
func (s *ReportService) DailyAverageBalances(ctx context.Context, customerID string) (result domain.BalancesByProduct, err error) {
	ctx, done := s.begin(ctx, OpDailyAverageBalances, customerID)
	defer func() { done(err) }()

	if err := requireCustomerID(customerID); err != nil {
		return nil, err
	}

	window := domain.MonthOf(s.now())
	txs, err := s.fetchCustomerTransactions(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return AverageDailyBalances(txs, window)
}

// CommissionsByProduct totals positive commissions per product over every
// customer's transactions inside window.
func (s *ReportService) CommissionsByProduct(ctx context.Context, window domain.DateRange) (result domain.BalancesByProduct, err error) {
	ctx, done := s.begin(ctx, OpCommissionsByProduct, "")
	defer func() { done(err) }()

	txs, err := s.transactions.ListAll(ctx)
	if err != nil {
		s.upstreamFailed(upstreamTransactions, "", err)
		return nil, fmt.Errorf("transactions fetch: %w", err)
	}

	return CommissionsByProduct(txs, window), nil
}

// CustomerSummary fetches profile, bank accounts and credits concurrently.
// Any failure fails the whole summary.
func (s *ReportService) CustomerSummary(ctx context.Context, customerID string) (result *domain.CustomerSummary, err error) {
	ctx, done := s.begin(ctx, OpCustomerSummary, customerID)
	defer func() { done(err) }()

	if err := requireCustomerID(customerID); err != nil {
		return nil, err
	}

	var (
		profile  domain.Document
		accounts []domain.Document
		credits  []domain.Document
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.fetchCustomer(gCtx, customerID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})

	g.Go(func() error {
		a, err := s.fetchBankAccounts(gCtx, customerID, nil)
		if err != nil {
			return err
		}
		accounts = a
		return nil
	})

	g.Go(func() error {
		c, err := s.fetchCredits(gCtx, customerID, nil)
		if err != nil {
			return err
		}
		credits = c
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.CustomerSummary{
		CustomerInfo: profile,
		BankAccounts: accounts,
		Credits:      credits,
	}, nil
}

// GeneralReportByProduct fetches bank accounts and credits concurrently,
// forwarding window to both upstreams.
func (s *ReportService) GeneralReportByProduct(ctx context.Context, customerID string, window domain.DateRange) (result *domain.GeneralReport, err error) {
	ctx, done := s.begin(ctx, OpGeneralReport, customerID)
	defer func() { done(err) }()

	if err := requireCustomerID(customerID); err != nil {
		return nil, err
	}

	var accounts, credits []domain.Document

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a, err := s.fetchBankAccounts(gCtx, customerID, &window)
		if err != nil {
			return err
		}
		accounts = a
		return nil
	})

	g.Go(func() error {
		c, err := s.fetchCredits(gCtx, customerID, &window)
		if err != nil {
			return err
		}
		credits = c
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.GeneralReport{BankAccounts: accounts, Credits: credits}, nil
}

// LastCardTransactions returns the customer's ten most recent card
// transactions grouped by card type.
func (s *ReportService) LastCardTransactions(ctx context.Context, customerID string) (result domain.CardTransactions, err error) {
	ctx, done := s.begin(ctx, OpLastCardTransactions, customerID)
	defer func() { done(err) }()

	if err := requireCustomerID(customerID); err != nil {
		return nil, err
	}

	txs, err := s.fetchCustomerTransactions(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return LatestCardTransactions(txs, LastTransactionsLimit), nil
}

// CustomerTransactions lists a customer's transactions, newest first.
func (s *ReportService) CustomerTransactions(ctx context.Context, customerID string) (result []domain.Transaction, err error) {
	ctx, done := s.begin(ctx, OpCustomerTransactions, customerID)
	defer func() { done(err) }()

	if err := requireCustomerID(customerID); err != nil {
		return nil, err
	}

	txs, err := s.fetchCustomerTransactions(ctx, customerID)
	if err != nil {
		return nil, err
	}

	sorted := make([]domain.Transaction, len(txs))
	copy(sorted, txs)
	sortNewestFirst(sorted)
	return sorted, nil
}

// ============================================================
// Upstream fetches
// ============================================================

func (s *ReportService) fetchCustomerTransactions(ctx context.Context, customerID string) ([]domain.Transaction, error) {
	txs, err := s.transactions.ListByCustomer(ctx, customerID)
	if err != nil {
		s.upstreamFailed(upstreamTransactions, customerID, err)
		return nil, fmt.Errorf("transactions fetch: %w", err)
	}
	return txs, nil
}

// fetchCustomer reads the profile through the cache.
func (s *ReportService) fetchCustomer(ctx context.Context, customerID string) (domain.Document, error) {
	cacheKey := cache.CustomerKey(customerID)
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.metrics.IncrCacheHit(customerCacheName)
		return cached, nil
	}
	s.metrics.IncrCacheMiss(customerCacheName)

	p, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		s.upstreamFailed(upstreamCustomers, customerID, err)
		return nil, fmt.Errorf("customer fetch: %w", err)
	}
	s.cache.Set(cacheKey, p)
	return p, nil
}

func (s *ReportService) fetchBankAccounts(ctx context.Context, customerID string, window *domain.DateRange) ([]domain.Document, error) {
	a, err := s.bankAccounts.ListBankAccounts(ctx, customerID, window)
	if err != nil {
		s.upstreamFailed(upstreamBankAccounts, customerID, err)
		return nil, fmt.Errorf("bank accounts fetch: %w", err)
	}
	return a, nil
}

func (s *ReportService) fetchCredits(ctx context.Context, customerID string, window *domain.DateRange) ([]domain.Document, error) {
	c, err := s.credits.ListCredits(ctx, customerID, window)
	if err != nil {
		s.upstreamFailed(upstreamCredits, customerID, err)
		return nil, fmt.Errorf("credits fetch: %w", err)
	}
	return c, nil
}

// ============================================================
// Helpers
// ============================================================

// begin opens the operation span and returns a func that records duration,
// outcome and span status.
func (s *ReportService) begin(ctx context.Context, operation, customerID string) (context.Context, func(error)) {
	ctx, span := tracer.Start(ctx, "ReportService."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("report.operation", operation)),
	)
	if customerID != "" {
		span.SetAttributes(attribute.String("customer.id", customerID))
	}
	start := time.Now()

	return ctx, func(err error) {
		s.metrics.RecordRequestDuration(operation, time.Since(start))
		if err != nil {
			s.metrics.IncrRequest(operation, observability.StatusError)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			s.metrics.IncrRequest(operation, observability.StatusSuccess)
		}
		span.End()
	}
}

func (s *ReportService) upstreamFailed(upstream, customerID string, err error) {
	// Siblings cancelled by errgroup after another fetch failed are not upstream faults.
	if errors.Is(err, context.Canceled) {
		return
	}
	s.logger.Error("upstream fetch failed",
		zap.String("upstream", upstream),
		zap.String("customer_id", customerID),
		zap.Error(err),
	)
	s.metrics.IncrUpstreamError(upstream)
}

func requireCustomerID(customerID string) error {
	if strings.TrimSpace(customerID) == "" {
		return &domain.ErrValidation{Field: "customerId", Message: "required"}
	}
	return nil
}
