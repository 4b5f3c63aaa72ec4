package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/reports-bfa-go/internal/domain"
	"github.com/boddenberg/reports-bfa-go/internal/infra/client"
	"github.com/boddenberg/reports-bfa-go/internal/infra/observability"
	"github.com/boddenberg/reports-bfa-go/internal/infra/resilience"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func newUpstream(name, baseURL string, retries int) *client.Upstream {
	return client.NewUpstream(
		name,
		&http.Client{Timeout: 2 * time.Second},
		baseURL,
		resilience.NewCircuitBreaker(name+"-test"),
		resilience.Config{MaxRetries: retries, InitialBackoff: time.Millisecond, MaxConcurrency: 4},
		resilience.NewBulkhead(4),
		zap.NewNop(),
	)
}

func TestTransactionsClient_ListByCustomer(t *testing.T) {
	var gotCorrelation string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/transactions/customer/cust-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotCorrelation = r.Header.Get(observability.CorrelationHeader)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"tx-1","customerId":"cust-1","productType":"BANK_ACCOUNT","productTypeId":"acc-1",
			 "transactionType":"DEPOSIT","amount":100.10,"status":"APPROVED",
			 "createdAt":"2026-10-01T09:30:00","commissionAmount":null},
			{"id":"tx-2","customerId":"cust-1","productType":"CREDIT","productTypeId":"cr-1",
			 "transactionType":"WITHDRAWAL","cardType":"DEBIT","amount":"0.30","status":"APPROVED",
			 "createdAt":"2026-10-02T10:00:00.123","commissionAmount":1.5}
		]`))
	}))
	defer srv.Close()

	c := client.NewTransactionsClient(newUpstream("transactions", srv.URL+"/api/v1/", 0))
	ctx := observability.WithCorrelationID(context.Background(), "corr-1")

	txs, err := c.ListByCustomer(ctx, "cust-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotCorrelation != "corr-1" {
		t.Errorf("expected correlation id forwarded, got %q", gotCorrelation)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if !txs[0].Amount.Equal(decimal.RequireFromString("100.10")) {
		t.Errorf("expected exact amount 100.10, got %s", txs[0].Amount)
	}
	if !txs[0].CommissionAmount.IsZero() {
		t.Errorf("expected null commission to become zero, got %s", txs[0].CommissionAmount)
	}
	if txs[0].CardType != nil {
		t.Error("expected no card type on tx-1")
	}
	if txs[1].CardType == nil || *txs[1].CardType != domain.CardDebit {
		t.Errorf("expected DEBIT card on tx-2, got %v", txs[1].CardType)
	}
}

func TestTransactionsClient_MissingAmountIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"tx-1","createdAt":"2026-10-01T09:30:00"}]`))
	}))
	defer srv.Close()

	c := client.NewTransactionsClient(newUpstream("transactions", srv.URL, 0))

	_, err := c.ListAll(context.Background())
	var decodeErr *domain.ErrDecode
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestTransactionsClient_NullIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer srv.Close()

	c := client.NewTransactionsClient(newUpstream("transactions", srv.URL, 0))

	for name, call := range map[string]func() ([]domain.Transaction, error){
		"all":      func() ([]domain.Transaction, error) { return c.ListAll(context.Background()) },
		"customer": func() ([]domain.Transaction, error) { return c.ListByCustomer(context.Background(), "cust-1") },
	} {
		txs, err := call()
		var decodeErr *domain.ErrDecode
		if !errors.As(err, &decodeErr) {
			t.Errorf("%s: expected ErrDecode, got txs=%v err=%v", name, txs, err)
		}
	}
}

func TestTransactionsClient_EmptyListIsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := client.NewTransactionsClient(newUpstream("transactions", srv.URL, 0))

	txs, err := c.ListAll(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("expected no transactions, got %v", txs)
	}
}

func TestCustomerClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := client.NewCustomerClient(newUpstream("customers", srv.URL, 2))

	_, err := c.GetCustomer(context.Background(), "ghost")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCustomerClient_KeepsNumbersExact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"cust-1","name":"Ana","creditScore":0.1234567890123456789}`))
	}))
	defer srv.Close()

	c := client.NewCustomerClient(newUpstream("customers", srv.URL, 0))

	doc, err := c.GetCustomer(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if doc["creditScore"] != json.Number("0.1234567890123456789") {
		t.Errorf("expected exact json.Number, got %#v", doc["creditScore"])
	}
}

func TestCustomerClient_NullIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer srv.Close()

	c := client.NewCustomerClient(newUpstream("customers", srv.URL, 0))

	_, err := c.GetCustomer(context.Background(), "cust-1")
	var decodeErr *domain.ErrDecode
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestBankAccountsClient_ForwardsWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bank_accounts/customer/cust-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("dateFrom"); got != "2026-01-01" {
			t.Errorf("expected dateFrom 2026-01-01, got %q", got)
		}
		if got := r.URL.Query().Get("dateTo"); got != "2026-03-31" {
			t.Errorf("expected dateTo 2026-03-31, got %q", got)
		}
		w.Write([]byte(`[{"id":"acc-1"}]`))
	}))
	defer srv.Close()

	c := client.NewBankAccountsClient(newUpstream("bank_accounts", srv.URL, 0))
	window, _ := domain.NewDateRange(
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	)

	docs, err := c.ListBankAccounts(context.Background(), "cust-1", &window)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(docs) != 1 || docs[0]["id"] != "acc-1" {
		t.Errorf("unexpected docs %v", docs)
	}
}

func TestCreditsClient_NoWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("expected no query, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := client.NewCreditsClient(newUpstream("credits", srv.URL, 0))

	docs, err := c.ListCredits(context.Background(), "cust-1", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("expected empty non-nil list, got %v", docs)
	}
}

func TestCreditsClient_ObjectIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"cr-1"}`))
	}))
	defer srv.Close()

	c := client.NewCreditsClient(newUpstream("credits", srv.URL, 0))

	_, err := c.ListCredits(context.Background(), "cust-1", nil)
	var decodeErr *domain.ErrDecode
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestUpstream_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := client.NewCreditsClient(newUpstream("credits", srv.URL, 2))

	if _, err := c.ListCredits(context.Background(), "cust-1", nil); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 calls, got %d", got)
	}
}

func TestUpstream_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad customer id"}`))
	}))
	defer srv.Close()

	c := client.NewCreditsClient(newUpstream("credits", srv.URL, 3))

	_, err := c.ListCredits(context.Background(), "cust-1", nil)
	var rejected *domain.ErrUpstreamRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("expected ErrUpstreamRejected, got %v", err)
	}
	if rejected.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rejected.Status)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
}

func TestUpstream_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := client.NewCustomerClient(newUpstream("customers", url, 0))

	_, err := c.GetCustomer(context.Background(), "cust-1")
	var unavailable *domain.ErrUpstreamUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestUpstream_CircuitOpens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := client.NewCreditsClient(newUpstream("credits", srv.URL, 0))

	for i := 0; i < 5; i++ {
		_, _ = c.ListCredits(context.Background(), "cust-1", nil)
	}

	_, err := c.ListCredits(context.Background(), "cust-1", nil)
	var open *domain.ErrCircuitOpen
	if !errors.As(err, &open) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	var unavailable *domain.ErrUpstreamUnavailable
	if !errors.As(err, &unavailable) || unavailable.Upstream != "credits" {
		t.Errorf("expected open breaker to read as unavailable credits, got %v", err)
	}
}

func TestUpstream_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := client.NewCustomerClient(newUpstream("customers", srv.URL, 3))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := c.GetCustomer(ctx, "cust-1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
