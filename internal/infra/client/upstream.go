// Package client implements the HTTP clients for the upstream services
// the reports are built from: transactions, customers, bank accounts and credits.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/boddenberg/reports-bfa-go/internal/domain"
	"github.com/boddenberg/reports-bfa-go/internal/infra/observability"
	"github.com/boddenberg/reports-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

// maxErrorBody caps how much of a non-2xx body ends up in errors and logs.
const maxErrorBody = 512

// Upstream performs JSON GETs against one upstream service with tracing,
// circuit breaker, retry with backoff and a shared bulkhead.
type Upstream struct {
	name       string
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	logger     *zap.Logger
}

// NewUpstream creates the transport for one upstream service.
// The bulkhead may be shared across upstreams to cap total outbound concurrency.
func NewUpstream(
	name string,
	httpClient *http.Client,
	baseURL string,
	cb *gobreaker.CircuitBreaker,
	cfg resilience.Config,
	bulkhead *resilience.Bulkhead,
	logger *zap.Logger,
) *Upstream {
	return &Upstream{
		name:       name,
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		cfg:        cfg,
		bulkhead:   bulkhead,
		logger:     logger.With(zap.String("upstream", name)),
	}
}

// Name identifies the upstream in errors, metrics and logs.
func (u *Upstream) Name() string { return u.name }

// Breaker exposes the circuit breaker so health checks can report its state.
func (u *Upstream) Breaker() *gobreaker.CircuitBreaker { return u.cb }

// getJSON fetches path (relative to the base URL) and decodes the body into out.
// Transport failures and 5xx/429 responses are retried; other statuses and
// decode failures are returned at once.
func (u *Upstream) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	ctx, span := tracer.Start(ctx, "Upstream.GET "+u.name)
	defer span.End()

	endpoint := u.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	span.SetAttributes(
		attribute.String("upstream.name", u.name),
		attribute.String("http.url", endpoint),
	)

	var (
		body     []byte
		notFound bool
	)

	_, err := u.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, u.cfg, func() error {
			b, status, err := u.do(ctx, endpoint)
			if err != nil {
				if ctx.Err() != nil {
					return resilience.Permanent(&domain.ErrUpstreamUnavailable{Upstream: u.name, Err: ctx.Err()})
				}
				return &domain.ErrUpstreamUnavailable{Upstream: u.name, Err: err}
			}

			switch {
			case status == http.StatusNotFound:
				// Absence is an answer, not an upstream fault: keep it out of the breaker.
				notFound = true
				return nil
			case status < 200 || status >= 300:
				rejected := &domain.ErrUpstreamRejected{Upstream: u.name, Status: status, Body: truncate(b)}
				u.logger.Warn("upstream: non-2xx response",
					zap.String("url", endpoint),
					zap.Int("status", status),
					zap.String("body", rejected.Body),
				)
				if rejected.Retryable() {
					return rejected
				}
				return resilience.Permanent(rejected)
			}

			body = b
			return nil
		})
	})

	if err != nil {
		err = u.classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if notFound {
		err := &domain.ErrNotFound{Resource: u.name, ID: path}
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		u.logger.Error("upstream: payload shape mismatch",
			zap.String("url", endpoint),
			zap.Error(err),
		)
		derr := &domain.ErrDecode{Upstream: u.name, Err: err}
		span.RecordError(derr)
		span.SetStatus(codes.Error, derr.Error())
		return derr
	}

	u.logger.Debug("upstream: request OK", zap.String("url", endpoint))
	return nil
}

// do performs a single attempt and returns the body and status code.
func (u *Upstream) do(ctx context.Context, endpoint string) ([]byte, int, error) {
	if err := u.bulkhead.Acquire(ctx); err != nil {
		return nil, 0, err
	}
	defer u.bulkhead.Release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if id := observability.CorrelationID(ctx); id != "" {
		req.Header.Set(observability.CorrelationHeader, id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := u.httpClient.Do(req)
	if err != nil {
		u.logger.Error("upstream: request failed",
			zap.String("url", endpoint),
			zap.Error(err),
		)
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// classify turns whatever came out of the breaker/retry stack into a domain error.
func (u *Upstream) classify(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: u.name}
	}

	var (
		unavailable *domain.ErrUpstreamUnavailable
		rejected    *domain.ErrUpstreamRejected
	)
	if errors.As(err, &unavailable) || errors.As(err, &rejected) {
		return err
	}
	// Context errors surfaced by the retry loop itself.
	return &domain.ErrUpstreamUnavailable{Upstream: u.name, Err: err}
}

func truncate(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}

// customerPath builds "<prefix>/<escaped id>".
func customerPath(prefix, customerID string) string {
	return prefix + "/" + url.PathEscape(customerID)
}

// windowQuery forwards an optional date window as dateFrom/dateTo.
func windowQuery(window *domain.DateRange) url.Values {
	if window == nil {
		return nil
	}
	return url.Values{
		"dateFrom": {window.FromString()},
		"dateTo":   {window.ToString()},
	}
}
