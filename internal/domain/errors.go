package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error types for consistent error handling across the reports BFA.

// ErrNotFound indicates an upstream service answered 404 for a resource.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUpstreamUnavailable indicates the upstream could not be reached
// (connection refused, DNS, reset, client timeout).
type ErrUpstreamUnavailable struct {
	Upstream string
	Err      error
}

func (e *ErrUpstreamUnavailable) Error() string {
	return fmt.Sprintf("upstream unavailable [%s]: %v", e.Upstream, e.Err)
}

func (e *ErrUpstreamUnavailable) Unwrap() error {
	return e.Err
}

// ErrUpstreamRejected indicates the upstream answered with a non-2xx status.
type ErrUpstreamRejected struct {
	Upstream string
	Status   int
	Body     string
}

func (e *ErrUpstreamRejected) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream rejected [%s]: status %d", e.Upstream, e.Status)
	}
	return fmt.Sprintf("upstream rejected [%s]: status %d: %s", e.Upstream, e.Status, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *ErrUpstreamRejected) Retryable() bool {
	return e.Status == 429 || e.Status >= 500
}

// ErrDecode indicates the upstream payload did not have the expected shape.
type ErrDecode struct {
	Upstream string
	Err      error
}

func (e *ErrDecode) Error() string {
	return fmt.Sprintf("decode error [%s]: %v", e.Upstream, e.Err)
}

func (e *ErrDecode) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

var errBreakerOpen = errors.New("circuit breaker open")

// Unwrap exposes an open breaker as an unavailable upstream.
func (e *ErrCircuitOpen) Unwrap() error {
	return &ErrUpstreamUnavailable{Upstream: e.Service, Err: errBreakerOpen}
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrInvalidRange indicates a date window that ends before it starts.
type ErrInvalidRange struct {
	From time.Time
	To   time.Time
}

func (e *ErrInvalidRange) Error() string {
	return fmt.Sprintf("invalid date range: %s is before %s", e.To.Format(DateLayout), e.From.Format(DateLayout))
}
