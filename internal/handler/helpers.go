package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/boddenberg/reports-bfa-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, domain.NewSuccess(data))
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, domain.NewFailure(status, msg))
}

// requestTimeout puts a deadline on the request context. Handlers turn an
// expired deadline into a 504 envelope through handleServiceError.
func requestTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// handleServiceError maps domain errors to envelope responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var (
		validation   *domain.ErrValidation
		invalidRange *domain.ErrInvalidRange
		notFound     *domain.ErrNotFound
		decode       *domain.ErrDecode
		rejected     *domain.ErrUpstreamRejected
		unavailable  *domain.ErrUpstreamUnavailable
		circuitOpen  *domain.ErrCircuitOpen
	)

	switch {
	case errors.As(err, &validation), errors.As(err, &invalidRange):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeFailure(w, http.StatusBadRequest, "Bad Request: "+err.Error())
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeFailure(w, http.StatusNotFound, "Not Found: "+err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error("request timeout", zap.Error(err))
		writeFailure(w, http.StatusGatewayTimeout, "Upstream Timeout")
	case errors.As(err, &decode):
		logger.Error("upstream decode error", zap.Error(err))
		writeFailure(w, http.StatusBadGateway, "Upstream Decode Error: "+err.Error())
	case errors.As(err, &rejected):
		logger.Warn("upstream rejected request",
			zap.String("upstream", rejected.Upstream),
			zap.Int("status", rejected.Status),
		)
		writeFailure(w, http.StatusBadGateway, "Upstream Rejected: "+err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeFailure(w, http.StatusServiceUnavailable, "Upstream Unavailable: "+err.Error())
	case errors.As(err, &unavailable):
		logger.Error("upstream unavailable", zap.Error(err))
		writeFailure(w, http.StatusServiceUnavailable, "Upstream Unavailable: "+err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
