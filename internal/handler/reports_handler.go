package handler

import (
	"net/http"

	"github.com/boddenberg/reports-bfa-go/internal/domain"
	"github.com/boddenberg/reports-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// GET /api/v1/reports/daily-average-balances/{customerId}
// ============================================================

func dailyAverageBalancesHandler(svc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/reports/daily-average-balances/{customerId}")
		defer span.End()

		customerID := chi.URLParam(r, "customerId")
		span.SetAttributes(attribute.String("customer.id", customerID))

		balances, err := svc.DailyAverageBalances(ctx, customerID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, balances)
	}
}

// ============================================================
// GET /api/v1/reports/commissions-by-product?startDate=&endDate=
// ============================================================

func commissionsByProductHandler(svc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/reports/commissions-by-product")
		defer span.End()

		window, err := dateRangeQuery(r, "startDate", "endDate")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(
			attribute.String("window.from", window.FromString()),
			attribute.String("window.to", window.ToString()),
		)

		commissions, err := svc.CommissionsByProduct(ctx, window)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, commissions)
	}
}

// ============================================================
// GET /api/v1/reports/customer-summary/{customerId}
// ============================================================

func customerSummaryHandler(svc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/reports/customer-summary/{customerId}")
		defer span.End()

		customerID := chi.URLParam(r, "customerId")
		span.SetAttributes(attribute.String("customer.id", customerID))

		summary, err := svc.CustomerSummary(ctx, customerID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, summary)
	}
}

// ============================================================
// GET /api/v1/reports/general-report-by-product?customerId=&dateFrom=&dateTo=
// ============================================================

func generalReportHandler(svc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/reports/general-report-by-product")
		defer span.End()

		customerID := r.URL.Query().Get("customerId")
		span.SetAttributes(attribute.String("customer.id", customerID))

		window, err := dateRangeQuery(r, "dateFrom", "dateTo")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		report, err := svc.GeneralReportByProduct(ctx, customerID, window)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, report)
	}
}

// ============================================================
// GET /api/v1/reports/last-10-transactions/{customerId}
// ============================================================

func lastCardTransactionsHandler(svc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/reports/last-10-transactions/{customerId}")
		defer span.End()

		customerID := chi.URLParam(r, "customerId")
		span.SetAttributes(attribute.String("customer.id", customerID))

		grouped, err := svc.LastCardTransactions(ctx, customerID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, grouped)
	}
}

// ============================================================
// GET /api/v1/reports/transactions/customer/{customerId}
// ============================================================

func customerTransactionsHandler(svc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/reports/transactions/customer/{customerId}")
		defer span.End()

		customerID := chi.URLParam(r, "customerId")
		span.SetAttributes(attribute.String("customer.id", customerID))

		txs, err := svc.CustomerTransactions(ctx, customerID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, txs)
	}
}

// dateRangeQuery reads an inclusive YYYY-MM-DD window from two query parameters.
func dateRangeQuery(r *http.Request, fromParam, toParam string) (domain.DateRange, error) {
	q := r.URL.Query()
	from, err := domain.ParseDate(fromParam, q.Get(fromParam))
	if err != nil {
		return domain.DateRange{}, err
	}
	to, err := domain.ParseDate(toParam, q.Get(toParam))
	if err != nil {
		return domain.DateRange{}, err
	}
	return domain.NewDateRange(from, to)
}
