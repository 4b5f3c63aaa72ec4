package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/reports-bfa-go/internal/domain"
	"github.com/boddenberg/reports-bfa-go/internal/infra/observability"
	"github.com/boddenberg/reports-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// RouterOptions carries the optional pieces of the router.
type RouterOptions struct {
	// AllowedOrigins feeds the CORS handler. Empty allows any origin.
	AllowedOrigins []string
	// RequestTimeout bounds each report request, upstream calls included. Zero disables it.
	RequestTimeout time.Duration
	// Breakers are reported by /healthz, one entry per upstream.
	Breakers []*gobreaker.CircuitBreaker
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(reports *service.ReportService, metrics *observability.Metrics, logger *zap.Logger, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.CorrelationMiddleware)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", observability.CorrelationHeader},
		ExposedHeaders: []string{observability.CorrelationHeader},
		MaxAge:         300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(opts.Breakers))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/internal/metrics/reports", reportMetricsHandler(metrics))

	// --- Reports API ---
	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Use(requestTimeout(opts.RequestTimeout))

		r.Get("/daily-average-balances/{customerId}", dailyAverageBalancesHandler(reports, logger))
		r.Get("/commissions-by-product", commissionsByProductHandler(reports, logger))
		r.Get("/customer-summary/{customerId}", customerSummaryHandler(reports, logger))
		r.Get("/general-report-by-product", generalReportHandler(reports, logger))
		r.Get("/last-10-transactions/{customerId}", lastCardTransactionsHandler(reports, logger))
		r.Get("/transactions/customer/{customerId}", customerTransactionsHandler(reports, logger))
	})

	return r
}

// ============================================================
// Operational endpoints
// ============================================================

// healthzHandler reports each upstream through its circuit breaker.
// An open breaker degrades the service but /healthz still answers 200.
func healthzHandler(breakers []*gobreaker.CircuitBreaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "reports-bfa", Status: "healthy", LastChecked: now},
		}
		for _, cb := range breakers {
			status := "healthy"
			switch cb.State() {
			case gobreaker.StateOpen:
				status = "unhealthy"
			case gobreaker.StateHalfOpen:
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name:        cb.Name(),
				Status:      status,
				Breaker:     cb.State().String(),
				LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overallStatus = "degraded"
				break
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func reportMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
