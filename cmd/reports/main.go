package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/reports-bfa-go/internal/config"
	"github.com/boddenberg/reports-bfa-go/internal/domain"
	"github.com/boddenberg/reports-bfa-go/internal/handler"
	"github.com/boddenberg/reports-bfa-go/internal/infra/cache"
	"github.com/boddenberg/reports-bfa-go/internal/infra/client"
	"github.com/boddenberg/reports-bfa-go/internal/infra/observability"
	"github.com/boddenberg/reports-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/reports-bfa-go/internal/port"
	"github.com/boddenberg/reports-bfa-go/internal/service"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	loc, _ := cfg.Location()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("transaction_service_url", cfg.TransactionServiceURL),
		zap.String("customer_service_url", cfg.CustomerServiceURL),
		zap.String("bank_account_service_url", cfg.BankAccountServiceURL),
		zap.String("credit_service_url", cfg.CreditServiceURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.String("timezone", loc.String()),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "reports-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	var profileCache port.Cache[domain.Document]
	if cfg.RedisAddr != "" {
		logger.Info("using Redis profile cache", zap.String("redis_addr", cfg.RedisAddr))
		rdb := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		defer rdb.Close()
		profileCache = cache.NewRedis[domain.Document](rdb, "reports", cfg.CacheTTL, logger)
	} else {
		logger.Info("using in-memory profile cache")
		mem := cache.New[domain.Document](cfg.CacheTTL)
		defer mem.Close()
		profileCache = mem
	}

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var breakers []*gobreaker.CircuitBreaker
	newUpstream := func(name, baseURL string) *client.Upstream {
		cb := resilience.NewCircuitBreaker(name)
		breakers = append(breakers, cb)
		return client.NewUpstream(name, httpClient, baseURL, cb, resilienceCfg, bulkhead, logger)
	}

	transactionsClient := client.NewTransactionsClient(newUpstream("transactions", cfg.TransactionServiceURL))
	customerClient := client.NewCustomerClient(newUpstream("customers", cfg.CustomerServiceURL))
	bankAccountsClient := client.NewBankAccountsClient(newUpstream("bank_accounts", cfg.BankAccountServiceURL))
	creditsClient := client.NewCreditsClient(newUpstream("credits", cfg.CreditServiceURL))

	// --- Services ---
	reportSvc := service.NewReportService(
		transactionsClient,
		customerClient,
		bankAccountsClient,
		creditsClient,
		profileCache,
		metrics,
		logger,
		service.WithClock(func() time.Time { return time.Now().In(loc) }),
	)

	// --- Router ---
	router := handler.NewRouter(reportSvc, metrics, logger, handler.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Breakers:       breakers,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout(cfg.RequestTimeout),
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// writeTimeout leaves room after the request deadline for the 504 envelope.
// A zero request timeout disables both.
func writeTimeout(requestTimeout time.Duration) time.Duration {
	if requestTimeout <= 0 {
		return 0
	}
	return requestTimeout + 5*time.Second
}
