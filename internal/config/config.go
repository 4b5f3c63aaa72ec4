package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults
// and are read-only once Load returns.
type Config struct {
	// Server
	Port           int
	LogLevel       string
	RequestTimeout time.Duration
	AllowedOrigins []string

	// Upstream services
	TransactionServiceURL string
	CustomerServiceURL    string
	BankAccountServiceURL string
	CreditServiceURL      string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL      time.Duration
	RedisAddr     string // empty → in-memory cache
	RedisPassword string

	// Observability
	OTLPEndpoint string

	// Reports
	Timezone string // location used to compute "current month"
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:           getEnvInt("PORT", 8085),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		TransactionServiceURL: getEnv("TRANSACTION_SERVICE_URL", "http://localhost:9004/api/v1"),
		CustomerServiceURL:    getEnv("CUSTOMER_SERVICE_URL", "http://localhost:9001/api/v1"),
		BankAccountServiceURL: getEnv("BANK_ACCOUNT_SERVICE_URL", "http://localhost:9002/api/v1"),
		CreditServiceURL:      getEnv("CREDIT_SERVICE_URL", "http://localhost:9003/api/v1"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 2),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		CacheTTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		Timezone: getEnv("REPORT_TIMEZONE", "Local"),
	}
}

// Validate checks the values the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	for name, v := range map[string]string{
		"TRANSACTION_SERVICE_URL":  c.TransactionServiceURL,
		"CUSTOMER_SERVICE_URL":     c.CustomerServiceURL,
		"BANK_ACCOUNT_SERVICE_URL": c.BankAccountServiceURL,
		"CREDIT_SERVICE_URL":       c.CreditServiceURL,
	} {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}
	if c.MaxConcurrency < 1 {
		errs = append(errs, errors.New("MAX_CONCURRENCY must be positive"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("MAX_RETRIES must not be negative"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("REPORT_TIMEZONE: %w", err))
	}
	return errors.Join(errs...)
}

// Location resolves the report timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
