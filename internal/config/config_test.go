package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boddenberg/reports-bfa-go/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "MAX_CONCURRENCY", "CORS_ALLOWED_ORIGINS", "REPORT_TIMEZONE", "CACHE_TTL", "MAX_RETRIES"} {
		t.Setenv(k, "")
	}
	cfg := config.Load()

	if cfg.Port != 8085 {
		t.Errorf("expected port 8085, got %d", cfg.Port)
	}
	if cfg.MaxConcurrency != 50 {
		t.Errorf("expected max concurrency 50, got %d", cfg.MaxConcurrency)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("expected wildcard origins, got %v", cfg.AllowedOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CREDIT_SERVICE_URL", "http://credits:8080")

	cfg := config.Load()

	if cfg.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Port)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %s", cfg.HTTPTimeout)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.CreditServiceURL != "http://credits:8080" {
		t.Errorf("unexpected credit url %s", cfg.CreditServiceURL)
	}
}

func TestLoad_InvalidNumberFallsBack(t *testing.T) {
	t.Setenv("MAX_RETRIES", "many")

	if got := config.Load().MaxRetries; got != 2 {
		t.Errorf("expected fallback 2, got %d", got)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cfg := config.Load()
	cfg.CustomerServiceURL = ""
	cfg.MaxConcurrency = 0
	cfg.Timezone = "Mars/Olympus"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "REPORTS_TEST_A=from-file\nREPORTS_TEST_B=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REPORTS_TEST_A", "from-env")
	t.Cleanup(func() { os.Unsetenv("REPORTS_TEST_B") })

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("expected .env to load, got %v", err)
	}

	if got := os.Getenv("REPORTS_TEST_A"); got != "from-env" {
		t.Errorf("expected env to win, got %s", got)
	}
	if got := os.Getenv("REPORTS_TEST_B"); got != "from-file" {
		t.Errorf("expected file value, got %s", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := config.LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
