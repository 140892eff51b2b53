package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ENV", "PORT", "RPC_PORT", "DATABASE_URL", "AUTH_REQUIRED",
		"CLASSIFICATION_EXPIRATION_DAYS", "CLASSIFICATION_SOURCE_TIMEOUT",
		"RMQ_EXCHANGE", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "3000" || cfg.RPCPort != "3001" {
		t.Fatalf("unexpected ports %q/%q", cfg.Port, cfg.RPCPort)
	}
	if cfg.Env != "dev" {
		t.Fatalf("unexpected env %q", cfg.Env)
	}
	if cfg.AuthRequired {
		t.Fatal("auth must be optional outside production")
	}
	if cfg.ClassificationExpireDays != 3 {
		t.Fatalf("unexpected expiration days %d", cfg.ClassificationExpireDays)
	}
	if cfg.ClassificationSourceTimeout != 5*time.Second {
		t.Fatalf("unexpected source timeout %v", cfg.ClassificationSourceTimeout)
	}
	if cfg.AMQPExchange != "application" {
		t.Fatalf("unexpected exchange %q", cfg.AMQPExchange)
	}
	if cfg.RateLimitRPS != 50 || cfg.RateLimitBurst != 100 {
		t.Fatalf("unexpected rate limit %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "PROD")
	t.Setenv("PORT", "8080")
	t.Setenv("AUTH_REQUIRED", "")
	t.Setenv("CLASSIFICATION_EXPIRATION_DAYS", "7")
	t.Setenv("CLASSIFICATION_SOURCE_TIMEOUT", "10s")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example.org, https://b.example.org")

	cfg := Load()
	if cfg.Env != "production" {
		t.Fatalf("expected normalized env, got %q", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Fatalf("unexpected port %q", cfg.Port)
	}
	if !cfg.AuthRequired {
		t.Fatal("auth must default to required in production")
	}
	if cfg.ClassificationExpireDays != 7 {
		t.Fatalf("unexpected expiration days %d", cfg.ClassificationExpireDays)
	}
	if cfg.ClassificationSourceTimeout != 10*time.Second {
		t.Fatalf("unexpected source timeout %v", cfg.ClassificationSourceTimeout)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "https://b.example.org" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowOrigin)
	}
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("CLASSIFICATION_EXPIRATION_DAYS", "soon")
	t.Setenv("RATE_LIMIT_RPS", "lots")

	cfg := Load()
	if cfg.ClassificationExpireDays != 3 {
		t.Fatalf("invalid int must fall back to default, got %d", cfg.ClassificationExpireDays)
	}
	if cfg.RateLimitRPS != 50 {
		t.Fatalf("invalid float must fall back to default, got %v", cfg.RateLimitRPS)
	}
}

func TestNormalizeEnv(t *testing.T) {
	cases := map[string]string{
		"prod":       "production",
		"PRODUCTION": "production",
		"staging":    "staging",
		"local":      "local",
		"dev":        "dev",
		"nonsense":   "dev",
		"":           "dev",
	}
	for in, want := range cases {
		if got := normalizeEnv(in); got != want {
			t.Fatalf("normalizeEnv(%q) = %q, want %q", in, got, want)
		}
	}
}
