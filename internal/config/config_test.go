package config

import (
	"testing"
	"time"
)

func TestLoadDefaultsInDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("OTP_TTL", "")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWTSecret != devJWTSecret {
		t.Fatalf("expected dev secret fallback, got %q", cfg.JWTSecret)
	}
	if cfg.OTPTTL != defaultOTPTTL {
		t.Fatalf("expected otp ttl %s, got %s", defaultOTPTTL, cfg.OTPTTL)
	}
	if cfg.Address() != ":9090" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
}

func TestLoadRequiresSecretOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET in production")
	}
}

func TestLoadParsesDurations(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("OTP_TTL", "90s")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("SANDBOX_EXPOSE_OTP", "true")
	t.Setenv("CONNECT_TIMEOUT", "2s")
	t.Setenv("DB_MAX_CONNS", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OTPTTL != 90*time.Second {
		t.Fatalf("expected 90s, got %s", cfg.OTPTTL)
	}
	if cfg.ShutdownPeriod != 3*time.Second {
		t.Fatalf("expected 3s, got %s", cfg.ShutdownPeriod)
	}
	if !cfg.ExposeOTP {
		t.Fatal("expected ExposeOTP")
	}
	if cfg.ConnectTimeout != 2*time.Second || cfg.DBMaxConns != 4 {
		t.Fatalf("expected 2s/4 conns, got %s/%d", cfg.ConnectTimeout, cfg.DBMaxConns)
	}
}

func TestLoadRejectsBadPoolSize(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_MAX_CONNS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for DB_MAX_CONNS=0")
	}
}

func TestLoadClientRejectsUnknownStorage(t *testing.T) {
	t.Setenv("ZET_STORAGE", "floppy")
	if _, err := LoadClient(); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}
}

func TestLoadClientDefaults(t *testing.T) {
	t.Setenv("ZET_STORAGE", "memory")
	t.Setenv("ZET_HTTP_TIMEOUT", "")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("load client: %v", err)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.AuthBaseURL == "" || cfg.APIBaseURL == "" {
		t.Fatal("expected default base urls")
	}
}
