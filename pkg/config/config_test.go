package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DESIGNDRIP_APP_ENV", "dev")
	t.Setenv("DESIGNDRIP_BACKEND_BASE_URL", "http://localhost:4000/api")
	t.Setenv("DESIGNDRIP_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DESIGNDRIP_JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if !cfg.App.IsDev() {
		t.Fatalf("expected dev env")
	}
	if cfg.App.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.App.Port)
	}
	if cfg.Shipping.ExpressSurcharge != 30000 {
		t.Fatalf("expected default express surcharge 30000, got %d", cfg.Shipping.ExpressSurcharge)
	}
	if cfg.Backend.ReturnURL != "designdripmobile://orders" {
		t.Fatalf("unexpected return url %s", cfg.Backend.ReturnURL)
	}
	if cfg.Backend.Timeout != 15*time.Second {
		t.Fatalf("unexpected backend timeout %s", cfg.Backend.Timeout)
	}
	if cfg.LocalDB.Driver != "sqlite" {
		t.Fatalf("expected sqlite local store by default, got %s", cfg.LocalDB.Driver)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("DESIGNDRIP_APP_ENV", "")
	t.Setenv("DESIGNDRIP_BACKEND_BASE_URL", "")
	t.Setenv("DESIGNDRIP_REDIS_URL", "")
	t.Setenv("DESIGNDRIP_JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when required vars missing")
	}
}

func TestStripeEnvironmentNormalized(t *testing.T) {
	cfg := StripeConfig{Env: " Test "}
	if cfg.Environment() != "test" {
		t.Fatalf("expected normalized test env, got %q", cfg.Environment())
	}
	if (StripeConfig{}).Environment() != "test" {
		t.Fatalf("expected empty env to default to test")
	}
}
