package config

import "testing"

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("AUTH_SECRET must stay empty when unset, got %q", cfg.AuthSecret)
	}
}

func TestLoadNormalizesDiscountPolicy(t *testing.T) {
	t.Setenv("DISCOUNT_POLICY", "SIGNED")
	if cfg := Load(); cfg.DiscountPolicy != "signed" {
		t.Fatalf("expected signed, got %q", cfg.DiscountPolicy)
	}

	t.Setenv("DISCOUNT_POLICY", "bogus")
	if cfg := Load(); cfg.DiscountPolicy != "floor" {
		t.Fatalf("unknown policy must fall back to floor, got %q", cfg.DiscountPolicy)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DEFAULT_LOCALE", "")
	t.Setenv("EXPORT_CACHE_TTL_MINUTES", "not-a-number")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if cfg.DefaultLocale != "en_US" {
		t.Fatalf("expected en_US, got %q", cfg.DefaultLocale)
	}
	if cfg.ExportCacheTTLMinutes != 60 {
		t.Fatalf("expected fallback 60, got %d", cfg.ExportCacheTTLMinutes)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.Address())
	}
}
