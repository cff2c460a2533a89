package main

import (
	"strings"
	"testing"

	"posreports/backend/internal/config"
)

func TestValidateSecurityConfigRejectsShortSecret(t *testing.T) {
	cfg := config.Config{AuthSecret: "short"}
	if err := validateSecurityConfig(cfg); err == nil {
		t.Fatal("expected an error for a short AUTH_SECRET")
	}
}

func TestValidateSecurityConfigAcceptsStrongSecret(t *testing.T) {
	cfg := config.Config{AuthSecret: strings.Repeat("s", 32)}
	if err := validateSecurityConfig(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
