package httpapi

import (
	"context"
	"testing"
	"time"

	"posreports/backend/internal/domain"
)

// stubUserStore records created users and serves them back on ListUsers.
type stubUserStore struct {
	users []domain.UserAccount
}

func (s *stubUserStore) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.users = append(s.users, user)
	return nil
}

func (s *stubUserStore) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	return s.users, nil
}

func TestCreateUserStoresPasswordHash(t *testing.T) {
	userStore := &stubUserStore{}
	auth := NewAuthManager("test-secret-key-that-is-long-enough", time.Hour, userStore)

	created, err := auth.CreateUser(domain.UserCreateRequest{
		Username: "viewer1",
		Password: "viewer-secret",
		Role:     "manager",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Role != "manager" || !created.Active {
		t.Fatalf("unexpected account: %+v", created)
	}

	if len(userStore.users) != 1 {
		t.Fatalf("expected 1 persisted user, got %d", len(userStore.users))
	}
	if !isPasswordHash(userStore.users[0].Password) {
		t.Fatal("persisted password must be a bcrypt hash")
	}

	// Round trip: login with the plain password, parse the issued token.
	resp, err := auth.Login(domain.LoginRequest{Username: "viewer1", Password: "viewer-secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if actor.Username != "viewer1" || actor.Role != "manager" {
		t.Fatalf("unexpected actor: %+v", actor)
	}
}

func TestCreateUserRejectsWeakInput(t *testing.T) {
	auth := NewAuthManager("test-secret-key-that-is-long-enough", time.Hour, nil)

	cases := []domain.UserCreateRequest{
		{Username: "ab", Password: "long-enough"},
		{Username: "has space", Password: "long-enough"},
		{Username: "viewer1", Password: "short"},
		{Username: "viewer1", Password: "long-enough", Role: "cashier"},
	}
	for _, req := range cases {
		if _, err := auth.CreateUser(req); err == nil {
			t.Fatalf("expected rejection for %+v", req)
		}
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	issuer := NewAuthManager("issuer-secret-key-that-is-long-enough", time.Hour, &stubUserStore{users: []domain.UserAccount{{
		Username: "manager",
		Password: mustHash(t, "manager123"),
		Role:     "manager",
		Active:   true,
	}}})
	verifier := NewAuthManager("verifier-secret-that-is-long-enough!", time.Hour, nil)

	resp, err := issuer.Login(domain.LoginRequest{Username: "manager", Password: "manager123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := verifier.ParseToken(resp.AccessToken); err == nil {
		t.Fatal("token signed with a different secret must not verify")
	}
}

func TestPlainTextStoredPasswordNeverVerifies(t *testing.T) {
	auth := NewAuthManager("test-secret-key-that-is-long-enough", time.Hour, &stubUserStore{users: []domain.UserAccount{{
		Username: "legacy",
		Password: "plain-text-password",
		Role:     "manager",
		Active:   true,
	}}})

	if _, err := auth.Login(domain.LoginRequest{Username: "legacy", Password: "plain-text-password"}); err == nil {
		t.Fatal("plain-text stored credentials must be locked out")
	}
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	hash, err := hashPassword(plain)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return hash
}
