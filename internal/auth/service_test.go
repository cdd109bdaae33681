package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zet-health/zet_booking/internal/identity"
)

func newTokenFixture(t *testing.T) (*Service, identity.Repository, identity.User) {
	t.Helper()
	repo := identity.NewMemoryRepository()
	user, err := identity.NewService(repo).Register(context.Background(), identity.RegisterInput{
		Name: "A", Email: "a@example.com", Mobile: "9876543210", Gender: "female",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return NewService("test-secret", time.Hour, repo), repo, user
}

func TestIssueAndAuthenticate(t *testing.T) {
	svc, _, user := newTokenFixture(t)

	token, exp, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expected future expiry, got %s", exp)
	}
	got, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected %s, got %s", user.ID, got.ID)
	}
}

func TestLogoutInvalidatesOutstandingTokens(t *testing.T) {
	svc, _, user := newTokenFixture(t)
	ctx := context.Background()

	token, _, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Logout(ctx, user.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, token); !errors.Is(err, ErrTokenInvalidated) {
		t.Fatalf("expected invalidated token, got %v", err)
	}
}

func TestAuthenticateRejectsForeignAndExpiredTokens(t *testing.T) {
	svc, repo, user := newTokenFixture(t)
	ctx := context.Background()

	other := NewService("other-secret", time.Hour, repo)
	foreign, _, _ := other.Issue(user)
	if _, err := svc.Authenticate(ctx, foreign); err == nil {
		t.Fatal("expected signature failure")
	}

	expired := NewService("test-secret", time.Minute, repo)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, _ := expired.Issue(user)
	if _, err := svc.Authenticate(ctx, old); err == nil {
		t.Fatal("expected expiry failure")
	}

	if _, err := svc.Authenticate(ctx, "not.a.token"); err == nil {
		t.Fatal("expected parse failure")
	}
}
