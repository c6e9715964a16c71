package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quantbasket/quantbasket/internal/config"
	"github.com/quantbasket/quantbasket/internal/identity"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:     "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}
}

func seedUser(t *testing.T, repo identity.Repository) identity.User {
	t.Helper()
	user := identity.User{
		ID:        uuid.NewString(),
		Email:     "ada@example.com",
		FullName:  "Ada Lovelace",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestIssueAndVerifySession(t *testing.T) {
	repo := identity.NewMemoryRepository()
	svc := NewService(testConfig(), repo)
	user := seedUser(t, repo)

	sess, err := svc.IssueSession(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if sess.AccessToken == sess.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	got, err := svc.Verify(context.Background(), sess.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != user.ID {
		t.Fatalf("expected subject %s, got %s", user.ID, got)
	}
}

func TestVerifyRejectsRefreshToken(t *testing.T) {
	repo := identity.NewMemoryRepository()
	svc := NewService(testConfig(), repo)
	user := seedUser(t, repo)

	sess, err := svc.IssueSession(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	// Signed with the refresh secret, so it must not pass access checks.
	if _, err := svc.Verify(context.Background(), sess.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	repo := identity.NewMemoryRepository()
	svc := NewService(testConfig(), repo)
	user := seedUser(t, repo)

	first, err := svc.IssueSession(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.UserID != user.ID {
		t.Fatalf("expected session for %s, got %s", user.ID, second.UserID)
	}
	if _, err := svc.Verify(context.Background(), second.AccessToken); err != nil {
		t.Fatalf("verify rotated access token: %v", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	repo := identity.NewMemoryRepository()
	svc := NewService(testConfig(), repo)
	user := seedUser(t, repo)

	sess, err := svc.IssueSession(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), sess.AccessToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
}

func TestLogoutInvalidatesOutstandingTokens(t *testing.T) {
	repo := identity.NewMemoryRepository()
	svc := NewService(testConfig(), repo)
	user := seedUser(t, repo)
	ctx := context.Background()

	sess, err := svc.IssueSession(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Logout(ctx, user.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.Verify(ctx, sess.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected stale access token rejected, got %v", err)
	}
	if _, err := svc.Refresh(ctx, sess.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected stale refresh token rejected, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTTL = -time.Minute
	repo := identity.NewMemoryRepository()
	svc := NewService(cfg, repo)
	user := seedUser(t, repo)

	sess, err := svc.IssueSession(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Verify(context.Background(), sess.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}
