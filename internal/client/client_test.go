package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quantbasket/quantbasket/internal/action"
	"github.com/quantbasket/quantbasket/internal/dashboard"
	"github.com/quantbasket/quantbasket/internal/logging"
	"github.com/quantbasket/quantbasket/internal/platform"
	"github.com/quantbasket/quantbasket/internal/routing"
	"github.com/quantbasket/quantbasket/internal/session"
)

func newTestClient(t *testing.T) (*Client, *platform.Memory, string) {
	t.Helper()
	api := platform.NewMemory()
	userID := api.SeedAccount("ada@example.com", "hunter2secret", "Ada Lovelace")
	api.SeedBalance(userID, platform.CategoryCommunity, "SAE", 100)

	c := New(api, nil, session.RedirectConfig{
		LocalOrigin:      "http://localhost:8080",
		ProductionOrigin: "https://app.quantbasket.com",
	}, logging.Discard())
	t.Cleanup(c.Close)

	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return c, api, userID
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSignInLoadsDashboard(t *testing.T) {
	c, _, _ := newTestClient(t)

	if _, err := c.Sessions.SignIn(context.Background(), "ada@example.com", "hunter2secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	// The dashboard load runs on the subscriber goroutine.
	waitFor(t, func() bool {
		_, ok := c.Dashboard.Profile()
		return ok
	})
	if got := c.Dashboard.Tokens().Balance(platform.CategoryCommunity, "SAE"); got != 100 {
		t.Fatalf("expected seeded balance cached, got %f", got)
	}
}

func TestSignOutClearsScopedState(t *testing.T) {
	c, _, userID := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Sessions.SignIn(ctx, "ada@example.com", "hunter2secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	waitFor(t, func() bool {
		_, ok := c.Dashboard.Profile()
		return ok
	})
	if err := c.DispatchAction(ctx, action.KindImpact, action.Payload{Symbol: "tree_planting"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if err := c.Sessions.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}

	if _, ok := c.Dashboard.Profile(); ok {
		t.Fatal("expected dashboard cleared on sign-out")
	}
	if _, ok := c.Actions.Status(userID, action.KindImpact); ok {
		t.Fatal("expected coordinator records cleared on sign-out")
	}
	if c.Session().State != session.StateAnonymous {
		t.Fatalf("expected anonymous after sign-out, got %v", c.Session().State)
	}
}

func TestProtectedRouteFollowsSession(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	result := c.ProtectedRoute("/dashboard")
	if result.Outcome != routing.OutcomeRedirect || result.Decision.Target != routing.PathLogin {
		t.Fatalf("expected redirect to login while anonymous, got %+v", result)
	}

	if _, err := c.Sessions.SignIn(ctx, "ada@example.com", "hunter2secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if result := c.ProtectedRoute("/dashboard"); result.Outcome != routing.OutcomeRender {
		t.Fatalf("expected render once authenticated, got %+v", result)
	}
	if result := c.ProtectedRoute("/login"); result.Outcome != routing.OutcomeRedirect || result.Decision.Target != routing.PathDashboard {
		t.Fatalf("expected entry path to bounce to dashboard, got %+v", result)
	}
}

func TestDispatchActionWithoutIdentity(t *testing.T) {
	c, _, _ := newTestClient(t)

	err := c.DispatchAction(context.Background(), action.KindPurchase, action.Payload{
		Category: platform.CategoryCommunity,
		Symbol:   "SAE",
		Amount:   1,
	})
	if !errors.Is(err, dashboard.ErrNoActiveUser) {
		t.Fatalf("expected ErrNoActiveUser, got %v", err)
	}
}

func TestDispatchActionRoundTrip(t *testing.T) {
	c, api, userID := newTestClient(t)
	ctx := context.Background()
	api.SeedCoin("SAE", "Solar Access", platform.CategoryCommunity, 2.5)

	if _, err := c.Sessions.SignIn(ctx, "ada@example.com", "hunter2secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	waitFor(t, func() bool {
		_, ok := c.Dashboard.Profile()
		return ok
	})

	err := c.DispatchAction(ctx, action.KindRedeem, action.Payload{
		Category:    platform.CategoryCommunity,
		Symbol:      "SAE",
		Amount:      40,
		BenefitType: "event_pass",
	})
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}

	if got := c.Dashboard.Tokens().Balance(platform.CategoryCommunity, "SAE"); got != 60 {
		t.Fatalf("expected refetched balance 60, got %f", got)
	}
	record, ok := c.Actions.Status(userID, action.KindRedeem)
	if !ok || record.Phase != action.PhaseSucceeded {
		t.Fatalf("expected succeeded redeem record, got %+v ok=%v", record, ok)
	}
}
