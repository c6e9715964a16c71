package routing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/quantbasket/quantbasket/internal/logging"
	"github.com/quantbasket/quantbasket/internal/platform"
	"github.com/quantbasket/quantbasket/internal/session"
)

func testStore(t *testing.T) (*session.Store, *platform.Memory) {
	t.Helper()
	api := platform.NewMemory()
	api.SeedAccount("ada@example.com", "hunter2secret", "Ada Lovelace")
	store := session.New(api, nil, session.RedirectConfig{
		LocalOrigin:      "http://localhost:8080",
		ProductionOrigin: "https://quantbasket.com",
		DeploymentEnv:    session.EnvLocal,
	}, logging.Discard())
	t.Cleanup(store.Close)
	return store, api
}

func TestEvaluateBeforeInitIsLoading(t *testing.T) {
	store, _ := testStore(t)
	gate := NewGate(store)

	result := gate.Evaluate(PathDashboard)
	if result.Outcome != OutcomeLoading {
		t.Fatalf("expected loading before init, got %s", result.Outcome)
	}
}

func TestEvaluateAfterResolution(t *testing.T) {
	store, _ := testStore(t)
	gate := NewGate(store)
	ctx := context.Background()

	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	result := gate.Evaluate(PathDashboard)
	if result.Outcome != OutcomeRedirect || result.Decision.Target != PathLogin {
		t.Fatalf("expected redirect to login, got %+v", result)
	}
	if result.Decision.Origin != PathDashboard {
		t.Fatalf("expected origin preserved, got %q", result.Decision.Origin)
	}

	if _, err := store.SignIn(ctx, "ada@example.com", "hunter2secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if result := gate.Evaluate(PathDashboard); result.Outcome != OutcomeRender {
		t.Fatalf("expected render when authenticated, got %+v", result)
	}
	if result := gate.Evaluate(PathLogin); result.Outcome != OutcomeRedirect || result.Decision.Target != PathDashboard {
		t.Fatalf("expected redirect to dashboard from login, got %+v", result)
	}
}

func TestWatchDeliversVerdictsInOrder(t *testing.T) {
	store, _ := testStore(t)
	gate := NewGate(store)
	ctx := context.Background()

	var mu sync.Mutex
	var outcomes []Outcome
	cancel := gate.Watch(PathDashboard, func(result Result) {
		mu.Lock()
		outcomes = append(outcomes, result.Outcome)
		mu.Unlock()
	})
	defer cancel()

	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := store.SignIn(ctx, "ada@example.com", "hunter2secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	// immediate unknown -> loading, anonymous -> redirect,
	// authenticating -> loading, authenticated -> render
	want := []Outcome{OutcomeLoading, OutcomeRedirect, OutcomeLoading, OutcomeRender}
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(outcomes)
		mu.Unlock()
		if n >= len(want) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out, have %d verdicts", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
	mu.Lock()
	defer mu.Unlock()
	for i, outcome := range want {
		if outcomes[i] != outcome {
			t.Fatalf("verdict %d: expected %s, got %s", i, outcome, outcomes[i])
		}
	}
}
