package action

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quantbasket/quantbasket/internal/dashboard"
	"github.com/quantbasket/quantbasket/internal/logging"
	"github.com/quantbasket/quantbasket/internal/platform"
)

// blockingAPI is a platform.DataAPI whose purchase call can be held open so
// tests can observe slot behavior while an action is in flight.
type blockingAPI struct {
	mu          sync.Mutex
	purchases   int
	purchaseErr error
	gate        chan struct{}
}

func (a *blockingAPI) PurchaseTokens(context.Context, string, platform.Category, string, float64) error {
	a.mu.Lock()
	a.purchases++
	gate := a.gate
	err := a.purchaseErr
	a.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (a *blockingAPI) GetProfile(context.Context, string) (platform.Profile, error) {
	return platform.Profile{UserID: "u1"}, nil
}

func (a *blockingAPI) UpdateProfile(context.Context, string, platform.ProfilePatch) (platform.Profile, error) {
	return platform.Profile{UserID: "u1", FullName: "Ada Lovelace"}, nil
}

func (a *blockingAPI) GetTokenLedger(context.Context, string) (platform.TokenLedger, error) {
	return platform.TokenLedger{}, nil
}

func (a *blockingAPI) GetPortfolioSummary(context.Context, string) (platform.PortfolioSummary, error) {
	return platform.PortfolioSummary{}, nil
}

func (a *blockingAPI) ReportImpact(context.Context, string, string, string) error { return nil }

func (a *blockingAPI) RedeemBenefit(context.Context, string, string, float64, string) error {
	return nil
}

func (a *blockingAPI) ListCoins(context.Context) ([]platform.Coin, error) { return nil, nil }

func (a *blockingAPI) ListFavorites(context.Context, string) ([]platform.Coin, error) {
	return nil, nil
}

func (a *blockingAPI) AddFavorite(context.Context, string, string) error    { return nil }
func (a *blockingAPI) RemoveFavorite(context.Context, string, string) error { return nil }

func newCoordinator(api *blockingAPI) *Coordinator {
	store := dashboard.New(api, logging.Discard())
	store.Activate("u1")
	return New(store, logging.Discard())
}

func TestDispatchRejectsConcurrentSameKind(t *testing.T) {
	api := &blockingAPI{gate: make(chan struct{})}
	coord := newCoordinator(api)
	ctx := context.Background()
	payload := Payload{Category: platform.CategoryCommunity, Symbol: "SAE", Amount: 5}

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- coord.Dispatch(ctx, "u1", KindPurchase, payload)
	}()
	<-started
	for {
		api.mu.Lock()
		inFlight := api.purchases > 0
		api.mu.Unlock()
		if inFlight {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if err := coord.Dispatch(ctx, "u1", KindPurchase, payload); !errors.Is(err, platform.ErrActionInProgress) {
		t.Fatalf("expected ErrActionInProgress, got %v", err)
	}

	close(api.gate)
	if err := <-done; err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
}

func TestSlotReleasedAfterCompletion(t *testing.T) {
	api := &blockingAPI{}
	coord := newCoordinator(api)
	ctx := context.Background()
	payload := Payload{Category: platform.CategoryCommunity, Symbol: "SAE", Amount: 5}

	if err := coord.Dispatch(ctx, "u1", KindPurchase, payload); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if err := coord.Dispatch(ctx, "u1", KindPurchase, payload); err != nil {
		t.Fatalf("second dispatch: %v", err)
	}

	record, ok := coord.Status("u1", KindPurchase)
	if !ok || record.Phase != PhaseSucceeded {
		t.Fatalf("expected succeeded record, got %+v ok=%v", record, ok)
	}
	if record.EndedAt.Before(record.StartedAt) {
		t.Fatal("expected EndedAt at or after StartedAt")
	}
}

func TestFailedActionCanBeRetried(t *testing.T) {
	api := &blockingAPI{purchaseErr: platform.ErrDataNetwork}
	coord := newCoordinator(api)
	ctx := context.Background()
	payload := Payload{Category: platform.CategoryCommunity, Symbol: "SAE", Amount: 5}

	if err := coord.Dispatch(ctx, "u1", KindPurchase, payload); !errors.Is(err, platform.ErrDataNetwork) {
		t.Fatalf("expected network failure, got %v", err)
	}
	record, _ := coord.Status("u1", KindPurchase)
	if record.Phase != PhaseFailed || !errors.Is(record.Err, platform.ErrDataNetwork) {
		t.Fatalf("expected failed record, got %+v", record)
	}

	api.mu.Lock()
	api.purchaseErr = nil
	api.mu.Unlock()

	if err := coord.Dispatch(ctx, "u1", KindPurchase, payload); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if record, _ := coord.Status("u1", KindPurchase); record.Phase != PhaseSucceeded {
		t.Fatalf("expected retried record to succeed, got %+v", record)
	}
}

func TestDifferentKindsDoNotBlockEachOther(t *testing.T) {
	api := &blockingAPI{gate: make(chan struct{})}
	coord := newCoordinator(api)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- coord.Dispatch(ctx, "u1", KindPurchase, Payload{Category: platform.CategoryCommunity, Symbol: "SAE", Amount: 5})
	}()
	for {
		api.mu.Lock()
		inFlight := api.purchases > 0
		api.mu.Unlock()
		if inFlight {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if err := coord.Dispatch(ctx, "u1", KindImpact, Payload{Symbol: "tree_planting"}); err != nil {
		t.Fatalf("impact dispatch while purchase in flight: %v", err)
	}

	close(api.gate)
	if err := <-done; err != nil {
		t.Fatalf("purchase: %v", err)
	}
}

func TestProfileUpdateRequiresPatch(t *testing.T) {
	coord := newCoordinator(&blockingAPI{})

	if err := coord.Dispatch(context.Background(), "u1", KindProfileUpdate, Payload{}); err == nil {
		t.Fatal("expected error for missing profile patch")
	}
}

func TestResetClearsUserRecords(t *testing.T) {
	api := &blockingAPI{}
	coord := newCoordinator(api)
	ctx := context.Background()
	payload := Payload{Category: platform.CategoryCommunity, Symbol: "SAE", Amount: 5}

	if err := coord.Dispatch(ctx, "u1", KindPurchase, payload); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	coord.Reset("u1")
	if _, ok := coord.Status("u1", KindPurchase); ok {
		t.Fatal("expected no record after reset")
	}

	if err := coord.Dispatch(ctx, "u1", KindPurchase, payload); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	coord.ResetAll()
	if _, ok := coord.Status("u1", KindPurchase); ok {
		t.Fatal("expected no record after reset-all")
	}
}
