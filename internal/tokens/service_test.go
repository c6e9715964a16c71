package tokens

import (
	"context"
	"testing"

	"github.com/quantbasket/quantbasket/internal/platform"
)

type staticPrices map[string]float64

func (p staticPrices) PricesBySymbol(context.Context) (map[string]float64, error) {
	return p, nil
}

func TestPurchaseCreditsAndNormalizesSymbol(t *testing.T) {
	svc := NewService(NewInMemory(), staticPrices{}, nil)
	ctx := context.Background()

	res, err := svc.Purchase(ctx, PurchaseInput{UserID: "u1", Category: platform.CategoryCommunity, Symbol: " sae ", Amount: 25})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if res.Balance != 25 {
		t.Fatalf("expected balance 25, got %f", res.Balance)
	}

	ledger, err := svc.Balances(ctx, "u1")
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if got := ledger.Balance(platform.CategoryCommunity, "SAE"); got != 25 {
		t.Fatalf("expected uppercased symbol holding, got ledger %+v", ledger)
	}
}

func TestPurchaseReplayIsIdempotent(t *testing.T) {
	svc := NewService(NewInMemory(), staticPrices{}, nil)
	ctx := context.Background()
	input := PurchaseInput{UserID: "u1", Category: platform.CategoryCommunity, Symbol: "SAE", Amount: 10, ClientMutID: "req-1"}

	if _, err := svc.Purchase(ctx, input); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	res, err := svc.Purchase(ctx, input)
	if err != nil {
		t.Fatalf("replayed purchase: %v", err)
	}
	if res.Balance != 10 {
		t.Fatalf("expected replay to return original balance 10, got %f", res.Balance)
	}
}

func TestPurchaseRejectsBadInput(t *testing.T) {
	svc := NewService(NewInMemory(), staticPrices{}, nil)
	ctx := context.Background()

	if _, err := svc.Purchase(ctx, PurchaseInput{UserID: "u1", Category: platform.CategoryCommunity, Symbol: "", Amount: 5}); err == nil {
		t.Fatalf("expected error for empty symbol")
	}
	if _, err := svc.Purchase(ctx, PurchaseInput{UserID: "u1", Category: platform.CategoryCommunity, Symbol: "SAE", Amount: 0}); err == nil {
		t.Fatalf("expected error for zero amount")
	}
}

func TestReportImpactAwardsTokens(t *testing.T) {
	svc := NewService(NewInMemory(), staticPrices{}, nil)
	ctx := context.Background()

	if _, err := svc.ReportImpact(ctx, "u1", "solar", "installed panels"); err != nil {
		t.Fatalf("report impact: %v", err)
	}
	if _, err := svc.ReportImpact(ctx, "u1", "solar", "more panels"); err != nil {
		t.Fatalf("report impact: %v", err)
	}

	ledger, err := svc.Balances(ctx, "u1")
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if got := ledger.Balance(platform.CategoryImpact, "SOLAR"); got != 2 {
		t.Fatalf("expected 2 impact tokens, got %f", got)
	}
}

func TestSummaryValuesHoldings(t *testing.T) {
	engine := NewInMemory()
	SeedBalance(engine, "u1", platform.CategoryCommunity, "SAE", 10)
	SeedBalance(engine, "u1", platform.CategoryImpact, "SOLAR", 4)
	SeedBalance(engine, "u1", platform.CategoryQuant, "ALGO", 1)
	svc := NewService(engine, staticPrices{"SAE": 2.5, "SOLAR": 1, "ALGO": 100}, nil)

	summary, err := svc.Summary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalValue != 10*2.5+4*1+1*100 {
		t.Fatalf("unexpected total value %f", summary.TotalValue)
	}
	if summary.TotalCommunityTokens != 10 {
		t.Fatalf("unexpected community total %f", summary.TotalCommunityTokens)
	}
	if summary.TotalImpactTokens != 4 {
		t.Fatalf("unexpected impact total %f", summary.TotalImpactTokens)
	}
	if summary.ImpactScore != 4 {
		t.Fatalf("unexpected impact score %d", summary.ImpactScore)
	}
	if summary.ActiveStrategies != 1 {
		t.Fatalf("unexpected active strategies %d", summary.ActiveStrategies)
	}
}
