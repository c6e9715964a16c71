package platform

import "testing"

func TestSummarizeLedger(t *testing.T) {
	ledger := TokenLedger{
		CategoryCommunity: {"SAE": 100, "WCT": 20},
		CategoryImpact:    {"TREE_PLANTING": 30},
		CategoryQuant:     {"MOMENTUM": 5, "ARB": 0},
	}
	prices := map[string]float64{
		"SAE":           2,
		"WCT":           1,
		"TREE_PLANTING": 0.5,
		"MOMENTUM":      10,
	}

	summary := SummarizeLedger(ledger, prices)

	if summary.TotalCommunityTokens != 120 {
		t.Fatalf("community tokens: expected 120, got %f", summary.TotalCommunityTokens)
	}
	if summary.TotalImpactTokens != 30 {
		t.Fatalf("impact tokens: expected 30, got %f", summary.TotalImpactTokens)
	}
	// 100*2 + 20*1 + 30*0.5 + 5*10
	if summary.TotalValue != 285 {
		t.Fatalf("total value: expected 285, got %f", summary.TotalValue)
	}
	if summary.ImpactScore != 30 {
		t.Fatalf("impact score: expected 30, got %d", summary.ImpactScore)
	}
	// Zero-balance strategies do not count as active.
	if summary.ActiveStrategies != 1 {
		t.Fatalf("active strategies: expected 1, got %d", summary.ActiveStrategies)
	}
}

func TestSummarizeLedgerCapsImpactScore(t *testing.T) {
	ledger := TokenLedger{CategoryImpact: {"TREE_PLANTING": 500}}

	summary := SummarizeLedger(ledger, nil)
	if summary.ImpactScore != 100 {
		t.Fatalf("expected capped score 100, got %d", summary.ImpactScore)
	}
}

func TestSummarizeLedgerUnpricedSymbols(t *testing.T) {
	ledger := TokenLedger{CategoryCommunity: {"SAE": 50}}

	summary := SummarizeLedger(ledger, nil)
	if summary.TotalCommunityTokens != 50 {
		t.Fatalf("expected token count independent of pricing, got %f", summary.TotalCommunityTokens)
	}
	if summary.TotalValue != 0 {
		t.Fatalf("expected zero value for unpriced symbols, got %f", summary.TotalValue)
	}
}
