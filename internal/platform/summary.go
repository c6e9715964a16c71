package platform

import "math"

// SummarizeLedger computes the portfolio aggregate for a ledger given a
// symbol -> unit price table. Symbols without a listed price contribute no
// value. The same arithmetic runs on the platform side after every confirmed
// mutation; clients never compute it from guessed balances.
func SummarizeLedger(ledger TokenLedger, prices map[string]float64) PortfolioSummary {
	var summary PortfolioSummary
	for symbol, amount := range ledger[CategoryCommunity] {
		summary.TotalCommunityTokens += amount
		summary.TotalValue += amount * prices[symbol]
	}
	for symbol, amount := range ledger[CategoryPortfolio] {
		summary.TotalValue += amount * prices[symbol]
	}
	for symbol, amount := range ledger[CategoryImpact] {
		summary.TotalImpactTokens += amount
		summary.TotalValue += amount * prices[symbol]
	}
	for symbol, amount := range ledger[CategoryQuant] {
		if amount > 0 {
			summary.ActiveStrategies++
		}
		summary.TotalValue += amount * prices[symbol]
	}
	summary.ImpactScore = int(math.Min(100, summary.TotalImpactTokens))
	return summary
}
