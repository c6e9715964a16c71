package tokens

import "github.com/quantbasket/quantbasket/internal/platform"

// SeedBalance is a test helper that seeds a holding when using the in-memory engine.
func SeedBalance(e Engine, userID string, category platform.Category, symbol string, amount float64) {
	if mem, ok := e.(*inMemoryEngine); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.applyLocked(userID, category, symbol, amount)
	}
}
