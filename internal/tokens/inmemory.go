package tokens

import (
	"context"
	"sync"

	"github.com/quantbasket/quantbasket/internal/platform"
)

type inMemoryEngine struct {
	mu        sync.RWMutex
	ledgers   map[string]platform.TokenLedger
	mutations map[string]MutationResult
}

// NewInMemory creates a concurrency-safe in-memory token engine useful for
// development mode and unit tests.
func NewInMemory() Engine {
	return &inMemoryEngine{
		ledgers:   make(map[string]platform.TokenLedger),
		mutations: make(map[string]MutationResult),
	}
}

func (e *inMemoryEngine) Balances(_ context.Context, userID string) (platform.TokenLedger, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ledger, ok := e.ledgers[userID]
	if !ok {
		return platform.TokenLedger{}, nil
	}
	return ledger.Clone(), nil
}

func (e *inMemoryEngine) Credit(_ context.Context, userID string, category platform.Category, symbol string, amount float64, kind, clientMutID string) (MutationResult, error) {
	if amount <= 0 {
		return MutationResult{}, ErrInsufficientBalance
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	key := kind + ":" + clientMutID
	if res, exists := e.mutations[key]; exists {
		return res, ErrDuplicateMutation
	}

	balance := e.applyLocked(userID, category, symbol, amount)
	res := MutationResult{MutationID: key, Balance: balance}
	e.mutations[key] = res
	return res, nil
}

func (e *inMemoryEngine) Debit(_ context.Context, userID string, category platform.Category, symbol string, amount float64, kind, clientMutID string) (MutationResult, error) {
	if amount <= 0 {
		return MutationResult{}, ErrInsufficientBalance
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	key := kind + ":" + clientMutID
	if res, exists := e.mutations[key]; exists {
		return res, ErrDuplicateMutation
	}

	if e.ledgers[userID].Balance(category, symbol) < amount {
		return MutationResult{}, ErrInsufficientBalance
	}

	balance := e.applyLocked(userID, category, symbol, -amount)
	res := MutationResult{MutationID: key, Balance: balance}
	e.mutations[key] = res
	return res, nil
}

func (e *inMemoryEngine) Reverse(_ context.Context, userID string, category platform.Category, symbol string, amount float64, kind, clientMutID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := kind + ":" + clientMutID
	if _, exists := e.mutations[key]; !exists {
		return nil
	}
	delete(e.mutations, key)
	e.applyLocked(userID, category, symbol, amount)
	return nil
}

func (e *inMemoryEngine) applyLocked(userID string, category platform.Category, symbol string, delta float64) float64 {
	ledger, ok := e.ledgers[userID]
	if !ok {
		ledger = platform.TokenLedger{}
		e.ledgers[userID] = ledger
	}
	bucket, ok := ledger[category]
	if !ok {
		bucket = make(map[string]float64)
		ledger[category] = bucket
	}
	bucket[symbol] += delta
	return bucket[symbol]
}
