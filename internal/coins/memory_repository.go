package coins

import (
	"context"
	"sync"

	"github.com/quantbasket/quantbasket/internal/platform"
)

type memoryRepository struct {
	mu        sync.RWMutex
	order     []string
	coins     map[string]platform.Coin
	favorites map[string][]string // userID -> coin IDs in star order
}

// NewMemoryRepository builds an in-memory catalog for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		coins:     make(map[string]platform.Coin),
		favorites: make(map[string][]string),
	}
}

func (r *memoryRepository) List(_ context.Context) ([]platform.Coin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	coins := make([]platform.Coin, 0, len(r.order))
	for _, id := range r.order {
		coins = append(coins, r.coins[id])
	}
	return coins, nil
}

func (r *memoryRepository) Get(_ context.Context, coinID string) (platform.Coin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	coin, ok := r.coins[coinID]
	if !ok {
		return platform.Coin{}, ErrCoinNotFound
	}
	return coin, nil
}

func (r *memoryRepository) Insert(_ context.Context, coin platform.Coin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.coins[coin.ID]; !exists {
		r.order = append(r.order, coin.ID)
	}
	r.coins[coin.ID] = coin
	return nil
}

func (r *memoryRepository) Favorites(_ context.Context, userID string) ([]platform.Coin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.favorites[userID]
	coins := make([]platform.Coin, 0, len(ids))
	for _, id := range ids {
		if coin, ok := r.coins[id]; ok {
			coins = append(coins, coin)
		}
	}
	return coins, nil
}

func (r *memoryRepository) AddFavorite(_ context.Context, userID, coinID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.coins[coinID]; !ok {
		return ErrCoinNotFound
	}
	for _, id := range r.favorites[userID] {
		if id == coinID {
			return nil
		}
	}
	r.favorites[userID] = append(r.favorites[userID], coinID)
	return nil
}

func (r *memoryRepository) RemoveFavorite(_ context.Context, userID, coinID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.favorites[userID]
	for i, id := range ids {
		if id == coinID {
			r.favorites[userID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}
