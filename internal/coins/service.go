package coins

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quantbasket/quantbasket/internal/platform"
)

// Service exposes the coin catalog and per-user favorites.
type Service struct {
	repo Repository
}

// NewService builds a coin service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the full catalog.
func (s *Service) List(ctx context.Context) ([]platform.Coin, error) {
	return s.repo.List(ctx)
}

// Register lists a new coin and returns it.
func (s *Service) Register(ctx context.Context, symbol, name string, category platform.Category, price float64) (platform.Coin, error) {
	coin := platform.Coin{
		ID:        uuid.New().String(),
		Symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
		Name:      strings.TrimSpace(name),
		Category:  category,
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, coin); err != nil {
		return platform.Coin{}, err
	}
	return coin, nil
}

// Favorites lists the coins a user has starred.
func (s *Service) Favorites(ctx context.Context, userID string) ([]platform.Coin, error) {
	return s.repo.Favorites(ctx, userID)
}

// AddFavorite stars a coin for the user.
func (s *Service) AddFavorite(ctx context.Context, userID, coinID string) error {
	return s.repo.AddFavorite(ctx, userID, coinID)
}

// RemoveFavorite unstars a coin for the user.
func (s *Service) RemoveFavorite(ctx context.Context, userID, coinID string) error {
	return s.repo.RemoveFavorite(ctx, userID, coinID)
}

// PricesBySymbol exposes catalog prices for portfolio valuation.
func (s *Service) PricesBySymbol(ctx context.Context) (map[string]float64, error) {
	coins, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]float64, len(coins))
	for _, coin := range coins {
		prices[coin.Symbol] = coin.Price
	}
	return prices, nil
}
