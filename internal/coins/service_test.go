package coins

import (
	"context"
	"errors"
	"testing"

	"github.com/quantbasket/quantbasket/internal/platform"
)

func TestRegisterAndList(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	coin, err := svc.Register(ctx, " sae ", "Solar Alliance", platform.CategoryCommunity, 2.5)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if coin.Symbol != "SAE" {
		t.Fatalf("expected normalized symbol SAE, got %s", coin.Symbol)
	}

	coins, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(coins) != 1 || coins[0].ID != coin.ID {
		t.Fatalf("expected the registered coin, got %+v", coins)
	}
}

func TestFavoritesLifecycle(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	coin, err := svc.Register(ctx, "ROTO", "Robotics Cooperative", platform.CategoryCommunity, 1.2)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.AddFavorite(ctx, "u1", coin.ID); err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	// Starring twice stays a single favorite.
	if err := svc.AddFavorite(ctx, "u1", coin.ID); err != nil {
		t.Fatalf("add favorite again: %v", err)
	}

	favorites, err := svc.Favorites(ctx, "u1")
	if err != nil {
		t.Fatalf("favorites: %v", err)
	}
	if len(favorites) != 1 || favorites[0].ID != coin.ID {
		t.Fatalf("expected one favorite, got %+v", favorites)
	}

	if err := svc.RemoveFavorite(ctx, "u1", coin.ID); err != nil {
		t.Fatalf("remove favorite: %v", err)
	}
	favorites, err = svc.Favorites(ctx, "u1")
	if err != nil {
		t.Fatalf("favorites: %v", err)
	}
	if len(favorites) != 0 {
		t.Fatalf("expected no favorites, got %+v", favorites)
	}
}

func TestAddFavoriteUnknownCoin(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	if err := svc.AddFavorite(context.Background(), "u1", "missing"); !errors.Is(err, ErrCoinNotFound) {
		t.Fatalf("expected ErrCoinNotFound, got %v", err)
	}
}

func TestPricesBySymbol(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "SAE", "Solar Alliance", platform.CategoryCommunity, 2.5); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "ALGO", "Momentum Basket", platform.CategoryQuant, 100); err != nil {
		t.Fatalf("register: %v", err)
	}

	prices, err := svc.PricesBySymbol(ctx)
	if err != nil {
		t.Fatalf("prices: %v", err)
	}
	if prices["SAE"] != 2.5 || prices["ALGO"] != 100 {
		t.Fatalf("unexpected prices %+v", prices)
	}
}
