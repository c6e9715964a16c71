package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quantbasket/quantbasket/internal/benefits"
	"github.com/quantbasket/quantbasket/internal/coins"
	"github.com/quantbasket/quantbasket/internal/profiles"
	"github.com/quantbasket/quantbasket/internal/tokens"
)

// RegisterMeRoutes wires the authenticated user's data surface.
func RegisterMeRoutes(r fiber.Router, profileH *profiles.Handler, tokenH *tokens.Handler, benefitH *benefits.Handler, coinH *coins.Handler) {
	me := r.Group("/me")
	me.Get("/profile", profileH.Get)
	me.Patch("/profile", profileH.Update)

	me.Get("/tokens", tokenH.Balances)
	me.Post("/tokens/purchase", tokenH.Purchase)
	me.Get("/portfolio", tokenH.Portfolio)
	me.Post("/impact", tokenH.Impact)
	me.Post("/redemptions", benefitH.Redeem)

	me.Get("/favorites", coinH.Favorites)
	me.Post("/favorites", coinH.AddFavorite)
	me.Delete("/favorites/:id", coinH.RemoveFavorite)
}
