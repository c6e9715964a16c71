package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quantbasket/quantbasket/internal/coins"
)

// RegisterCoinRoutes wires the public coin catalog.
func RegisterCoinRoutes(r fiber.Router, h *coins.Handler) {
	r.Get("/coins", h.List)
}
