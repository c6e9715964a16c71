package coins

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/quantbasket/quantbasket/internal/platform"
)

// Handler exposes the coin catalog and favorites endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List returns the full catalog.
func (h *Handler) List(c *fiber.Ctx) error {
	coins, err := h.svc.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if coins == nil {
		coins = []platform.Coin{}
	}
	return c.Status(http.StatusOK).JSON(coins)
}

// Favorites returns the caller's starred coins.
func (h *Handler) Favorites(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	coins, err := h.svc.Favorites(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if coins == nil {
		coins = []platform.Coin{}
	}
	return c.Status(http.StatusOK).JSON(coins)
}

type favoriteRequest struct {
	CoinID string `json:"coin_id"`
}

// AddFavorite stars a coin for the caller.
func (h *Handler) AddFavorite(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req favoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AddFavorite(c.UserContext(), userID, req.CoinID); err != nil {
		if errors.Is(err, ErrCoinNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"status": "favorited"})
}

// RemoveFavorite unstars a coin for the caller.
func (h *Handler) RemoveFavorite(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if err := h.svc.RemoveFavorite(c.UserContext(), userID, c.Params("id")); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "removed"})
}
