package profiles

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/quantbasket/quantbasket/internal/platform"
)

// Handler exposes profile endpoints for the authenticated user.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Get returns the caller's profile.
func (h *Handler) Get(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	profile, err := h.svc.Get(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(profile)
}

// Update applies a partial update and returns the stored profile.
func (h *Handler) Update(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var patch platform.ProfilePatch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	profile, err := h.svc.Update(c.UserContext(), userID, patch)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(profile)
}
