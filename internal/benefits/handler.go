package benefits

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/quantbasket/quantbasket/internal/tokens"
)

// Handler exposes the redemption endpoint.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type redeemRequest struct {
	BenefitType string  `json:"benefit_type"`
	Symbol      string  `json:"symbol"`
	Cost        float64 `json:"cost"`
}

// Redeem debits community tokens and orders the benefit.
func (h *Handler) Redeem(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req redeemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.Redeem(c.UserContext(), RedeemInput{
		UserID:      userID,
		BenefitType: req.BenefitType,
		Symbol:      req.Symbol,
		Cost:        req.Cost,
		ClientMutID: c.Get("Idempotency-Key"),
	})
	if err != nil {
		if errors.Is(err, tokens.ErrInsufficientBalance) {
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"mutation_id": res.MutationID,
		"balance":     res.Balance,
		"reference":   res.FulfillerReference,
	})
}
