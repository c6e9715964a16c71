package tokens

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/quantbasket/quantbasket/internal/platform"
)

// Handler exposes token ledger endpoints for the authenticated user.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Balances returns the caller's full token ledger.
func (h *Handler) Balances(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	ledger, err := h.svc.Balances(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(ledger)
}

// Portfolio returns the platform-computed portfolio aggregate.
func (h *Handler) Portfolio(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	summary, err := h.svc.Summary(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(summary)
}

type purchaseRequest struct {
	Category string  `json:"category"`
	Symbol   string  `json:"symbol"`
	Amount   float64 `json:"amount"`
}

// Purchase credits purchased tokens to the caller.
func (h *Handler) Purchase(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	category, err := platform.ParseCategory(req.Category)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.Purchase(c.UserContext(), PurchaseInput{
		UserID:      userID,
		Category:    category,
		Symbol:      req.Symbol,
		Amount:      req.Amount,
		ClientMutID: c.Get("Idempotency-Key"),
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"mutation_id": res.MutationID,
		"balance":     res.Balance,
	})
}

type impactRequest struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Impact records an impact report and rewards the caller.
func (h *Handler) Impact(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req impactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.ReportImpact(c.UserContext(), userID, req.Type, req.Description)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"mutation_id": res.MutationID,
		"balance":     res.Balance,
	})
}
