package benefits

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quantbasket/quantbasket/internal/notification"
	"github.com/quantbasket/quantbasket/internal/platform"
	"github.com/quantbasket/quantbasket/internal/tokens"
)

// Service coordinates benefit redemptions: community tokens are debited and
// the benefit is handed to the fulfillment connector.
type Service struct {
	engine    tokens.Engine
	fulfiller Fulfiller
	notifier  notification.Notifier
}

// NewService prepares a redemption service.
func NewService(engine tokens.Engine, fulfiller Fulfiller, notifier notification.Notifier) *Service {
	if fulfiller == nil {
		fulfiller = StaticFulfiller{}
	}
	return &Service{engine: engine, fulfiller: fulfiller, notifier: notifier}
}

// RedeemInput captures the required data for a redemption.
type RedeemInput struct {
	UserID      string
	BenefitType string
	Symbol      string
	Cost        float64
	ClientMutID string
}

// RedeemResult represents the domain outcome of a redemption.
type RedeemResult struct {
	MutationID         string
	Balance            float64
	FulfillerReference string
	CompletedAt        time.Time
}

// Redeem debits the community token cost and orders the benefit. The debit
// happens first so an overdrawn redemption never reaches the fulfiller; a
// failed fulfillment reverses the debit so the cost and the benefit apply
// together or not at all.
func (s *Service) Redeem(ctx context.Context, input RedeemInput) (RedeemResult, error) {
	benefitType := strings.TrimSpace(input.BenefitType)
	if benefitType == "" {
		return RedeemResult{}, fmt.Errorf("benefit type is required")
	}
	symbol := strings.ToUpper(strings.TrimSpace(input.Symbol))
	if symbol == "" {
		return RedeemResult{}, fmt.Errorf("symbol is required")
	}
	if input.Cost <= 0 {
		return RedeemResult{}, fmt.Errorf("cost must be positive")
	}
	if input.ClientMutID == "" {
		input.ClientMutID = uuid.NewString()
	}

	res, err := s.engine.Debit(ctx, input.UserID, platform.CategoryCommunity, symbol, input.Cost, "redemption", input.ClientMutID)
	if err != nil {
		if errors.Is(err, tokens.ErrDuplicateMutation) {
			return RedeemResult{MutationID: res.MutationID, Balance: res.Balance, CompletedAt: time.Now().UTC()}, nil
		}
		return RedeemResult{}, err
	}

	decision, err := s.fulfiller.Fulfill(ctx, Order{
		UserID:      input.UserID,
		BenefitType: benefitType,
		Symbol:      symbol,
		Cost:        input.Cost,
	})
	if err != nil {
		// The benefit never materialized, so the debit must not stand.
		// Reversing also frees the client mutation id for a retry.
		if revErr := s.engine.Reverse(ctx, input.UserID, platform.CategoryCommunity, symbol, input.Cost, "redemption", input.ClientMutID); revErr != nil {
			return RedeemResult{}, fmt.Errorf("fulfillment failed (%v) and debit reversal failed: %w", err, revErr)
		}
		return RedeemResult{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindRedemption,
			Destination: input.UserID,
			Body:        fmt.Sprintf("redeemed %s for %.4f %s", benefitType, input.Cost, symbol),
		})
	}

	return RedeemResult{
		MutationID:         res.MutationID,
		Balance:            res.Balance,
		FulfillerReference: decision.Reference,
		CompletedAt:        time.Now().UTC(),
	}, nil
}
