package tokens

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quantbasket/quantbasket/internal/notification"
	"github.com/quantbasket/quantbasket/internal/platform"
)

// PriceSource supplies symbol -> unit price for portfolio valuation.
type PriceSource interface {
	PricesBySymbol(ctx context.Context) (map[string]float64, error)
}

// Service wires token ledger mutations for purchases and impact rewards, and
// computes the portfolio aggregate the clients render.
type Service struct {
	engine   Engine
	prices   PriceSource
	notifier notification.Notifier
}

// NewService constructs a token service.
func NewService(engine Engine, prices PriceSource, notifier notification.Notifier) *Service {
	return &Service{engine: engine, prices: prices, notifier: notifier}
}

// Balances returns the holder's full ledger.
func (s *Service) Balances(ctx context.Context, userID string) (platform.TokenLedger, error) {
	return s.engine.Balances(ctx, userID)
}

// Summary recomputes the portfolio aggregate from current balances and
// listed prices.
func (s *Service) Summary(ctx context.Context, userID string) (platform.PortfolioSummary, error) {
	ledger, err := s.engine.Balances(ctx, userID)
	if err != nil {
		return platform.PortfolioSummary{}, err
	}
	prices, err := s.prices.PricesBySymbol(ctx)
	if err != nil {
		return platform.PortfolioSummary{}, err
	}
	return platform.SummarizeLedger(ledger, prices), nil
}

// PurchaseInput captures a token purchase request.
type PurchaseInput struct {
	UserID      string
	Category    platform.Category
	Symbol      string
	Amount      float64
	ClientMutID string
}

// PurchaseResult describes the ledger outcome of a purchase.
type PurchaseResult struct {
	MutationID  string
	Balance     float64
	CompletedAt time.Time
}

// Purchase credits the holder with the purchased tokens. A duplicate client
// mutation identifier returns the original outcome.
func (s *Service) Purchase(ctx context.Context, input PurchaseInput) (PurchaseResult, error) {
	symbol := strings.ToUpper(strings.TrimSpace(input.Symbol))
	if symbol == "" {
		return PurchaseResult{}, fmt.Errorf("symbol is required")
	}
	if input.Amount <= 0 {
		return PurchaseResult{}, fmt.Errorf("amount must be positive")
	}
	if input.ClientMutID == "" {
		input.ClientMutID = uuid.New().String()
	}

	res, err := s.engine.Credit(ctx, input.UserID, input.Category, symbol, input.Amount, "purchase", input.ClientMutID)
	if err != nil {
		if errors.Is(err, ErrDuplicateMutation) {
			return PurchaseResult{MutationID: res.MutationID, Balance: res.Balance}, nil
		}
		return PurchaseResult{}, err
	}

	s.notify(ctx, notification.KindPurchase, input.UserID,
		fmt.Sprintf("purchased %.4f %s (%s)", input.Amount, symbol, input.Category))

	return PurchaseResult{MutationID: res.MutationID, Balance: res.Balance, CompletedAt: time.Now().UTC()}, nil
}

// impactRewardAmount is the fixed number of impact tokens granted per report.
const impactRewardAmount = 1

// ReportImpact records a community impact report and rewards the reporter
// with impact tokens. The rewarded symbol is the uppercased impact type.
func (s *Service) ReportImpact(ctx context.Context, userID, impactType, description string) (MutationResult, error) {
	symbol := strings.ToUpper(strings.TrimSpace(impactType))
	if symbol == "" {
		return MutationResult{}, fmt.Errorf("impact type is required")
	}

	res, err := s.engine.Credit(ctx, userID, platform.CategoryImpact, symbol, impactRewardAmount, "impact", uuid.New().String())
	if err != nil {
		return MutationResult{}, err
	}

	s.notify(ctx, notification.KindImpactReward, userID,
		fmt.Sprintf("impact report %q rewarded with %d %s", description, impactRewardAmount, symbol))

	return res, nil
}

func (s *Service) notify(ctx context.Context, kind, userID, body string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Send(ctx, notification.Message{Kind: kind, Destination: userID, Body: body})
}
