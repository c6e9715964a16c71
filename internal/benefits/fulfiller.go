package benefits

import (
	"context"

	"github.com/google/uuid"
)

// Fulfiller represents a connector to the system that delivers redeemed
// benefits (event passes, merchandise, governance credits).
type Fulfiller interface {
	Fulfill(ctx context.Context, order Order) (FulfillmentDecision, error)
}

// FulfillmentDecision captures the response from the fulfillment connector.
type FulfillmentDecision struct {
	Reference string
	Status    string
}

// Order encapsulates the details of a benefit to deliver.
type Order struct {
	UserID      string
	BenefitType string
	Symbol      string
	Cost        float64
}

// StaticFulfiller simulates a successful fulfillment integration.
type StaticFulfiller struct{}

// Fulfill approves the order with a synthetic reference.
func (StaticFulfiller) Fulfill(_ context.Context, _ Order) (FulfillmentDecision, error) {
	return FulfillmentDecision{Reference: uuid.NewString(), Status: "approved"}, nil
}
