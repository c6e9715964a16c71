package tokens

import (
	"context"
	"errors"

	"github.com/quantbasket/quantbasket/internal/platform"
)

var (
	// ErrInsufficientBalance occurs when a debit exceeds the holder's balance
	// for the touched symbol.
	ErrInsufficientBalance = errors.New("insufficient token balance")

	// ErrDuplicateMutation indicates the provided client mutation identifier
	// already exists and therefore the operation should be treated as
	// idempotent.
	ErrDuplicateMutation = errors.New("duplicate mutation")
)

// MutationResult captures the outcome of a ledger mutation.
type MutationResult struct {
	MutationID string
	Balance    float64
}

// Engine defines the contract implemented by token ledger backends.
type Engine interface {
	Balances(ctx context.Context, userID string) (platform.TokenLedger, error)
	Credit(ctx context.Context, userID string, category platform.Category, symbol string, amount float64, kind, clientMutID string) (MutationResult, error)
	Debit(ctx context.Context, userID string, category platform.Category, symbol string, amount float64, kind, clientMutID string) (MutationResult, error)
	// Reverse compensates a previously applied debit: the amount is
	// credited back and the (kind, clientMutID) record is released so a
	// retry with the same identifier re-executes instead of replaying.
	// Reversing an unknown mutation is a no-op.
	Reverse(ctx context.Context, userID string, category platform.Category, symbol string, amount float64, kind, clientMutID string) error
}
