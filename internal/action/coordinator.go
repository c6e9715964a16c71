package action

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/quantbasket/quantbasket/internal/dashboard"
	"github.com/quantbasket/quantbasket/internal/platform"
)

// Kind names a user-triggered mutation.
type Kind string

const (
	KindPurchase      Kind = "purchase"
	KindImpact        Kind = "impact"
	KindRedeem        Kind = "redeem"
	KindProfileUpdate Kind = "profile_update"
)

// Phase is the lifecycle of a pending action.
type Phase int

const (
	PhaseInFlight Phase = iota
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseInFlight:
		return "in_flight"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Record is the observable state of one (user, kind) action slot.
type Record struct {
	Kind      Kind
	Phase     Phase
	Err       error
	StartedAt time.Time
	EndedAt   time.Time
}

// Payload carries the kind-specific arguments of a dispatch.
type Payload struct {
	Category    platform.Category
	Symbol      string
	Amount      float64
	BenefitType string
	Description string
	// Profile is required for KindProfileUpdate.
	Profile *platform.ProfilePatch
}

type slotKey struct {
	userID string
	kind   Kind
}

// Coordinator serializes user-triggered mutations against the dashboard
// store. At most one action of a given kind may be in flight per user;
// re-entrant dispatches (double clicks, retry storms) are rejected with
// ErrActionInProgress, and the store's post-mutation re-fetch remains the
// only source of balance changes.
type Coordinator struct {
	store  *dashboard.Store
	logger *slog.Logger

	mu      sync.Mutex
	records map[slotKey]Record
}

// New builds a coordinator over the dashboard store.
func New(store *dashboard.Store, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:   store,
		logger:  logger,
		records: make(map[slotKey]Record),
	}
}

// Dispatch runs one action end to end. The (userID, kind) slot is held for
// the duration and released on completion regardless of outcome, so a failed
// action can be retried immediately.
func (c *Coordinator) Dispatch(ctx context.Context, userID string, kind Kind, payload Payload) error {
	key := slotKey{userID: userID, kind: kind}

	c.mu.Lock()
	if record, ok := c.records[key]; ok && record.Phase == PhaseInFlight {
		c.mu.Unlock()
		return platform.ErrActionInProgress
	}
	c.records[key] = Record{Kind: kind, Phase: PhaseInFlight, StartedAt: time.Now().UTC()}
	c.mu.Unlock()

	err := c.run(ctx, kind, payload)

	c.mu.Lock()
	record := c.records[key]
	record.EndedAt = time.Now().UTC()
	record.Err = err
	if err != nil {
		record.Phase = PhaseFailed
	} else {
		record.Phase = PhaseSucceeded
	}
	c.records[key] = record
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("action failed", "user_id", userID, "kind", string(kind), "error", err)
	} else {
		c.logger.Info("action completed", "user_id", userID, "kind", string(kind))
	}
	return err
}

func (c *Coordinator) run(ctx context.Context, kind Kind, payload Payload) error {
	switch kind {
	case KindPurchase:
		return c.store.MutateLedger(ctx, dashboard.Mutation{
			Kind:     dashboard.MutatePurchase,
			Category: payload.Category,
			Symbol:   payload.Symbol,
			Amount:   payload.Amount,
		})
	case KindImpact:
		return c.store.MutateLedger(ctx, dashboard.Mutation{
			Kind:        dashboard.MutateImpact,
			Symbol:      payload.Symbol,
			Description: payload.Description,
		})
	case KindRedeem:
		return c.store.MutateLedger(ctx, dashboard.Mutation{
			Kind:        dashboard.MutateRedeem,
			Category:    payload.Category,
			Symbol:      payload.Symbol,
			Amount:      payload.Amount,
			BenefitType: payload.BenefitType,
		})
	case KindProfileUpdate:
		if payload.Profile == nil {
			return fmt.Errorf("profile update requires a patch")
		}
		_, err := c.store.UpdateProfile(ctx, *payload.Profile)
		return err
	}
	return fmt.Errorf("unknown action kind %q", kind)
}

// Status returns the latest record for a (user, kind) slot.
func (c *Coordinator) Status(userID string, kind Kind) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	record, ok := c.records[slotKey{userID: userID, kind: kind}]
	return record, ok
}

// ResetAll drops every record, typically on sign-out.
func (c *Coordinator) ResetAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make(map[slotKey]Record)
}

// Reset drops all records for a user, typically on sign-out.
func (c *Coordinator) Reset(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.records {
		if key.userID == userID {
			delete(c.records, key)
		}
	}
}
