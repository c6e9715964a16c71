package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/quantbasket/quantbasket/internal/platform"
)

// ErrNoActiveUser is returned by user-scoped operations while no identity is
// bound to the store.
var ErrNoActiveUser = errors.New("no active user")

// Store caches the authenticated user's profile, token ledger and portfolio
// summary. All cached data is scoped to one user ID at a time; rebinding or
// clearing invalidates every in-flight fetch so a late response for a
// previous user can never repopulate state.
type Store struct {
	api    platform.DataAPI
	logger *slog.Logger

	flight singleflight.Group

	mu        sync.Mutex
	userID    string
	gen       uint64
	profile   *platform.Profile
	ledger    platform.TokenLedger
	summary   *platform.PortfolioSummary
	coins     []platform.Coin
	favorites []platform.Coin
}

// New builds an empty store over the platform data surface.
func New(api platform.DataAPI, logger *slog.Logger) *Store {
	return &Store{api: api, logger: logger}
}

// Activate binds the store to userID. Data cached for a different user is
// dropped first; rebinding to the same user keeps the cache warm.
func (s *Store) Activate(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == userID {
		return
	}
	s.clearLocked()
	s.userID = userID
}

// Clear synchronously drops all cached user data and invalidates in-flight
// fetches. Wired as a session sign-out hook.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.userID = ""
}

func (s *Store) clearLocked() {
	s.gen++
	s.profile = nil
	s.ledger = nil
	s.summary = nil
	s.favorites = nil
}

// scope captures the store binding at the moment an operation starts. Results
// are applied only while the same scope is still current.
type scope struct {
	userID string
	gen    uint64
}

func (s *Store) currentScope() (scope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == "" {
		return scope{}, ErrNoActiveUser
	}
	return scope{userID: s.userID, gen: s.gen}, nil
}

func (s *Store) inScope(sc scope) bool {
	return s.userID == sc.userID && s.gen == sc.gen
}

// Load fetches profile, token ledger and portfolio summary concurrently.
// Concurrent calls for the same user coalesce onto one set of network
// fetches. When a sub-fetch fails, previously cached values for that kind are
// retained and ErrPartialData is returned; the successful kinds still land.
func (s *Store) Load(ctx context.Context, userID string) error {
	s.Activate(userID)
	sc, err := s.currentScope()
	if err != nil {
		return err
	}

	key := fmt.Sprintf("%s@%d", sc.userID, sc.gen)
	_, loadErr, _ := s.flight.Do(key, func() (any, error) {
		return nil, s.fetchAll(ctx, sc)
	})
	return loadErr
}

func (s *Store) fetchAll(ctx context.Context, sc scope) error {
	var (
		eg      errgroup.Group
		profile *platform.Profile
		ledger  platform.TokenLedger
		summary *platform.PortfolioSummary
	)
	eg.Go(func() error {
		p, err := s.api.GetProfile(ctx, sc.userID)
		if err != nil {
			return fmt.Errorf("profile: %w", err)
		}
		profile = &p
		return nil
	})
	eg.Go(func() error {
		l, err := s.api.GetTokenLedger(ctx, sc.userID)
		if err != nil {
			return fmt.Errorf("token ledger: %w", err)
		}
		ledger = l
		return nil
	})
	eg.Go(func() error {
		ps, err := s.api.GetPortfolioSummary(ctx, sc.userID)
		if err != nil {
			return fmt.Errorf("portfolio summary: %w", err)
		}
		summary = &ps
		return nil
	})
	fetchErr := eg.Wait()

	s.mu.Lock()
	if s.inScope(sc) {
		if profile != nil {
			s.profile = profile
		}
		if ledger != nil {
			s.ledger = ledger
		}
		if summary != nil {
			s.summary = summary
		}
	}
	s.mu.Unlock()

	if fetchErr != nil {
		s.logger.Warn("dashboard load incomplete", "user_id", sc.userID, "error", fetchErr)
		return fmt.Errorf("%w: %v", platform.ErrPartialData, fetchErr)
	}
	return nil
}

// UpdateProfile applies the patch remotely and caches the profile the
// platform returns. The response is authoritative; the local patch is never
// echoed into the cache, so server-side normalization wins.
func (s *Store) UpdateProfile(ctx context.Context, patch platform.ProfilePatch) (platform.Profile, error) {
	sc, err := s.currentScope()
	if err != nil {
		return platform.Profile{}, err
	}
	updated, err := s.api.UpdateProfile(ctx, sc.userID, patch)
	if err != nil {
		return platform.Profile{}, err
	}
	s.mu.Lock()
	if s.inScope(sc) {
		s.profile = &updated
	}
	s.mu.Unlock()
	return updated, nil
}

// MutationKind selects which ledger operation a Mutation performs.
type MutationKind string

const (
	MutatePurchase MutationKind = "purchase"
	MutateImpact   MutationKind = "impact"
	MutateRedeem   MutationKind = "redeem"
)

// Mutation describes one ledger-changing user action.
type Mutation struct {
	Kind     MutationKind
	Category platform.Category
	Symbol   string
	Amount   float64
	// BenefitType names what a redemption buys.
	BenefitType string
	// Description annotates an impact report.
	Description string
}

// MutateLedger is the single entry point for purchase, impact and redemption
// operations. Preconditions are validated against the cached ledger before
// any network traffic; a redemption exceeding the cached balance fails fast
// with ErrInsufficientBalance. On remote success the ledger and then the
// summary are re-fetched sequentially — the cache never holds a locally
// guessed post-mutation balance.
func (s *Store) MutateLedger(ctx context.Context, m Mutation) error {
	sc, err := s.currentScope()
	if err != nil {
		return err
	}
	if err := s.validate(m); err != nil {
		return err
	}

	switch m.Kind {
	case MutatePurchase:
		err = s.api.PurchaseTokens(ctx, sc.userID, m.Category, m.Symbol, m.Amount)
	case MutateImpact:
		err = s.api.ReportImpact(ctx, sc.userID, m.Symbol, m.Description)
	case MutateRedeem:
		err = s.api.RedeemBenefit(ctx, sc.userID, m.BenefitType, m.Amount, m.Symbol)
	default:
		return fmt.Errorf("unknown mutation kind %q", m.Kind)
	}
	if err != nil {
		return err
	}
	return s.refetchAfterMutation(ctx, sc)
}

func (s *Store) validate(m Mutation) error {
	switch m.Kind {
	case MutatePurchase:
		if m.Amount <= 0 {
			return fmt.Errorf("%w: purchase amount must be positive", platform.ErrRemoteRejected)
		}
	case MutateImpact:
		if m.Symbol == "" {
			return fmt.Errorf("%w: impact type is required", platform.ErrRemoteRejected)
		}
	case MutateRedeem:
		if m.Amount <= 0 {
			return fmt.Errorf("%w: redemption cost must be positive", platform.ErrRemoteRejected)
		}
		s.mu.Lock()
		balance := s.ledger.Balance(m.Category, m.Symbol)
		s.mu.Unlock()
		if balance < m.Amount {
			return platform.ErrInsufficientBalance
		}
	}
	return nil
}

// refetchAfterMutation refreshes ledger then summary, strictly after the
// mutation response and never concurrently with it.
func (s *Store) refetchAfterMutation(ctx context.Context, sc scope) error {
	ledger, err := s.api.GetTokenLedger(ctx, sc.userID)
	if err != nil {
		s.logger.Warn("post-mutation ledger refetch failed", "user_id", sc.userID, "error", err)
		return fmt.Errorf("%w: ledger refetch: %v", platform.ErrPartialData, err)
	}
	s.mu.Lock()
	if s.inScope(sc) {
		s.ledger = ledger
	}
	s.mu.Unlock()

	summary, err := s.api.GetPortfolioSummary(ctx, sc.userID)
	if err != nil {
		s.logger.Warn("post-mutation summary refetch failed", "user_id", sc.userID, "error", err)
		return fmt.Errorf("%w: summary refetch: %v", platform.ErrPartialData, err)
	}
	s.mu.Lock()
	if s.inScope(sc) {
		s.summary = &summary
	}
	s.mu.Unlock()
	return nil
}

// LoadCatalog fetches the coins catalog. The catalog is not user-scoped and
// survives sign-out.
func (s *Store) LoadCatalog(ctx context.Context) error {
	coins, err := s.api.ListCoins(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.coins = coins
	s.mu.Unlock()
	return nil
}

// LoadFavorites fetches the active user's favorite coins.
func (s *Store) LoadFavorites(ctx context.Context) error {
	sc, err := s.currentScope()
	if err != nil {
		return err
	}
	favorites, err := s.api.ListFavorites(ctx, sc.userID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.inScope(sc) {
		s.favorites = favorites
	}
	s.mu.Unlock()
	return nil
}

// AddFavorite marks a coin and refreshes the favorites cache.
func (s *Store) AddFavorite(ctx context.Context, coinID string) error {
	sc, err := s.currentScope()
	if err != nil {
		return err
	}
	if err := s.api.AddFavorite(ctx, sc.userID, coinID); err != nil {
		return err
	}
	return s.LoadFavorites(ctx)
}

// RemoveFavorite unmarks a coin and refreshes the favorites cache.
func (s *Store) RemoveFavorite(ctx context.Context, coinID string) error {
	sc, err := s.currentScope()
	if err != nil {
		return err
	}
	if err := s.api.RemoveFavorite(ctx, sc.userID, coinID); err != nil {
		return err
	}
	return s.LoadFavorites(ctx)
}

// Profile returns the cached profile, if any.
func (s *Store) Profile() (platform.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return platform.Profile{}, false
	}
	return *s.profile, true
}

// Tokens returns a copy of the cached token ledger, nil when absent.
func (s *Store) Tokens() platform.TokenLedger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Clone()
}

// Summary returns the cached portfolio summary, if any.
func (s *Store) Summary() (platform.PortfolioSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return platform.PortfolioSummary{}, false
	}
	return *s.summary, true
}

// Coins returns the cached catalog.
func (s *Store) Coins() []platform.Coin {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]platform.Coin, len(s.coins))
	copy(out, s.coins)
	return out
}

// Favorites returns the cached favorites for the active user.
func (s *Store) Favorites() []platform.Coin {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]platform.Coin, len(s.favorites))
	copy(out, s.favorites)
	return out
}
