package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/quantbasket/quantbasket/internal/platform"
)

// State is the authentication lifecycle phase. Unknown is the only valid
// initial state and is left exactly once, through Init.
type State int

const (
	StateUnknown State = iota
	StateAuthenticating
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Resolved reports whether the state machine has settled on an answer.
func (s State) Resolved() bool {
	return s == StateAuthenticated || s == StateAnonymous
}

// Identity is the authenticated user. Exactly one or zero valid identities
// exist client-side at any time; the Store owns its lifecycle.
type Identity struct {
	UserID      string
	Email       string
	AccessToken string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Status pairs the current state with the identity, which is non-nil only
// while authenticated.
type Status struct {
	State    State
	Identity *Identity
}

// Store owns sign-in/sign-out/restore side effects and publishes every state
// transition to subscribers in order.
type Store struct {
	auth     platform.AuthAPI
	cache    *TokenCache
	redirect RedirectConfig
	logger   *slog.Logger

	mu          sync.Mutex
	status      Status
	refreshTok  string
	initialized bool
	nextSubID   int
	subs        map[int]*subscriber
	resets      []func()
}

// New constructs a Store in the Unknown state. cache may be nil when session
// persistence is not wanted (tests, ephemeral CLIs).
func New(auth platform.AuthAPI, cache *TokenCache, redirect RedirectConfig, logger *slog.Logger) *Store {
	return &Store{
		auth:     auth,
		cache:    cache,
		redirect: redirect,
		logger:   logger,
		status:   Status{State: StateUnknown},
		subs:     make(map[int]*subscriber),
	}
}

// Current returns the latest status.
func (s *Store) Current() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// AccessToken returns the current session token, empty when not
// authenticated. Satisfies platform.TokenSource.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Identity == nil {
		return ""
	}
	return s.status.Identity.AccessToken
}

// Subscribe registers fn for status updates. The current status is delivered
// immediately, then every later transition exactly once, in order. Delivery
// runs on a dedicated goroutine per subscriber so fn may call back into the
// store. The returned func cancels the subscription.
func (s *Store) Subscribe(fn func(Status)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	sub := newSubscriber(fn)
	sub.push(s.status)
	s.subs[id] = sub
	return func() {
		s.mu.Lock()
		if existing, ok := s.subs[id]; ok {
			delete(s.subs, id)
			existing.close()
		}
		s.mu.Unlock()
	}
}

// OnSignOut registers fn to run synchronously inside every transition to
// Anonymous, before subscribers are notified. Dependent stores use this to
// drop identity-scoped data with no window where stale data is observable.
func (s *Store) OnSignOut(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets = append(s.resets, fn)
}

// Close cancels all subscriptions.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sub := range s.subs {
		delete(s.subs, id)
		sub.close()
	}
}

// ErrAlreadyInitialized is returned by a second Init call.
var ErrAlreadyInitialized = errors.New("session store already initialized")

// Init performs the one-time session restore. The state always resolves to
// Authenticated or Anonymous; a restore failure is reported but still
// resolves to Anonymous.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return ErrAlreadyInitialized
	}
	s.initialized = true
	s.mu.Unlock()

	token := ""
	if s.cache != nil {
		stored, err := s.cache.Load()
		if err != nil {
			s.logger.Warn("session cache unreadable", "error", err)
		}
		token = stored
	}
	if token == "" {
		s.settleAnonymous()
		return nil
	}

	sess, err := s.auth.RestoreSession(ctx, token)
	if err != nil {
		// Evict the dead token unless a sign-in completed meanwhile and
		// cached a fresh one.
		if errors.Is(err, platform.ErrSessionExpired) && s.cache != nil && s.Current().State != StateAuthenticated {
			if clearErr := s.cache.Clear(); clearErr != nil {
				s.logger.Warn("session cache clear failed", "error", clearErr)
			}
		}
		s.logger.Info("session restore failed", "error", err)
		s.settleAnonymous()
		return err
	}
	s.applySession(sess)
	return nil
}

// ErrAuthInProgress is returned when a sign-in or sign-up starts while
// another attempt is still in flight.
var ErrAuthInProgress = errors.New("authentication already in progress")

// beginAttempt moves the store into Authenticating, rejecting the call when a
// session already exists or another attempt holds the state.
func (s *Store) beginAttempt() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.status.State {
	case StateAuthenticated:
		return fmt.Errorf("already authenticated")
	case StateAuthenticating:
		return ErrAuthInProgress
	}
	s.transitionLocked(Status{State: StateAuthenticating})
	return nil
}

// SignIn exchanges credentials for an identity, moving through
// Authenticating and settling on Authenticated or Anonymous.
func (s *Store) SignIn(ctx context.Context, email, password string) (Identity, error) {
	if err := s.beginAttempt(); err != nil {
		return Identity{}, err
	}
	sess, err := s.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.settleAnonymous()
		return Identity{}, err
	}
	return s.applySession(sess), nil
}

// SignUp registers a new account and signs it in. The state machine moves
// through Authenticating exactly as for SignIn.
func (s *Store) SignUp(ctx context.Context, email, password, fullName string) (Identity, error) {
	if err := s.beginAttempt(); err != nil {
		return Identity{}, err
	}
	sess, err := s.auth.SignUp(ctx, email, password, fullName)
	if err != nil {
		s.settleAnonymous()
		return Identity{}, err
	}
	return s.applySession(sess), nil
}

// RequestPasswordReset forwards a reset request. It has no effect on session
// state; the flow completes out of band.
func (s *Store) RequestPasswordReset(ctx context.Context, email string) error {
	return s.auth.RequestPasswordReset(ctx, email)
}

// SignInWithOAuth resolves the redirect target for the current deployment
// context and asks the platform for the provider authorization URL. The
// caller performs the actual browser navigation; the eventual session is
// observed through Init/Subscribe once the browser returns.
func (s *Store) SignInWithOAuth(ctx context.Context, provider, hostname string) (string, error) {
	target := s.redirect.Target(hostname)
	authorizeURL, err := s.auth.OAuthAuthorizeURL(ctx, provider, target)
	if err != nil {
		return "", err
	}
	s.logger.Info("oauth redirect prepared", "provider", provider, "redirect_to", target)
	return authorizeURL, nil
}

// SignOut destroys the identity, resets dependent stores synchronously, and
// settles on Anonymous. The remote revocation is best effort; local state is
// cleared regardless.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	var token string
	if s.status.Identity != nil {
		token = s.status.Identity.AccessToken
	}
	s.refreshTok = ""
	s.transitionLocked(Status{State: StateAnonymous})
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.Clear(); err != nil {
			s.logger.Warn("session cache clear failed", "error", err)
		}
	}
	if token == "" {
		return nil
	}
	if err := s.auth.SignOut(ctx, token); err != nil {
		s.logger.Warn("remote sign-out failed", "error", err)
		return err
	}
	return nil
}

func (s *Store) applySession(sess platform.Session) Identity {
	identity := Identity{
		UserID:      sess.UserID,
		Email:       sess.Email,
		AccessToken: sess.AccessToken,
		IssuedAt:    sess.IssuedAt,
		ExpiresAt:   sess.ExpiresAt,
	}
	if s.cache != nil {
		if err := s.cache.Save(sess.RefreshToken); err != nil {
			s.logger.Warn("session cache write failed", "error", err)
		}
	}
	s.mu.Lock()
	s.refreshTok = sess.RefreshToken
	s.transitionLocked(Status{State: StateAuthenticated, Identity: &identity})
	s.mu.Unlock()
	return identity
}

// settleAnonymous resolves a failed attempt to Anonymous. A session
// established while the failing call was in flight stays intact; the late
// failure must never tear down someone else's success.
func (s *Store) settleAnonymous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.State == StateAuthenticated {
		return
	}
	s.transitionLocked(Status{State: StateAnonymous})
}

// transitionLocked records the new status and fans it out. Reset hooks run
// first on every entry into Anonymous so subscribers never observe the old
// identity's data after the transition.
func (s *Store) transitionLocked(next Status) {
	s.status = next
	if next.State == StateAnonymous {
		for _, reset := range s.resets {
			reset()
		}
	}
	for _, sub := range s.subs {
		sub.push(next)
	}
}
