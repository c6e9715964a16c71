package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrUnknownProvider indicates an unsupported OAuth provider.
var ErrUnknownProvider = errors.New("unknown oauth provider")

// providerAuthorizeBase maps provider names to their authorization endpoints.
var providerAuthorizeBase = map[string]string{
	"google": "https://accounts.google.com/o/oauth2/v2/auth",
	"github": "https://github.com/login/oauth/authorize",
}

// StateStore persists OAuth state nonces until the provider redirects back.
type StateStore interface {
	// Create stores the redirect target under a fresh nonce.
	Create(ctx context.Context, redirectTo string) (string, error)
	// Consume redeems a nonce exactly once, returning its redirect target.
	Consume(ctx context.Context, state string) (string, error)
}

const oauthStatePrefix = "oauth:state:"

// RedisStateStore keeps nonces in Redis with a TTL.
type RedisStateStore struct {
	cache *redis.Client
	ttl   time.Duration
}

// NewRedisStateStore builds a Redis-backed state store.
func NewRedisStateStore(cache *redis.Client, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{cache: cache, ttl: ttl}
}

// Create implements StateStore.
func (s *RedisStateStore) Create(ctx context.Context, redirectTo string) (string, error) {
	state := uuid.NewString()
	if err := s.cache.Set(ctx, oauthStatePrefix+state, redirectTo, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return state, nil
}

// Consume implements StateStore.
func (s *RedisStateStore) Consume(ctx context.Context, state string) (string, error) {
	redirectTo, err := s.cache.GetDel(ctx, oauthStatePrefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errors.New("unknown oauth state")
		}
		return "", fmt.Errorf("redeem oauth state: %w", err)
	}
	return redirectTo, nil
}

// memoryStateStore is the dev fallback when Redis is absent.
type memoryStateStore struct {
	mu     sync.Mutex
	states map[string]string
}

// NewMemoryStateStore builds an in-process state store.
func NewMemoryStateStore() StateStore {
	return &memoryStateStore{states: make(map[string]string)}
}

func (s *memoryStateStore) Create(_ context.Context, redirectTo string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := uuid.NewString()
	s.states[state] = redirectTo
	return state, nil
}

func (s *memoryStateStore) Consume(_ context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	redirectTo, ok := s.states[state]
	if !ok {
		return "", errors.New("unknown oauth state")
	}
	delete(s.states, state)
	return redirectTo, nil
}

// AuthorizeURL builds the provider authorization URL for a sign-in redirect,
// registering a state nonce bound to the redirect target.
func AuthorizeURL(ctx context.Context, states StateStore, provider, redirectTo string) (string, error) {
	base, ok := providerAuthorizeBase[provider]
	if !ok {
		return "", ErrUnknownProvider
	}
	state, err := states.Create(ctx, redirectTo)
	if err != nil {
		return "", err
	}
	query := url.Values{
		"response_type": {"code"},
		"redirect_uri":  {redirectTo},
		"state":         {state},
	}
	return base + "?" + query.Encode(), nil
}
