package profiles

import (
	"context"
	"errors"
	"sync"

	"github.com/quantbasket/quantbasket/internal/platform"
)

type memoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]platform.Profile
}

// NewMemoryRepository builds an in-memory profile store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{profiles: make(map[string]platform.Profile)}
}

func (r *memoryRepository) Create(_ context.Context, profile platform.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[profile.UserID]; exists {
		return errors.New("profile exists")
	}
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *memoryRepository) Get(_ context.Context, userID string) (platform.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return platform.Profile{}, ErrProfileNotFound
	}
	return profile, nil
}

func (r *memoryRepository) Save(_ context.Context, profile platform.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.UserID]; !ok {
		return ErrProfileNotFound
	}
	r.profiles[profile.UserID] = profile
	return nil
}
