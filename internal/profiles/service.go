package profiles

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quantbasket/quantbasket/internal/platform"
)

const (
	kycPending         = "pending"
	referralCodePrefix = "QB-REF-"
)

// Service exposes profile operations.
type Service struct {
	repo Repository
}

// NewService builds a profile service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create provisions the profile row for a freshly registered user, assigning
// a referral code and a pending KYC status.
func (s *Service) Create(ctx context.Context, userID, fullName string) (platform.Profile, error) {
	profile := platform.Profile{
		UserID:       userID,
		FullName:     strings.TrimSpace(fullName),
		KYCStatus:    kycPending,
		ReferralCode: newReferralCode(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return platform.Profile{}, err
	}
	return profile, nil
}

// Get retrieves the profile for a user.
func (s *Service) Get(ctx context.Context, userID string) (platform.Profile, error) {
	return s.repo.Get(ctx, userID)
}

// Update applies a patch and returns the stored profile. Patched strings are
// normalized here, so the response is authoritative and may differ from the
// submitted patch.
func (s *Service) Update(ctx context.Context, userID string, patch platform.ProfilePatch) (platform.Profile, error) {
	profile, err := s.repo.Get(ctx, userID)
	if err != nil {
		return platform.Profile{}, err
	}
	if patch.FullName != nil {
		profile.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.PhoneNumber != nil {
		profile.PhoneNumber = strings.TrimSpace(*patch.PhoneNumber)
	}
	if patch.Location != nil {
		profile.Location = strings.TrimSpace(*patch.Location)
	}
	if patch.AvatarURL != nil {
		profile.AvatarURL = strings.TrimSpace(*patch.AvatarURL)
	}
	profile.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, profile); err != nil {
		return platform.Profile{}, err
	}
	return profile, nil
}

func newReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return referralCodePrefix + strings.ToUpper(raw[:6])
}
