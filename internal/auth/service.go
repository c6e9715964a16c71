package auth

import (
	"context"
	"errors"
	"time"

	"github.com/quantbasket/quantbasket/internal/config"
	"github.com/quantbasket/quantbasket/internal/identity"
	"github.com/quantbasket/quantbasket/internal/platform"
)

// ErrRefreshInvalid indicates the refresh token is expired, malformed, or
// superseded by a logout.
var ErrRefreshInvalid = errors.New("invalid refresh token")

// Service issues and verifies platform sessions.
type Service struct {
	cfg    config.Config
	idRepo identity.Repository
}

// NewService builds an auth service over the identity repository.
func NewService(cfg config.Config, idRepo identity.Repository) *Service {
	return &Service{cfg: cfg, idRepo: idRepo}
}

// IssueSession signs a fresh access/refresh token pair for the user.
func (s *Service) IssueSession(user identity.User) (platform.Session, error) {
	now := time.Now().UTC()
	accessExp := now.Add(s.cfg.AccessTTL)
	refreshExp := now.Add(s.cfg.RefreshTTL)

	access, err := s.sign(user, s.cfg.JWTSecret, now, accessExp)
	if err != nil {
		return platform.Session{}, err
	}
	refresh, err := s.sign(user, s.cfg.RefreshSecret, now, refreshExp)
	if err != nil {
		return platform.Session{}, err
	}
	return platform.Session{
		UserID:       user.ID,
		Email:        user.Email,
		AccessToken:  access,
		RefreshToken: refresh,
		IssuedAt:     now,
		ExpiresAt:    accessExp,
	}, nil
}

func (s *Service) sign(user identity.User, secret string, now, exp time.Time) (string, error) {
	claims := map[string]any{
		"sub":   user.ID,
		"email": user.Email,
		"ver":   user.TokenVersion,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	return SignHS256(claims, []byte(secret))
}

// Refresh redeems a refresh token for a rotated session pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (platform.Session, error) {
	claims, err := ParseAndVerifyHS256(refreshToken, []byte(s.cfg.RefreshSecret))
	if err != nil {
		return platform.Session{}, ErrRefreshInvalid
	}
	if expired(claims) {
		return platform.Session{}, ErrRefreshInvalid
	}
	sub, _ := claims["sub"].(string)
	verFloat, _ := claims["ver"].(float64)

	user, err := s.idRepo.FindByID(ctx, sub)
	if err != nil {
		return platform.Session{}, ErrRefreshInvalid
	}
	if user.TokenVersion != int(verFloat) {
		return platform.Session{}, ErrRefreshInvalid
	}
	return s.IssueSession(user)
}

// Verify checks an access token and returns the subject user ID after
// confirming the token version is still current.
func (s *Service) Verify(ctx context.Context, accessToken string) (string, error) {
	claims, err := ParseAndVerifyHS256(accessToken, []byte(s.cfg.JWTSecret))
	if err != nil {
		return "", ErrTokenInvalid
	}
	if expired(claims) {
		return "", ErrTokenInvalid
	}
	sub, _ := claims["sub"].(string)
	verFloat, _ := claims["ver"].(float64)

	user, err := s.idRepo.FindByID(ctx, sub)
	if err != nil || user.TokenVersion != int(verFloat) {
		return "", ErrTokenInvalid
	}
	return user.ID, nil
}

// Logout bumps the token version so every outstanding token becomes invalid.
func (s *Service) Logout(ctx context.Context, userID string) error {
	user, err := s.idRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.idRepo.UpdateTokenVersion(ctx, user.ID, user.TokenVersion+1)
}

func expired(claims map[string]any) bool {
	expFloat, ok := claims["exp"].(float64)
	if !ok {
		return true
	}
	return time.Now().UTC().Unix() >= int64(expFloat)
}
