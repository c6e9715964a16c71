package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the access token for authenticated calls. It returns
// an empty string when no session is active.
type TokenSource func() string

// HTTPClient implements the platform API over the platformd REST surface.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

// NewHTTPClient builds a client rooted at baseURL. token may be nil for a
// client that only performs anonymous auth calls.
func NewHTTPClient(baseURL string, token TokenSource) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		token:      token,
	}
}

// statusError maps a non-2xx platform response onto the error taxonomy.
func statusError(status int, netErr error) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrSessionExpired
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnprocessableEntity:
		return ErrInsufficientBalance
	case http.StatusBadRequest, http.StatusConflict:
		return ErrRemoteRejected
	}
	if status >= 500 {
		return netErr
	}
	return fmt.Errorf("platform responded %d: %w", status, ErrRemoteRejected)
}

// do issues one request. netErr is the taxonomy sentinel wrapped around
// transport-level failures (ErrAuthNetwork for auth calls, ErrDataNetwork for
// data calls).
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any, netErr error) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", netErr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, netErr)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", netErr, err)
	}
	return nil
}

// SignUp implements AuthAPI.
func (c *HTTPClient) SignUp(ctx context.Context, email, password, fullName string) (Session, error) {
	var sess Session
	req := map[string]string{"email": email, "password": password, "full_name": fullName}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signup", req, &sess, ErrAuthNetwork); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// SignInWithPassword implements AuthAPI.
func (c *HTTPClient) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	var sess Session
	req := map[string]string{"email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", req, &sess, ErrAuthNetwork)
	if err != nil {
		// The login endpoint rejects bad credentials with 401.
		if errors.Is(err, ErrSessionExpired) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	return sess, nil
}

// RestoreSession implements AuthAPI.
func (c *HTTPClient) RestoreSession(ctx context.Context, refreshToken string) (Session, error) {
	var sess Session
	req := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", req, &sess, ErrAuthNetwork); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// OAuthAuthorizeURL implements AuthAPI.
func (c *HTTPClient) OAuthAuthorizeURL(ctx context.Context, provider, redirectTo string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	req := map[string]string{"redirect_to": redirectTo}
	path := "/api/v1/auth/oauth/" + url.PathEscape(provider)
	if err := c.do(ctx, http.MethodPost, path, req, &resp, ErrAuthNetwork); err != nil {
		if errors.Is(err, ErrRemoteRejected) || errors.Is(err, ErrNotFound) {
			return "", ErrProvider
		}
		return "", err
	}
	return resp.URL, nil
}

// SignOut implements AuthAPI.
func (c *HTTPClient) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/auth/logout", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, ErrAuthNetwork)
	}
	return nil
}

// RequestPasswordReset implements AuthAPI.
func (c *HTTPClient) RequestPasswordReset(ctx context.Context, email string) error {
	req := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/reset-password", req, nil, ErrAuthNetwork)
}

// GetProfile implements DataAPI.
func (c *HTTPClient) GetProfile(ctx context.Context, _ string) (Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/api/v1/me/profile", nil, &profile, ErrDataNetwork); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// UpdateProfile implements DataAPI.
func (c *HTTPClient) UpdateProfile(ctx context.Context, _ string, patch ProfilePatch) (Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodPatch, "/api/v1/me/profile", patch, &profile, ErrDataNetwork); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// GetTokenLedger implements DataAPI.
func (c *HTTPClient) GetTokenLedger(ctx context.Context, _ string) (TokenLedger, error) {
	var ledger TokenLedger
	if err := c.do(ctx, http.MethodGet, "/api/v1/me/tokens", nil, &ledger, ErrDataNetwork); err != nil {
		return nil, err
	}
	return ledger, nil
}

// GetPortfolioSummary implements DataAPI.
func (c *HTTPClient) GetPortfolioSummary(ctx context.Context, _ string) (PortfolioSummary, error) {
	var summary PortfolioSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/me/portfolio", nil, &summary, ErrDataNetwork); err != nil {
		return PortfolioSummary{}, err
	}
	return summary, nil
}

// PurchaseTokens implements DataAPI.
func (c *HTTPClient) PurchaseTokens(ctx context.Context, _ string, category Category, symbol string, amount float64) error {
	req := map[string]any{"category": category, "symbol": symbol, "amount": amount}
	return c.do(ctx, http.MethodPost, "/api/v1/me/tokens/purchase", req, nil, ErrDataNetwork)
}

// ReportImpact implements DataAPI.
func (c *HTTPClient) ReportImpact(ctx context.Context, _ string, impactType, description string) error {
	req := map[string]string{"type": impactType, "description": description}
	return c.do(ctx, http.MethodPost, "/api/v1/me/impact", req, nil, ErrDataNetwork)
}

// RedeemBenefit implements DataAPI.
func (c *HTTPClient) RedeemBenefit(ctx context.Context, _ string, benefitType string, cost float64, symbol string) error {
	req := map[string]any{"benefit_type": benefitType, "cost": cost, "symbol": symbol}
	return c.do(ctx, http.MethodPost, "/api/v1/me/redemptions", req, nil, ErrDataNetwork)
}

// ListCoins implements DataAPI.
func (c *HTTPClient) ListCoins(ctx context.Context) ([]Coin, error) {
	var coins []Coin
	if err := c.do(ctx, http.MethodGet, "/api/v1/coins", nil, &coins, ErrDataNetwork); err != nil {
		return nil, err
	}
	return coins, nil
}

// ListFavorites implements DataAPI.
func (c *HTTPClient) ListFavorites(ctx context.Context, _ string) ([]Coin, error) {
	var coins []Coin
	if err := c.do(ctx, http.MethodGet, "/api/v1/me/favorites", nil, &coins, ErrDataNetwork); err != nil {
		return nil, err
	}
	return coins, nil
}

// AddFavorite implements DataAPI.
func (c *HTTPClient) AddFavorite(ctx context.Context, _ string, coinID string) error {
	req := map[string]string{"coin_id": coinID}
	return c.do(ctx, http.MethodPost, "/api/v1/me/favorites", req, nil, ErrDataNetwork)
}

// RemoveFavorite implements DataAPI.
func (c *HTTPClient) RemoveFavorite(ctx context.Context, _ string, coinID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/me/favorites/"+url.PathEscape(coinID), nil, nil, ErrDataNetwork)
}
