package platform

import (
	"fmt"
	"time"
)

// Category identifies a token bucket on the platform.
type Category string

const (
	CategoryCommunity Category = "community"
	CategoryPortfolio Category = "portfolio"
	CategoryImpact    Category = "impact"
	CategoryQuant     Category = "quant"
)

// Categories lists every valid token category in a stable order.
func Categories() []Category {
	return []Category{CategoryCommunity, CategoryPortfolio, CategoryImpact, CategoryQuant}
}

// ParseCategory validates a raw category string.
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	switch c {
	case CategoryCommunity, CategoryPortfolio, CategoryImpact, CategoryQuant:
		return c, nil
	}
	return "", fmt.Errorf("unknown token category %q", raw)
}

// Session is the platform-issued authentication session for one user.
type Session struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	IssuedAt     time.Time `json:"issued_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Profile holds the user-editable account data plus platform-assigned fields.
type Profile struct {
	UserID          string    `json:"user_id"`
	FullName        string    `json:"full_name"`
	PhoneNumber     string    `json:"phone_number"`
	Location        string    `json:"location"`
	AvatarURL       string    `json:"avatar_url"`
	KYCStatus       string    `json:"kyc_status"`
	ReferralCode    string    `json:"referral_code"`
	WalletConnected bool      `json:"wallet_connected"`
	WalletAddress   string    `json:"wallet_address"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ProfilePatch carries partial profile updates. Nil fields are left untouched.
type ProfilePatch struct {
	FullName    *string `json:"full_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Location    *string `json:"location,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// TokenLedger maps category -> symbol -> balance. Balances are never negative.
type TokenLedger map[Category]map[string]float64

// Balance returns the balance for a symbol, zero when absent.
func (l TokenLedger) Balance(category Category, symbol string) float64 {
	return l[category][symbol]
}

// Clone produces a deep copy so cached ledgers cannot be mutated by callers.
func (l TokenLedger) Clone() TokenLedger {
	if l == nil {
		return nil
	}
	out := make(TokenLedger, len(l))
	for category, symbols := range l {
		balances := make(map[string]float64, len(symbols))
		for symbol, amount := range symbols {
			balances[symbol] = amount
		}
		out[category] = balances
	}
	return out
}

// PortfolioSummary is the platform-computed aggregate over a user's holdings.
// The client treats it as a cache invalidated by any confirmed ledger mutation.
type PortfolioSummary struct {
	TotalValue           float64 `json:"total_value"`
	TotalCommunityTokens float64 `json:"total_community_tokens"`
	TotalImpactTokens    float64 `json:"total_impact_tokens"`
	ImpactScore          int     `json:"impact_score"`
	ActiveStrategies     int     `json:"active_strategies"`
}

// Coin is a catalog entry users can browse and favorite.
type Coin struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}
