package platform

import "context"

// AuthAPI is the session-issuance surface of the remote platform.
type AuthAPI interface {
	// SignUp registers a new account and returns its first session.
	SignUp(ctx context.Context, email, password, fullName string) (Session, error)

	// SignInWithPassword exchanges credentials for a session.
	SignInWithPassword(ctx context.Context, email, password string) (Session, error)

	// RestoreSession redeems a persisted refresh token for a fresh session.
	RestoreSession(ctx context.Context, refreshToken string) (Session, error)

	// OAuthAuthorizeURL returns the provider authorization URL the caller
	// should navigate to. redirectTo is where the provider sends the browser
	// back after consent.
	OAuthAuthorizeURL(ctx context.Context, provider, redirectTo string) (string, error)

	// SignOut invalidates every outstanding token for the session's user.
	SignOut(ctx context.Context, accessToken string) error

	// RequestPasswordReset asks the platform to start a reset flow. It
	// succeeds regardless of whether the email is registered.
	RequestPasswordReset(ctx context.Context, email string) error
}

// DataAPI is the record storage/retrieval surface of the remote platform.
// Implementations authenticate using the current session's access token.
type DataAPI interface {
	GetProfile(ctx context.Context, userID string) (Profile, error)
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (Profile, error)
	GetTokenLedger(ctx context.Context, userID string) (TokenLedger, error)
	GetPortfolioSummary(ctx context.Context, userID string) (PortfolioSummary, error)

	PurchaseTokens(ctx context.Context, userID string, category Category, symbol string, amount float64) error
	ReportImpact(ctx context.Context, userID, impactType, description string) error
	RedeemBenefit(ctx context.Context, userID, benefitType string, cost float64, symbol string) error

	ListCoins(ctx context.Context) ([]Coin, error)
	ListFavorites(ctx context.Context, userID string) ([]Coin, error)
	AddFavorite(ctx context.Context, userID, coinID string) error
	RemoveFavorite(ctx context.Context, userID, coinID string) error
}

// API bundles both platform surfaces.
type API interface {
	AuthAPI
	DataAPI
}
