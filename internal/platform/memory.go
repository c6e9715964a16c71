package platform

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryAccount struct {
	userID   string
	email    string
	password string
}

// Memory is an in-process implementation of the platform API. It backs the
// client-core tests and qbctl's offline mode.
type Memory struct {
	mu        sync.Mutex
	accounts  map[string]memoryAccount // keyed by email
	refresh   map[string]string        // refresh token -> userID
	profiles  map[string]Profile
	ledgers   map[string]TokenLedger
	coins     []Coin
	favorites map[string]map[string]bool // userID -> coinID
	sessTTL   time.Duration
}

// NewMemory builds an empty in-memory platform.
func NewMemory() *Memory {
	return &Memory{
		accounts:  make(map[string]memoryAccount),
		refresh:   make(map[string]string),
		profiles:  make(map[string]Profile),
		ledgers:   make(map[string]TokenLedger),
		favorites: make(map[string]map[string]bool),
		sessTTL:   time.Hour,
	}
}

// SeedAccount registers an account without going through SignUp and returns
// its user ID.
func (m *Memory) SeedAccount(email, password, fullName string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seedAccountLocked(email, password, fullName)
}

func (m *Memory) seedAccountLocked(email, password, fullName string) string {
	userID := uuid.NewString()
	m.accounts[email] = memoryAccount{userID: userID, email: email, password: password}
	m.profiles[userID] = Profile{
		UserID:       userID,
		FullName:     fullName,
		KYCStatus:    "pending",
		ReferralCode: "QB-REF-" + strings.ToUpper(uuid.NewString()[:6]),
		UpdatedAt:    time.Now().UTC(),
	}
	m.ledgers[userID] = TokenLedger{
		CategoryCommunity: {},
		CategoryPortfolio: {},
		CategoryImpact:    {},
		CategoryQuant:     {},
	}
	return userID
}

// SeedBalance sets a balance directly, creating the category bucket if needed.
func (m *Memory) SeedBalance(userID string, category Category, symbol string, amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger := m.ledgers[userID]
	if ledger == nil {
		ledger = TokenLedger{}
		m.ledgers[userID] = ledger
	}
	if ledger[category] == nil {
		ledger[category] = map[string]float64{}
	}
	ledger[category][symbol] = amount
}

// SeedCoin adds a catalog entry.
func (m *Memory) SeedCoin(symbol, name string, category Category, price float64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	coin := Coin{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Name:      name,
		Category:  category,
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}
	m.coins = append(m.coins, coin)
	return coin.ID
}

func (m *Memory) issueSession(account memoryAccount) Session {
	now := time.Now().UTC()
	sess := Session{
		UserID:       account.userID,
		Email:        account.email,
		AccessToken:  uuid.NewString(),
		RefreshToken: uuid.NewString(),
		IssuedAt:     now,
		ExpiresAt:    now.Add(m.sessTTL),
	}
	m.refresh[sess.RefreshToken] = account.userID
	return sess
}

// SignUp implements AuthAPI.
func (m *Memory) SignUp(_ context.Context, email, password, fullName string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accounts[email]; exists {
		return Session{}, ErrInvalidCredentials
	}
	m.seedAccountLocked(email, password, fullName)
	return m.issueSession(m.accounts[email]), nil
}

// SignInWithPassword implements AuthAPI.
func (m *Memory) SignInWithPassword(_ context.Context, email, password string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[email]
	if !ok || account.password != password {
		return Session{}, ErrInvalidCredentials
	}
	return m.issueSession(account), nil
}

// RestoreSession implements AuthAPI.
func (m *Memory) RestoreSession(_ context.Context, refreshToken string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.refresh[refreshToken]
	if !ok {
		return Session{}, ErrSessionExpired
	}
	delete(m.refresh, refreshToken)
	for _, account := range m.accounts {
		if account.userID == userID {
			return m.issueSession(account), nil
		}
	}
	return Session{}, ErrSessionExpired
}

// OAuthAuthorizeURL implements AuthAPI.
func (m *Memory) OAuthAuthorizeURL(_ context.Context, provider, redirectTo string) (string, error) {
	if provider == "" {
		return "", ErrProvider
	}
	return "https://auth.example.test/" + provider + "?redirect_to=" + redirectTo, nil
}

// SignOut implements AuthAPI.
func (m *Memory) SignOut(_ context.Context, accessToken string) error {
	return nil
}

// RequestPasswordReset implements AuthAPI.
func (m *Memory) RequestPasswordReset(_ context.Context, email string) error {
	return nil
}

// GetProfile implements DataAPI.
func (m *Memory) GetProfile(_ context.Context, userID string) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile, ok := m.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return profile, nil
}

// UpdateProfile implements DataAPI. String fields are trimmed the way the
// real platform normalizes them, so the returned profile is authoritative.
func (m *Memory) UpdateProfile(_ context.Context, userID string, patch ProfilePatch) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile, ok := m.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
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
	m.profiles[userID] = profile
	return profile, nil
}

// GetTokenLedger implements DataAPI.
func (m *Memory) GetTokenLedger(_ context.Context, userID string) (TokenLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, ok := m.ledgers[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return ledger.Clone(), nil
}

// GetPortfolioSummary implements DataAPI.
func (m *Memory) GetPortfolioSummary(_ context.Context, userID string) (PortfolioSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, ok := m.ledgers[userID]
	if !ok {
		return PortfolioSummary{}, ErrNotFound
	}
	prices := make(map[string]float64, len(m.coins))
	for _, coin := range m.coins {
		prices[coin.Symbol] = coin.Price
	}
	return SummarizeLedger(ledger, prices), nil
}

// PurchaseTokens implements DataAPI.
func (m *Memory) PurchaseTokens(_ context.Context, userID string, category Category, symbol string, amount float64) error {
	if amount <= 0 {
		return ErrRemoteRejected
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, ok := m.ledgers[userID]
	if !ok {
		return ErrNotFound
	}
	if ledger[category] == nil {
		ledger[category] = map[string]float64{}
	}
	ledger[category][symbol] += amount
	return nil
}

// ReportImpact implements DataAPI. A confirmed report awards one impact token
// of the reported type.
func (m *Memory) ReportImpact(_ context.Context, userID, impactType, description string) error {
	if impactType == "" {
		return ErrRemoteRejected
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, ok := m.ledgers[userID]
	if !ok {
		return ErrNotFound
	}
	if ledger[CategoryImpact] == nil {
		ledger[CategoryImpact] = map[string]float64{}
	}
	ledger[CategoryImpact][strings.ToUpper(impactType)]++
	return nil
}

// RedeemBenefit implements DataAPI.
func (m *Memory) RedeemBenefit(_ context.Context, userID, benefitType string, cost float64, symbol string) error {
	if cost <= 0 || benefitType == "" {
		return ErrRemoteRejected
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, ok := m.ledgers[userID]
	if !ok {
		return ErrNotFound
	}
	if ledger.Balance(CategoryCommunity, symbol) < cost {
		return ErrInsufficientBalance
	}
	ledger[CategoryCommunity][symbol] -= cost
	return nil
}

// ListCoins implements DataAPI.
func (m *Memory) ListCoins(_ context.Context) ([]Coin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Coin, len(m.coins))
	copy(out, m.coins)
	return out, nil
}

// ListFavorites implements DataAPI.
func (m *Memory) ListFavorites(_ context.Context, userID string) ([]Coin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	marked := m.favorites[userID]
	var out []Coin
	for _, coin := range m.coins {
		if marked[coin.ID] {
			out = append(out, coin)
		}
	}
	return out, nil
}

// AddFavorite implements DataAPI.
func (m *Memory) AddFavorite(_ context.Context, userID, coinID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.favorites[userID] == nil {
		m.favorites[userID] = make(map[string]bool)
	}
	m.favorites[userID][coinID] = true
	return nil
}

// RemoveFavorite implements DataAPI.
func (m *Memory) RemoveFavorite(_ context.Context, userID, coinID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.favorites[userID], coinID)
	return nil
}
