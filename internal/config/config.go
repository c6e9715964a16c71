package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quantbasket/quantbasket/internal/session"
)

const (
	defaultAppName          = "QuantBasket"
	defaultAppEnv           = "development"
	defaultPort             = "8090"
	defaultLogLevel         = "info"
	defaultShutdownDelay    = 10 * time.Second
	defaultAccessTokenTTL   = 15 * time.Minute
	defaultRefreshTokenTTL  = 30 * 24 * time.Hour
	defaultIdempotencyTTL   = 24 * time.Hour
	defaultOAuthStateTTL    = 10 * time.Minute
	defaultPlatformURL      = "http://localhost:8090"
	defaultLocalOrigin      = "http://localhost:8080"
	defaultProductionOrigin = "https://quantbasket.com"
)

// Config captures platformd runtime configuration loaded from the environment.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	RefreshSecret  string
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	IdempotencyTTL time.Duration
	OAuthStateTTL  time.Duration
	ShutdownPeriod time.Duration
}

// Load reads platformd configuration. DATABASE_URL and REDIS_URL are optional
// in development (in-memory backends are substituted) and required elsewhere.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         strings.ToLower(getEnv("APP_ENV", defaultAppEnv)),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-access-secret"),
		RefreshSecret:  getEnv("REFRESH_SECRET", "dev-refresh-secret"),
		AccessTTL:      defaultAccessTokenTTL,
		RefreshTTL:     defaultRefreshTokenTTL,
		IdempotencyTTL: defaultIdempotencyTTL,
		OAuthStateTTL:  defaultOAuthStateTTL,
		ShutdownPeriod: defaultShutdownDelay,
	}

	var err error
	if cfg.AccessTTL, err = getDuration("ACCESS_TOKEN_TTL", cfg.AccessTTL); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTTL, err = getDuration("REFRESH_TOKEN_TTL", cfg.RefreshTTL); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = getDuration("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.OAuthStateTTL, err = getDuration("OAUTH_STATE_TTL", cfg.OAuthStateTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = getDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// IsDev reports whether the process runs in a development environment.
func (c Config) IsDev() bool {
	switch c.AppEnv {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// ClientConfig captures client-core configuration for qbctl and embedders.
type ClientConfig struct {
	PlatformURL string
	SessionFile string
	LogLevel    string
	Redirect    session.RedirectConfig
}

// LoadClient reads client configuration from the environment.
func LoadClient() (ClientConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	cfg := ClientConfig{
		PlatformURL: getEnv("QB_PLATFORM_URL", defaultPlatformURL),
		SessionFile: getEnv("QB_SESSION_FILE", filepath.Join(home, ".quantbasket", "session.json")),
		LogLevel:    strings.ToLower(getEnv("QB_LOG_LEVEL", defaultLogLevel)),
		Redirect: session.RedirectConfig{
			LocalOrigin:      getEnv("QB_LOCAL_ORIGIN", defaultLocalOrigin),
			ProductionOrigin: getEnv("QB_PRODUCTION_ORIGIN", defaultProductionOrigin),
			DeploymentEnv:    strings.ToLower(getEnv("QB_DEPLOYMENT_ENV", session.EnvLocal)),
			PreviewBaseURL:   os.Getenv("QB_PREVIEW_BASE_URL"),
		},
	}
	switch cfg.Redirect.DeploymentEnv {
	case session.EnvLocal, session.EnvPreview, session.EnvProduction:
	default:
		return ClientConfig{}, fmt.Errorf("invalid QB_DEPLOYMENT_ENV %q", cfg.Redirect.DeploymentEnv)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
