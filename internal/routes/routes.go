package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/quantbasket/quantbasket/internal/auth"
	"github.com/quantbasket/quantbasket/internal/benefits"
	"github.com/quantbasket/quantbasket/internal/coins"
	"github.com/quantbasket/quantbasket/internal/config"
	"github.com/quantbasket/quantbasket/internal/identity"
	"github.com/quantbasket/quantbasket/internal/middleware"
	"github.com/quantbasket/quantbasket/internal/notification"
	"github.com/quantbasket/quantbasket/internal/profiles"
	"github.com/quantbasket/quantbasket/internal/tokens"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories, falling back to in-memory stores in dev.
	var identityRepo identity.Repository
	var profileRepo profiles.Repository
	var coinRepo coins.Repository
	var engine tokens.Engine
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		profileRepo = profiles.NewPostgresRepository(d.DB)
		coinRepo = coins.NewPostgresRepository(d.DB)
		engine = tokens.NewPostgresEngine(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
		profileRepo = profiles.NewMemoryRepository()
		coinRepo = coins.NewMemoryRepository()
		engine = tokens.NewInMemory()
	}

	var states auth.StateStore
	if d.Cache != nil {
		states = auth.NewRedisStateStore(d.Cache, d.Cfg.OAuthStateTTL)
	} else {
		states = auth.NewMemoryStateStore()
	}

	// Services and handlers
	notifier := notification.NewLoggerNotifier(d.Logger)
	identitySvc := identity.NewService(identityRepo)
	authSvc := auth.NewService(d.Cfg, identityRepo)
	profileSvc := profiles.NewService(profileRepo)
	coinSvc := coins.NewService(coinRepo)
	tokenSvc := tokens.NewService(engine, coinSvc, notifier)
	benefitSvc := benefits.NewService(engine, nil, notifier)

	authHandler := auth.NewHandler(identitySvc, authSvc, profileSvc, states)
	profileHandler := profiles.NewHandler(profileSvc)
	tokenHandler := tokens.NewHandler(tokenSvc)
	benefitHandler := benefits.NewHandler(benefitSvc)
	coinHandler := coins.NewHandler(coinSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)
	RegisterCoinRoutes(api, coinHandler)

	// Protected routes
	jwtmw := middleware.JWTAuth(authSvc)
	protected := api.Group("", jwtmw, middleware.Audit(d.Logger))
	RegisterMeRoutes(protected, profileHandler, tokenHandler, benefitHandler, coinHandler)

	return nil
}
