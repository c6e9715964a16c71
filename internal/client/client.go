// Package client assembles the platform client: session state machine, route
// gating, dashboard data synchronization and action coordination behind one
// facade.
package client

import (
	"context"
	"log/slog"

	"github.com/quantbasket/quantbasket/internal/action"
	"github.com/quantbasket/quantbasket/internal/dashboard"
	"github.com/quantbasket/quantbasket/internal/platform"
	"github.com/quantbasket/quantbasket/internal/routing"
	"github.com/quantbasket/quantbasket/internal/session"
)

// Client wires the client-core stores together. Construct with New or
// NewHTTP, call Init once, and Close when done.
type Client struct {
	Sessions  *session.Store
	Dashboard *dashboard.Store
	Actions   *action.Coordinator
	Gate      *routing.Gate

	logger *slog.Logger
	unsub  func()
}

// New assembles a client over an injected platform implementation. cache may
// be nil to skip session persistence.
func New(api platform.API, cache *session.TokenCache, redirect session.RedirectConfig, logger *slog.Logger) *Client {
	sessions := session.New(api, cache, redirect, logger)
	return assemble(sessions, api, logger)
}

// NewHTTP assembles a client speaking to a platformd instance at baseURL.
// The HTTP client draws its bearer token from the session store, so data
// calls authenticate automatically once a session exists.
func NewHTTP(baseURL string, cache *session.TokenCache, redirect session.RedirectConfig, logger *slog.Logger) *Client {
	var sessions *session.Store
	api := platform.NewHTTPClient(baseURL, func() string {
		if sessions == nil {
			return ""
		}
		return sessions.AccessToken()
	})
	sessions = session.New(api, cache, redirect, logger)
	return assemble(sessions, api, logger)
}

func assemble(sessions *session.Store, api platform.DataAPI, logger *slog.Logger) *Client {
	dash := dashboard.New(api, logger)
	coord := action.New(dash, logger)

	// Scoped data must vanish in the same instant the identity does.
	sessions.OnSignOut(dash.Clear)
	sessions.OnSignOut(coord.ResetAll)

	c := &Client{
		Sessions:  sessions,
		Dashboard: dash,
		Actions:   coord,
		Gate:      routing.NewGate(sessions),
		logger:    logger,
	}

	// Lazy dashboard load once an identity is confirmed. Runs on the
	// subscriber goroutine; a partial failure is non-fatal and leaves any
	// cached data visible.
	c.unsub = sessions.Subscribe(func(status session.Status) {
		if status.State != session.StateAuthenticated || status.Identity == nil {
			return
		}
		if err := dash.Load(context.Background(), status.Identity.UserID); err != nil {
			logger.Warn("dashboard load after sign-in", "error", err)
		}
	})
	return c
}

// Init restores any persisted session. Must run once before gated views
// consult the client.
func (c *Client) Init(ctx context.Context) error {
	return c.Sessions.Init(ctx)
}

// Session returns the current session status.
func (c *Client) Session() session.Status {
	return c.Sessions.Current()
}

// ProtectedRoute evaluates the route guard for path against the current
// session state.
func (c *Client) ProtectedRoute(path string) routing.Result {
	return c.Gate.Evaluate(path)
}

// DispatchAction routes a user-triggered mutation through the coordinator
// for the signed-in user.
func (c *Client) DispatchAction(ctx context.Context, kind action.Kind, payload action.Payload) error {
	status := c.Sessions.Current()
	if status.Identity == nil {
		return dashboard.ErrNoActiveUser
	}
	return c.Actions.Dispatch(ctx, status.Identity.UserID, kind, payload)
}

// Close tears down subscriptions.
func (c *Client) Close() {
	if c.unsub != nil {
		c.unsub()
	}
	c.Sessions.Close()
}
