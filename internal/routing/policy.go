package routing

import (
	"strings"

	"github.com/quantbasket/quantbasket/internal/session"
)

// Well-known application paths.
const (
	PathRoot      = "/"
	PathLogin     = "/login"
	PathSignup    = "/signup"
	PathDashboard = "/dashboard"
)

// Decision is a navigation action. The zero value means stay put.
type Decision struct {
	Redirect bool
	// Target is the path to navigate to when Redirect is set.
	Target string
	// Origin carries the originally requested path when redirecting to
	// sign-in, so a successful login can return the user there.
	Origin string
}

// None is the stay-put decision.
var None = Decision{}

// isProtected reports whether a path requires authentication.
func isProtected(path string) bool {
	return path == PathDashboard || strings.HasPrefix(path, PathDashboard+"/")
}

// isEntry reports whether a path exists only to funnel users into the app.
// The landing page counts: authenticated users arriving on it are sent
// straight to the dashboard.
func isEntry(path string) bool {
	switch path {
	case PathRoot, PathLogin, PathSignup:
		return true
	}
	return false
}

// Decide maps (path, session state) to a navigation action. It is pure: no
// rule fires until the state has resolved, so an Unknown or Authenticating
// session never triggers a redirect (that is what causes flicker and loops).
//
// Anonymous users on protected paths go to sign-in with the origin preserved.
// Authenticated users on entry paths go to the dashboard. Authenticated users
// on other public paths stay where they are.
func Decide(path string, state session.State) Decision {
	if !state.Resolved() {
		return None
	}
	switch state {
	case session.StateAnonymous:
		if isProtected(path) {
			return Decision{Redirect: true, Target: PathLogin, Origin: path}
		}
	case session.StateAuthenticated:
		if isEntry(path) {
			return Decision{Redirect: true, Target: PathDashboard}
		}
	}
	return None
}
