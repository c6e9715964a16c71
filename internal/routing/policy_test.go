package routing

import (
	"testing"

	"github.com/quantbasket/quantbasket/internal/session"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		name  string
		path  string
		state session.State
		want  Decision
	}{
		{"unknown state never redirects", PathDashboard, session.StateUnknown, None},
		{"authenticating state never redirects", PathDashboard, session.StateAuthenticating, None},
		{"anonymous on dashboard goes to login", PathDashboard, session.StateAnonymous, Decision{Redirect: true, Target: PathLogin, Origin: PathDashboard}},
		{"anonymous on dashboard subpath goes to login", "/dashboard/portfolio", session.StateAnonymous, Decision{Redirect: true, Target: PathLogin, Origin: "/dashboard/portfolio"}},
		{"anonymous on dashboard-prefixed sibling stays", "/dashboards", session.StateAnonymous, None},
		{"anonymous on login stays", PathLogin, session.StateAnonymous, None},
		{"anonymous on landing stays", PathRoot, session.StateAnonymous, None},
		{"authenticated on landing goes to dashboard", PathRoot, session.StateAuthenticated, Decision{Redirect: true, Target: PathDashboard}},
		{"authenticated on login goes to dashboard", PathLogin, session.StateAuthenticated, Decision{Redirect: true, Target: PathDashboard}},
		{"authenticated on signup goes to dashboard", PathSignup, session.StateAuthenticated, Decision{Redirect: true, Target: PathDashboard}},
		{"authenticated on dashboard stays", PathDashboard, session.StateAuthenticated, None},
		{"authenticated on other public path stays", "/about", session.StateAuthenticated, None},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Decide(tc.path, tc.state); got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}
