package routing

import "github.com/quantbasket/quantbasket/internal/session"

// Outcome is what a guarded view should do for the current session state.
type Outcome int

const (
	// OutcomeLoading renders a neutral placeholder; the session has not
	// resolved yet and no redirect may fire.
	OutcomeLoading Outcome = iota
	// OutcomeRender shows the requested view.
	OutcomeRender
	// OutcomeRedirect applies the attached Decision.
	OutcomeRedirect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeRender:
		return "render"
	case OutcomeRedirect:
		return "redirect"
	}
	return "unknown"
}

// Result is the gate's verdict for one navigation.
type Result struct {
	Outcome  Outcome
	Decision Decision
}

// Gate guards routes on session state. It only decides; applying the
// decision (the actual navigation) is the caller's effect.
type Gate struct {
	sessions *session.Store
}

// NewGate builds a gate over a session store.
func NewGate(sessions *session.Store) *Gate {
	return &Gate{sessions: sessions}
}

// Evaluate produces the verdict for the current state and the given path.
func (g *Gate) Evaluate(path string) Result {
	return evaluate(path, g.sessions.Current().State)
}

// Watch evaluates on every session transition, delivering verdicts to apply
// in order. The current state is evaluated immediately. The returned func
// cancels the watch.
func (g *Gate) Watch(path string, apply func(Result)) func() {
	return g.sessions.Subscribe(func(status session.Status) {
		apply(evaluate(path, status.State))
	})
}

func evaluate(path string, state session.State) Result {
	if !state.Resolved() {
		return Result{Outcome: OutcomeLoading}
	}
	if decision := Decide(path, state); decision.Redirect {
		return Result{Outcome: OutcomeRedirect, Decision: decision}
	}
	return Result{Outcome: OutcomeRender}
}
