package router

import (
	"context"

	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/log"
	"github.com/padup/padup/internal/metrics"
	"github.com/padup/padup/internal/session"
)

// Decision is the outcome of a guard check.
type Decision int

const (
	Allow Decision = iota
	Redirect
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "redirect"
}

// Reason explains a Decision.
type Reason string

const (
	ReasonPublic       Reason = "public"
	ReasonBypass       Reason = "bypass"
	ReasonAuthorized   Reason = "authorized"
	ReasonNoSession    Reason = "no_session"
	ReasonRoleMismatch Reason = "role_mismatch"
)

// Authorize evaluates a requirement against the current session. sess is nil
// when there is no session. It has no side effects.
func Authorize(sess *session.Session, req *Requirement) (Decision, Reason) {
	if req == nil {
		return Allow, ReasonPublic
	}
	if sess == nil {
		return Redirect, ReasonNoSession
	}
	if sess.User.Role == session.BypassRole {
		return Allow, ReasonBypass
	}
	if !req.Accepts(sess.User.Role) {
		return Redirect, ReasonRoleMismatch
	}
	return Allow, ReasonAuthorized
}

// Guard checks the session on every entry to a route and redirects to the
// login page when it does not satisfy the route's requirement. It keeps no
// state between entries.
type Guard struct {
	table    *Table
	sessions session.Store
	nav      Navigator
	metrics  *metrics.Metrics
	logger   *log.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithGuardMetrics records decisions in m.
func WithGuardMetrics(m *metrics.Metrics) GuardOption {
	return func(g *Guard) { g.metrics = m }
}

// WithGuardLogger sets the logger.
func WithGuardLogger(l *log.Logger) GuardOption {
	return func(g *Guard) { g.logger = l }
}

// NewGuard creates a guard over table.
func NewGuard(table *Table, sessions session.Store, nav Navigator, opts ...GuardOption) *Guard {
	g := &Guard{
		table:    table,
		sessions: sessions,
		nav:      nav,
		logger:   log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "guard")
	return g
}

// Result is the outcome of Enter.
type Result struct {
	Route    Route
	Params   Params
	Decision Decision
	Reason   Reason
	Session  *session.Session
}

// Enter checks path against the session. On Allow the navigator moves to
// path. On Redirect it replaces the current entry with the login page and
// returns an error describing the denial.
func (g *Guard) Enter(ctx context.Context, path string) (*Result, error) {
	route, params, ok := g.table.Match(path)
	if !ok {
		return nil, errors.New(errors.ErrCodeValidationInvalid, "no route matches "+path).
			WithSuggestion("Run 'padup routes' to list known paths")
	}

	sess, present := g.sessions.Get(ctx)
	if !present {
		sess = nil
	}

	decision, reason := Authorize(sess, route.Requirement)
	g.record(route, decision)

	res := &Result{Route: route, Params: params, Decision: decision, Reason: reason, Session: sess}
	logger := g.logger.WithContext(ctx)

	if decision == Allow {
		logger.Debug("route allowed", "path", path, "reason", string(reason))
		if g.nav.Current() != path {
			g.nav.Navigate(path, NavigateOptions{})
		}
		return res, nil
	}

	logger.Info("route denied", "path", path, "reason", string(reason))
	g.nav.Navigate(PathLogin, NavigateOptions{Replace: true, Reason: string(reason)})

	if reason == ReasonNoSession {
		return res, errors.NewAuthRequiredError(path)
	}
	return res, errors.NewAuthForbiddenError(path, string(sess.User.Role))
}

func (g *Guard) record(route Route, d Decision) {
	if g.metrics == nil {
		return
	}
	g.metrics.GuardDecisions.WithLabelValues(route.Pattern, d.String()).Inc()
}
