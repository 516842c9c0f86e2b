// Package router holds the client route table, the role guard that runs on
// every entry to a route, and the Navigator that records where the client is.
package router

import (
	"sort"
	"strings"

	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/session"
)

// Requirement lists the roles accepted by a guarded route. An empty Roles
// set accepts any signed-in user.
type Requirement struct {
	Roles []session.Role
}

// Accepts reports whether role is in the requirement's role set. Membership
// is an exact match; the bypass role is handled by the guard, not here.
func (r *Requirement) Accepts(role session.Role) bool {
	if len(r.Roles) == 0 {
		return true
	}
	for _, accepted := range r.Roles {
		if accepted == role {
			return true
		}
	}
	return false
}

// AnyRole is the requirement for routes open to every signed-in user.
func AnyRole() *Requirement {
	return &Requirement{}
}

// RequireRoles builds a requirement accepting exactly the given roles.
func RequireRoles(roles ...session.Role) *Requirement {
	return &Requirement{Roles: roles}
}

// Route is one entry in the route table.
type Route struct {
	// Pattern is the path pattern. Segments starting with ':' match one
	// segment; a trailing "/*" matches any remainder.
	Pattern string

	// Title is a short human-readable name.
	Title string

	// Requirement is nil for public routes.
	Requirement *Requirement
}

// Public reports whether the route is reachable without a session.
func (r Route) Public() bool {
	return r.Requirement == nil
}

// Access renders the requirement the way the route listing prints it:
// "-" for public, "*" for any signed-in user, otherwise the role set.
func (r Route) Access() string {
	switch {
	case r.Requirement == nil:
		return "-"
	case len(r.Requirement.Roles) == 0:
		return "*"
	default:
		roles := make([]string, len(r.Requirement.Roles))
		for i, role := range r.Requirement.Roles {
			roles[i] = string(role)
		}
		return strings.Join(roles, ",")
	}
}

// Params holds the values bound to ':name' segments.
type Params map[string]string

// Table maps paths to routes.
type Table struct {
	routes []Route
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// Register adds a route. Registering the same pattern twice is an error.
func (t *Table) Register(route Route) error {
	if !strings.HasPrefix(route.Pattern, "/") {
		return errors.New(errors.ErrCodeValidationInvalid, "route pattern must start with '/': "+route.Pattern)
	}
	for _, existing := range t.routes {
		if existing.Pattern == route.Pattern {
			return errors.New(errors.ErrCodeValidationInvalid, "route already registered: "+route.Pattern)
		}
	}
	t.routes = append(t.routes, route)
	return nil
}

// MustRegister is Register for static tables.
func (t *Table) MustRegister(routes ...Route) *Table {
	for _, r := range routes {
		if err := t.Register(r); err != nil {
			panic(err)
		}
	}
	return t
}

// Routes returns all routes sorted by pattern.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	sort.Slice(out, func(i, j int) bool { return out[i].Pattern < out[j].Pattern })
	return out
}

// Match finds the most specific route for path. Literal segments beat
// parameters, and parameters beat a trailing wildcard.
func (t *Table) Match(path string) (Route, Params, bool) {
	segments := splitPath(path)

	var (
		best       Route
		bestParams Params
		bestScore  = -1
	)
	for _, route := range t.routes {
		params, score, ok := matchPattern(splitPath(route.Pattern), segments)
		if !ok {
			continue
		}
		if score > bestScore || (score == bestScore && wildcard(best.Pattern) && !wildcard(route.Pattern)) {
			best, bestParams, bestScore = route, params, score
		}
	}
	return best, bestParams, bestScore >= 0
}

func wildcard(pattern string) bool {
	return pattern == "/*" || strings.HasSuffix(pattern, "/*")
}

// matchPattern scores a match: 3 per literal segment, 2 per parameter, 1 for
// a non-empty wildcard tail. "/admin/*" also matches "/admin" with an empty
// "*" parameter.
func matchPattern(pattern, segments []string) (Params, int, bool) {
	params := Params{}
	score := 0

	for i, p := range pattern {
		if p == "*" && i == len(pattern)-1 {
			if len(segments) < i {
				return nil, 0, false
			}
			params["*"] = strings.Join(segments[i:], "/")
			if params["*"] != "" {
				score++
			}
			return params, score, true
		}
		if i >= len(segments) {
			return nil, 0, false
		}
		switch {
		case strings.HasPrefix(p, ":"):
			params[p[1:]] = segments[i]
			score += 2
		case p == segments[i]:
			score += 3
		default:
			return nil, 0, false
		}
	}

	if len(pattern) != len(segments) {
		return nil, 0, false
	}
	return params, score, true
}

func splitPath(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
