package router

import (
	"strings"

	"qms/queue-client/internal/session"
)

type Outcome int

const (
	Pending Outcome = iota
	Render
	Redirect
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "not_found"
	}
}

type Decision struct {
	Outcome  Outcome
	Route    Route
	Params   map[string]string
	Query    map[string][]string
	Location string
}

type Gate struct {
	routes []Route
}

func NewGate(routes []Route) *Gate {
	if len(routes) == 0 {
		routes = DefaultRoutes
	}
	return &Gate{routes: routes}
}

// Resolve decides what to do with a navigation target. Public routes always
// render. Guarded routes wait until the session has been restored, then
// render for an allowed role or redirect to login carrying the target.
func (g *Gate) Resolve(target string, current *session.Session, restored bool) Decision {
	path, query := SplitPath(target)
	for _, route := range g.routes {
		params, ok := match(route.Pattern, path)
		if !ok {
			continue
		}
		decision := Decision{Route: route, Params: params, Query: query}
		switch {
		case route.Public():
			decision.Outcome = Render
		case !restored:
			decision.Outcome = Pending
		case current != nil && route.Allows(current.Role):
			decision.Outcome = Render
		default:
			decision.Outcome = Redirect
			decision.Location = LoginPath(target)
		}
		return decision
	}
	return Decision{Outcome: NotFound, Query: query}
}

// LoginTarget is where a successful login lands: the role's dashboard, or
// the page that sent the user to login.
func LoginTarget(role session.Role, from string) string {
	switch role {
	case session.RoleAdmin:
		return PathAdmin
	case session.RoleStaff:
		return PathStaff
	}
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		return PathHome
	}
	if path, _ := SplitPath(from); path == PathLogin {
		return PathHome
	}
	return from
}
