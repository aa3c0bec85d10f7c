package router

import (
	"net/url"
	"strings"

	"qms/queue-client/internal/session"
)

const (
	PathHome           = "/"
	PathQueueStatus    = "/queue-status/:id"
	PathLogin          = "/login"
	PathForgotPassword = "/forgot-password"
	PathChangePassword = "/change-password"
	PathAdmin          = "/admin"
	PathStaff          = "/staff"
)

// Route is one entry of the navigation table. A route with no roles is public.
type Route struct {
	Pattern string
	Title   string
	Roles   []session.Role
}

func (r Route) Public() bool {
	return len(r.Roles) == 0
}

func (r Route) Allows(role session.Role) bool {
	return r.Public() || role.In(r.Roles...)
}

var DefaultRoutes = []Route{
	{Pattern: PathHome, Title: "Join Queue"},
	{Pattern: PathQueueStatus, Title: "Queue Status"},
	{Pattern: PathLogin, Title: "Login"},
	{Pattern: PathForgotPassword, Title: "Forgot Password"},
	{Pattern: PathChangePassword, Title: "Change Password"},
	{Pattern: PathAdmin, Title: "Admin Dashboard", Roles: []session.Role{session.RoleAdmin}},
	{Pattern: PathStaff, Title: "Staff Dashboard", Roles: []session.Role{session.RoleStaff}},
}

func StatusPath(id string) string {
	return "/queue-status/" + url.PathEscape(id)
}

func LoginPath(from string) string {
	if from == "" || from == PathLogin {
		return PathLogin
	}
	return PathLogin + "?from=" + url.QueryEscape(from)
}

// SplitPath separates a navigation target into its path and query values.
func SplitPath(target string) (string, url.Values) {
	path, rawQuery, _ := strings.Cut(target, "?")
	if path == "" {
		path = PathHome
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	return path, query
}

// match compares a pattern such as /queue-status/:id against a path and
// collects the named segments.
func match(pattern, path string) (map[string]string, bool) {
	if pattern == path {
		return map[string]string{}, true
	}
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")
	if len(patternParts) != len(pathParts) {
		return nil, false
	}
	params := map[string]string{}
	for i, part := range patternParts {
		if name, ok := strings.CutPrefix(part, ":"); ok {
			value, err := url.PathUnescape(pathParts[i])
			if err != nil || value == "" {
				return nil, false
			}
			params[name] = value
			continue
		}
		if part != pathParts[i] {
			return nil, false
		}
	}
	return params, true
}
