package router

import (
	"testing"

	"qms/queue-client/internal/session"
)

func TestResolve(t *testing.T) {
	admin := &session.Session{Username: "alice", Role: session.RoleAdmin}
	staff := &session.Session{Username: "sam", Role: session.RoleStaff}
	customer := &session.Session{Username: "carl", Role: session.RoleCustomer}

	tests := []struct {
		name     string
		target   string
		current  *session.Session
		restored bool
		outcome  Outcome
		location string
	}{
		{"public home before restore", "/", nil, false, Render, ""},
		{"public status", "/queue-status/17", nil, true, Render, ""},
		{"guarded before restore", "/admin", admin, false, Pending, ""},
		{"admin renders for admin", "/admin", admin, true, Render, ""},
		{"staff redirects admin", "/staff", admin, true, Redirect, "/login?from=%2Fstaff"},
		{"staff renders for staff", "/staff", staff, true, Render, ""},
		{"admin redirects staff", "/admin", staff, true, Redirect, "/login?from=%2Fadmin"},
		{"logged out redirects", "/admin", nil, true, Redirect, "/login?from=%2Fadmin"},
		{"customer redirects", "/staff", customer, true, Redirect, "/login?from=%2Fstaff"},
		{"unknown path", "/nowhere", admin, true, NotFound, ""},
		{"status without id", "/queue-status/", nil, true, NotFound, ""},
	}
	gate := NewGate(nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := gate.Resolve(tc.target, tc.current, tc.restored)
			if got.Outcome != tc.outcome {
				t.Fatalf("Resolve(%q) outcome=%s, want %s", tc.target, got.Outcome, tc.outcome)
			}
			if got.Location != tc.location {
				t.Fatalf("Resolve(%q) location=%q, want %q", tc.target, got.Location, tc.location)
			}
		})
	}
}

func TestResolveParamsAndQuery(t *testing.T) {
	got := NewGate(nil).Resolve("/queue-status/42", nil, false)
	if got.Params["id"] != "42" || got.Route.Pattern != PathQueueStatus {
		t.Fatalf("unexpected decision %+v", got)
	}
	got = NewGate(nil).Resolve("/login?from=%2Fadmin", nil, true)
	if got.Outcome != Render || got.Query["from"][0] != "/admin" {
		t.Fatalf("unexpected login decision %+v", got)
	}
}

func TestLoginTarget(t *testing.T) {
	cases := []struct {
		role session.Role
		from string
		want string
	}{
		{session.RoleAdmin, "/queue-status/3", "/admin"},
		{session.RoleStaff, "", "/staff"},
		{session.RoleCustomer, "/queue-status/3", "/queue-status/3"},
		{session.RoleCustomer, "", "/"},
		{session.RoleCustomer, "https://evil.example", "/"},
		{session.RoleCustomer, "//evil.example", "/"},
		{session.RoleCustomer, "/login?from=%2F", "/"},
	}
	for _, tt := range cases {
		if got := LoginTarget(tt.role, tt.from); got != tt.want {
			t.Fatalf("LoginTarget(%q, %q)=%q, want %q", tt.role, tt.from, got, tt.want)
		}
	}
}

func TestParseTicketRef(t *testing.T) {
	cases := []struct {
		data string
		want string
		ok   bool
	}{
		{"https://queue.example.com/queue-status/15", "/queue-status/15", true},
		{"http://localhost:3000/status/9", "/queue-status/9", true},
		{"/status/21", "/queue-status/21", true},
		{"kiosk/queue-status/4/", "/queue-status/4", true},
		{"77", "/queue-status/77", true},
		{"  88\n", "/queue-status/88", true},
		{"", "", false},
		{"/status/", "", false},
		{"https://queue.example.com/", "", false},
		{"two words", "", false},
	}
	for _, tt := range cases {
		got, ok := ParseTicketRef(tt.data)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseTicketRef(%q)=(%q, %v), want (%q, %v)", tt.data, got, ok, tt.want, tt.ok)
		}
	}
}
