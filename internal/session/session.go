package session

import "strings"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleStaff    Role = "STAFF"
	RoleCustomer Role = "CUSTOMER"
)

type Session struct {
	Username string
	Role     Role
}

// ParseRole accepts Spring style "ROLE_ADMIN" as well as bare names. An empty
// claim is an anonymous customer.
func ParseRole(raw string) Role {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	raw = strings.TrimPrefix(raw, "ROLE_")
	if raw == "" {
		return RoleCustomer
	}
	return Role(raw)
}

func (r Role) In(allowed ...Role) bool {
	for _, role := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
