// Package auth defines the identity model shared by every service:
// the closed role set, the caller context derived from propagated
// identity headers, and the header names that carry it.
package auth

import "fmt"

// Role is the closed set of end-user roles. There is exactly one
// canonical serialization per role; no "ROLE_" prefixing anywhere.
type Role string

const (
	RoleClient Role = "CLIENT"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// ParseRole converts a wire string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleClient, RoleSeller, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string {
	return string(r)
}
