package models

import "strings"

// Role is a user's fixed account type. Mode values share the same set.
type Role string

const (
	Traveler Role = "TRAVELER"
	Merchant Role = "MERCHANT"
	Admin    Role = "ADMIN"
)

// Valid reports whether r is one of the known account types.
func (r Role) Valid() bool {
	switch r {
	case Traveler, Merchant, Admin:
		return true
	}
	return false
}

// ParseRole normalises user input such as "merchant" into a Role.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(value)))
	return role, role.Valid()
}
