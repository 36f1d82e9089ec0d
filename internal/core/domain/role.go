package domain

import "strings"

// Role is the kind of account. Values are persisted and sent over the wire
// verbatim, so they must never change.
type Role string

const (
	RoleFarmer Role = "FARMER"
	RoleLabour Role = "LABOUR"
	RoleAdmin  Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleLabour, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts a path or query value into a Role. Matching ignores case
// so "farmer" and "FARMER" resolve to the same role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidInput
	}
	return r, nil
}

// AvailabilityStatus describes whether a profile holder can take work.
type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "AVAILABLE"
	StatusBusy        AvailabilityStatus = "BUSY"
	StatusUnavailable AvailabilityStatus = "UNAVAILABLE"
)

// Valid reports whether s is one of the known availability states.
func (s AvailabilityStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusBusy, StatusUnavailable:
		return true
	}
	return false
}
