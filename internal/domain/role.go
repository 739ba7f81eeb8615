package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Role is a member of the fixed role enumeration.
type Role string

const (
	// RoleUser is the base, non-administrative role.
	RoleUser Role = "USER"
	// RoleAdmin is the elevated role allowed to bypass ownership checks.
	RoleAdmin Role = "ADMIN"
)

// DefaultRole is assigned to newly registered users.
const DefaultRole = RoleUser

// ParseRole accepts "USER", "ADMIN" and their "ROLE_" prefixed forms, in any case.
func ParseRole(s string) (Role, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.TrimPrefix(norm, "ROLE_")
	switch Role(norm) {
	case RoleUser, RoleAdmin:
		return Role(norm), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r belongs to the enumeration.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Roles is a set of roles kept in sorted, duplicate-free order.
type Roles []Role

// NewRoles normalizes rs into sorted, duplicate-free form.
func NewRoles(rs ...Role) Roles {
	seen := make(map[Role]struct{}, len(rs))
	out := make(Roles, 0, len(rs))
	for _, r := range rs {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseRoles parses and normalizes a list of role names.
func ParseRoles(names []string) (Roles, error) {
	rs := make([]Role, 0, len(names))
	for _, n := range names {
		r, err := ParseRole(n)
		if err != nil {
			return nil, err
		}
		rs = append(rs, r)
	}
	return NewRoles(rs...), nil
}

// Has reports whether r is in the set.
func (rs Roles) Has(r Role) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

// HasAny reports whether any of want is in the set.
func (rs Roles) HasAny(want ...Role) bool {
	for _, r := range want {
		if rs.Has(r) {
			return true
		}
	}
	return false
}

// IsElevated reports whether the set contains the admin role.
func (rs Roles) IsElevated() bool {
	return rs.Has(RoleAdmin)
}

// BaseOnly reports whether the set grants nothing beyond the base role.
// An empty set counts as base-only.
func (rs Roles) BaseOnly() bool {
	for _, r := range rs {
		if r != RoleUser {
			return false
		}
	}
	return true
}

// Strings returns the role names.
func (rs Roles) Strings() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}
