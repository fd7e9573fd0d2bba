package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Role is a named privilege carried in a token's claims
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// RoleSet is an ordered, duplicate-free set of roles.
// The zero value (nil) is the empty set.
type RoleSet []Role

// NewRoleSet builds a normalized set, dropping empty names and duplicates.
// It returns nil for an empty set so that equal sets compare equal.
func NewRoleSet(roles ...Role) RoleSet {
	if len(roles) == 0 {
		return nil
	}
	seen := make(map[Role]struct{}, len(roles))
	out := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseRoleSet builds a set from plain strings
func ParseRoleSet(names ...string) RoleSet {
	roles := make([]Role, 0, len(names))
	for _, n := range names {
		roles = append(roles, Role(n))
	}
	return NewRoleSet(roles...)
}

// Has reports membership
func (s RoleSet) Has(role Role) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// Intersects reports whether the two sets share at least one role
func (s RoleSet) Intersects(other RoleSet) bool {
	for _, r := range other {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Empty reports whether the set has no roles
func (s RoleSet) Empty() bool {
	return len(s) == 0
}

// Strings returns the role names, for logging
func (s RoleSet) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}

// MarshalJSON always emits an array, never null
func (s RoleSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Role(s))
}

// UnmarshalJSON accepts an array of names or a single name, the same
// shapes golang-jwt accepts for audience claims.
func (s *RoleSet) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*s = nil
	case string:
		*s = NewRoleSet(Role(v))
	case []any:
		roles := make([]Role, 0, len(v))
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return fmt.Errorf("role must be a string, got %T", item)
			}
			roles = append(roles, Role(name))
		}
		*s = NewRoleSet(roles...)
	default:
		return fmt.Errorf("roles must be a string or an array, got %T", raw)
	}
	return nil
}

// Identity is the user identity derived from a credential's claims
type Identity struct {
	Username string  `json:"username" validate:"required"`
	Roles    RoleSet `json:"roles"`
}

// IsAdmin returns true if the identity carries the admin role
func (i Identity) IsAdmin() bool {
	return i.Roles.Has(RoleAdmin)
}

// HasAnyRole returns true if the identity shares a role with required
func (i Identity) HasAnyRole(required RoleSet) bool {
	return i.Roles.Intersects(required)
}
