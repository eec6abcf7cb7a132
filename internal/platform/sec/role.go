// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "fmt"

// # User Roles

// UserRole represents the authorization level granted to an account.
//
// The wire and storage value is the upper-case role name.
type UserRole string

const (
	// Manages user accounts and may remove any book
	RoleAdmin UserRole = "ADMIN"

	// Publishes and maintains their own books
	RoleAuthor UserRole = "AUTHOR"

	// Default role, read-only access to the catalogue
	RoleReader UserRole = "READER"
)

// Roles lists every assignable role, in declaration order.
var Roles = []UserRole{RoleAdmin, RoleAuthor, RoleReader}

// Valid reports whether r is one of the declared roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleAuthor, RoleReader:
		return true
	default:
		return false
	}
}

// String implements [fmt.Stringer].
func (r UserRole) String() string {
	return string(r)
}

// ParseRole converts a raw string into a [UserRole].
func ParseRole(raw string) (UserRole, error) {
	role := UserRole(raw)
	if !role.Valid() {
		return "", fmt.Errorf("sec: unknown role %q", raw)
	}
	return role, nil
}

// RoleNames returns the string form of [Roles], used by validators.
func RoleNames() []string {
	names := make([]string, 0, len(Roles))
	for _, role := range Roles {
		names = append(names, string(role))
	}
	return names
}
