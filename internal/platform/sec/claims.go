// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// # Principal

// Principal is the verified identity of the caller for the duration of one request.
//
// It is built once by [TokenCodec.Verify] and never mutated afterwards.
// Handlers receive it by value through the request context.
type Principal struct {
	ID    int64    `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  UserRole `json:"role"`
}

// Is reports whether the principal is the user identified by id.
func (p Principal) Is(id int64) bool {
	return p.ID == id
}

// HasRole reports whether the principal holds the given role.
func (p Principal) HasRole(role UserRole) bool {
	return p.Role == role
}

// # Wire Claims

// AuthClaims is the JWT payload.
//
// The custom fields carry the full principal so the gate can rebuild the
// caller identity without a database round-trip.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// errMalformedClaims is wrapped into a TokenInvalid failure when the payload
// verifies but does not describe a usable principal.
var errMalformedClaims = errors.New("sec: token payload is missing required claims")

// principal converts the decoded claims into a [Principal].
func (c *AuthClaims) principal() (Principal, error) {
	role, err := ParseRole(c.Role)
	if err != nil {
		return Principal{}, err
	}

	if c.UserID <= 0 || c.Email == "" {
		return Principal{}, errMalformedClaims
	}

	return Principal{
		ID:    c.UserID,
		Email: c.Email,
		Name:  c.Name,
		Role:  role,
	}, nil
}
