// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package user manages account records: listing, self-service profile updates
and administrative deletion.

# Architecture

  - Service: Loads the target record, asks the policy package, then persists.
  - Repository: Postgres access to the users table.
  - Handler: Thin chi handlers under /api/users.

Identity (registration, login, password) lives in the auth package, which
reuses this package's [Repository].
*/
package user

import (
	"context"
	"time"

	"github.com/taibuivan/bookhub/internal/platform/sec"
)

// # Domain Entities

// User is a registered account.
type User struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.UserRole `json:"role"`
	Image        *string      `json:"image,omitempty"`
	Age          *int         `json:"age,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Principal returns the token identity of the account.
func (user *User) Principal() sec.Principal {
	return sec.Principal{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
}

// # Collaborators

// FileUsageMarker flags an uploaded file as referenced so cleanup keeps it.
//
// The file service implements it. Registration and profile updates call it
// with the image URL the client submitted.
type FileUsageMarker interface {
	MarkUsed(context context.Context, downloadURL string) error
}

// # Field Identifiers

const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldRole            = "role"
	FieldAge             = "age"
	FieldImage           = "image"
	FieldCurrentPassword = "currentPassword"
	FieldNewPassword     = "newPassword"
)

// # Limits

const (
	MaxNameLength  = 100
	MaxEmailLength = 254
	MinAge         = 0
	MaxAge         = 150
)
