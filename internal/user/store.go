// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user

import "context"

// # User Data Access

// Repository defines the data access contract for user accounts.
//
// Lookups return an apperr NOT_FOUND error when no row matches.
type Repository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *User: Hydrated entity
		  - error: NOT_FOUND or database failures
	*/
	FindByID(context context.Context, id int64) (*User, error)

	/*
		FindByEmail returns the account with the given (lower-cased) email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: NOT_FOUND or database failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		List returns a page of accounts ordered by ID, excluding one account.

		Parameters:
		  - context: context.Context
		  - excludeID: int64 (the caller)
		  - limit, offset: int

		Returns:
		  - []*User: The page
		  - int: Total matching rows
		  - error: Database failures
	*/
	List(context context.Context, excludeID int64, limit, offset int) ([]*User, int, error)

	// Create persists a new account and fills its ID and timestamps.
	Create(context context.Context, user *User) error

	// Update persists name, email, role, age and image.
	Update(context context.Context, user *User) error

	// UpdatePassword replaces only the password hash.
	UpdatePassword(context context.Context, id int64, passwordHash string) error

	// Delete removes the account. Books and files cascade.
	Delete(context context.Context, id int64) error
}
