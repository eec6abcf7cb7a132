// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/bookhub/internal/platform/dberr"
	"github.com/taibuivan/bookhub/internal/platform/postgres"
)

// userColumns is the projection shared by every SELECT.
const userColumns = `id, name, email, password_hash, role, image, age, created_at, updated_at`

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db postgres.Querier
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// scanUser maps one row of [userColumns] onto a User.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Image,
		&user.Age,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID retrieves a user record by its ID.
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}

// FindByEmail retrieves a user record by its unique email address.
func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(repository.db.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}

// List returns one page of users, never including excludeID.
func (repository *PostgresRepository) List(context context.Context, excludeID int64, limit, offset int) ([]*User, int, error) {
	const countQuery = `SELECT count(*) FROM users WHERE id <> $1`
	const listQuery = `SELECT ` + userColumns + ` FROM users WHERE id <> $1 ORDER BY id ASC LIMIT $2 OFFSET $3`

	var total int
	if err := repository.db.QueryRow(context, countQuery, excludeID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count_users_failed: %w", err)
	}

	rows, err := repository.db.Query(context, listQuery, excludeID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list_users_failed: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan_user_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list_users_failed: %w", err)
	}

	return users, total, nil
}

// Create inserts a new account and reads back the generated columns.
func (repository *PostgresRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users (name, email, password_hash, role, image, age)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := repository.db.QueryRow(context, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Image,
		user.Age,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	return dberr.Wrap(err, "User")
}

// Update persists the mutable profile fields.
func (repository *PostgresRepository) Update(context context.Context, user *User) error {
	const query = `
		UPDATE users
		SET name = $2, email = $3, role = $4, image = $5, age = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := repository.db.QueryRow(context, query,
		user.ID,
		user.Name,
		user.Email,
		user.Role,
		user.Image,
		user.Age,
	).Scan(&user.UpdatedAt)

	return dberr.Wrap(err, "User")
}

// UpdatePassword replaces the stored hash.
func (repository *PostgresRepository) UpdatePassword(context context.Context, id int64, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`

	command, err := repository.db.Exec(context, query, id, passwordHash)
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	if command.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "User")
	}
	return nil
}

// Delete removes the account row. Foreign keys cascade to books and files.
func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = $1`

	command, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	if command.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "User")
	}
	return nil
}
