// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/bookhub/internal/platform/dberr"
	"github.com/taibuivan/bookhub/internal/platform/postgres"
)

// bookSelect joins the owning account so responses carry the author summary.
const bookSelect = `
	SELECT b.id, b.name, b.description, b.pdf_url, b.isbn, b.author_id, b.created_at, b.updated_at,
	       u.name, u.email
	FROM books b
	JOIN users u ON u.id = b.author_id`

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db postgres.Querier
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanBook(row pgx.Row) (*Book, error) {
	book := &Book{Author: &Author{}}
	err := row.Scan(
		&book.ID,
		&book.Name,
		&book.Description,
		&book.PDFURL,
		&book.ISBN,
		&book.AuthorID,
		&book.CreatedAt,
		&book.UpdatedAt,
		&book.Author.Name,
		&book.Author.Email,
	)
	if err != nil {
		return nil, err
	}
	book.Author.ID = book.AuthorID
	return book, nil
}

// List returns one page of the catalogue.
func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Book, int, error) {
	const countQuery = `SELECT count(*) FROM books`
	const listQuery = bookSelect + ` ORDER BY b.id DESC LIMIT $1 OFFSET $2`

	var total int
	if err := repository.db.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count_books_failed: %w", err)
	}

	rows, err := repository.db.Query(context, listQuery, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list_books_failed: %w", err)
	}
	defer rows.Close()

	books := make([]*Book, 0, limit)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan_book_failed: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list_books_failed: %w", err)
	}

	return books, total, nil
}

// FindByID retrieves a book by its ID.
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*Book, error) {
	book, err := scanBook(repository.db.QueryRow(context, bookSelect+` WHERE b.id = $1`, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Book")
	}
	return book, nil
}

// Create inserts a new book row.
func (repository *PostgresRepository) Create(context context.Context, book *Book) error {
	const query = `
		INSERT INTO books (name, description, pdf_url, isbn, author_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := repository.db.QueryRow(context, query,
		book.Name,
		book.Description,
		book.PDFURL,
		book.ISBN,
		book.AuthorID,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)

	return dberr.Wrap(err, "Book")
}

// Update persists the editable columns. The owner never changes.
func (repository *PostgresRepository) Update(context context.Context, book *Book) error {
	const query = `
		UPDATE books
		SET name = $2, description = $3, pdf_url = $4, isbn = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := repository.db.QueryRow(context, query,
		book.ID,
		book.Name,
		book.Description,
		book.PDFURL,
		book.ISBN,
	).Scan(&book.UpdatedAt)

	return dberr.Wrap(err, "Book")
}

// Delete removes a book row.
func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	command, err := repository.db.Exec(context, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "Book")
	}
	if command.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "Book")
	}
	return nil
}
