// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "context"

// Repository defines persistence operations for books.
//
// Lookups return an AppError with code NOT_FOUND for unknown IDs, and writes
// return CONFLICT when the ISBN is already catalogued.
type Repository interface {
	// List returns one page of books, newest first, with the author summary filled in.
	List(context context.Context, limit, offset int) ([]*Book, int, error)

	// FindByID returns one book with its author summary.
	FindByID(context context.Context, id int64) (*Book, error)

	// Create inserts the book and sets its generated ID and timestamps.
	Create(context context.Context, book *Book) error

	// Update persists name, description, pdfUrl and isbn.
	Update(context context.Context, book *Book) error

	// Delete removes the book.
	Delete(context context.Context, id int64) error
}
