// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book manages the book catalogue.

# Architecture

  - Service: Validates input, loads the target book, asks the policy package, then persists.
  - Repository: Postgres access to the books table joined with the author's account.
  - Handler: Thin chi handlers under /api/books.

Any authenticated caller can read. Only authors create, only the owning author
edits, and admins may additionally delete.
*/
package book

import (
	"context"
	"time"
)

// # Domain Entities

// Book is one catalogue entry owned by the author who created it.
type Book struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	PDFURL      *string   `json:"pdfUrl,omitempty"`
	ISBN        string    `json:"isbn"`
	AuthorID    int64     `json:"-"`
	Author      *Author   `json:"author,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Author is the public summary of the owning account.
type Author struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// # Collaborators

// FileUsageMarker flags an uploaded PDF as referenced so cleanup keeps it.
type FileUsageMarker interface {
	MarkUsed(context context.Context, downloadURL string) error
}

// # Field Identifiers

const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldPDFURL      = "pdfUrl"
	FieldISBN        = "isbn"
)

// # Limits

const (
	MaxNameLength        = 255
	MaxDescriptionLength = 5000
)
