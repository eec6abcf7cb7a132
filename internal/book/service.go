// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/bookhub/internal/platform/apperr"
	"github.com/taibuivan/bookhub/internal/platform/policy"
	"github.com/taibuivan/bookhub/internal/platform/sec"
	"github.com/taibuivan/bookhub/internal/platform/validate"
	"github.com/taibuivan/bookhub/pkg/pagination"
	"github.com/taibuivan/bookhub/pkg/pointer"
)

// errDuplicateISBN replaces the generic storage conflict with a message naming the field.
var errDuplicateISBN = apperr.Conflict("A book with this ISBN already exists")

// Service implements the catalogue use cases.
type Service struct {
	repo   Repository
	files  FileUsageMarker
	logger *slog.Logger
}

// NewService constructs a new [Service]. files may be nil.
func NewService(repo Repository, files FileUsageMarker, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		files:  files,
		logger: logger,
	}
}

// # Inputs

// CreateInput is the payload for POST and PUT.
type CreateInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	PDFURL      *string `json:"pdfUrl"`
	ISBN        string  `json:"isbn"`
}

// PatchInput carries only the fields to change.
type PatchInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PDFURL      *string `json:"pdfUrl"`
	ISBN        *string `json:"isbn"`
}

// # Queries

// List returns one page of the catalogue.
func (service *Service) List(context context.Context, principal *sec.Principal, params pagination.Params) ([]*Book, int, error) {
	if err := policy.CanReadBook(principal); err != nil {
		return nil, 0, err
	}
	return service.repo.List(context, params.Limit, params.Offset())
}

// Get returns a single book.
func (service *Service) Get(context context.Context, principal *sec.Principal, id int64) (*Book, error) {
	if err := policy.CanReadBook(principal); err != nil {
		return nil, err
	}
	return service.repo.FindByID(context, id)
}

// # Commands

/*
Create adds a book owned by the calling author.

Parameters:
  - context: context.Context
  - principal: The caller, who becomes the owner
  - input: CreateInput

Returns:
  - *Book: The stored book with its author summary
  - error: ACCESS_DENIED, VALIDATION_ERROR, CONFLICT (duplicate ISBN) or storage failures
*/
func (service *Service) Create(context context.Context, principal *sec.Principal, input CreateInput) (*Book, error) {
	if err := policy.CanCreateBook(principal); err != nil {
		return nil, err
	}

	book := &Book{
		AuthorID: principal.ID,
		Author:   &Author{ID: principal.ID, Name: principal.Name, Email: principal.Email},
	}
	replace(book, input)

	if err := validateBook(book); err != nil {
		return nil, err
	}

	if err := service.repo.Create(context, book); err != nil {
		return nil, mapConflict(err)
	}

	service.markPDFUsed(context, nil, book.PDFURL)
	service.logger.Info("book_created",
		slog.Int64("book_id", book.ID),
		slog.Int64("author_id", book.AuthorID),
	)
	return book, nil
}

// Update replaces every editable field of a book the caller owns.
func (service *Service) Update(context context.Context, principal *sec.Principal, id int64, input CreateInput) (*Book, error) {
	return service.apply(context, principal, id, func(book *Book) {
		replace(book, input)
	})
}

// Patch changes only the supplied fields of a book the caller owns.
func (service *Service) Patch(context context.Context, principal *sec.Principal, id int64, input PatchInput) (*Book, error) {
	return service.apply(context, principal, id, func(book *Book) {
		if input.Name != nil {
			book.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			book.Description = input.Description
		}
		if input.PDFURL != nil {
			book.PDFURL = input.PDFURL
		}
		if input.ISBN != nil {
			book.ISBN = validate.NormalizeISBN(*input.ISBN)
		}
	})
}

func (service *Service) apply(context context.Context, principal *sec.Principal, id int64, mutate func(*Book)) (*Book, error) {
	book, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if err := policy.CanUpdateBook(principal, book.AuthorID); err != nil {
		return nil, err
	}

	previousPDF := book.PDFURL
	mutate(book)

	if err := validateBook(book); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, book); err != nil {
		return nil, mapConflict(err)
	}

	service.markPDFUsed(context, previousPDF, book.PDFURL)
	service.logger.Info("book_updated", slog.Int64("book_id", book.ID))
	return book, nil
}

// Delete removes a book. ADMIN may delete any book, AUTHOR only their own.
func (service *Service) Delete(context context.Context, principal *sec.Principal, id int64) error {
	book, err := service.repo.FindByID(context, id)
	if err != nil {
		return err
	}

	if err := policy.CanDeleteBook(principal, book.AuthorID); err != nil {
		return err
	}

	if err := service.repo.Delete(context, book.ID); err != nil {
		return err
	}

	service.logger.Info("book_deleted",
		slog.Int64("book_id", book.ID),
		slog.Int64("deleted_by", principal.ID),
	)
	return nil
}

// # Helpers

func replace(book *Book, input CreateInput) {
	book.Name = strings.TrimSpace(input.Name)
	book.Description = input.Description
	book.PDFURL = input.PDFURL
	book.ISBN = validate.NormalizeISBN(input.ISBN)
}

func validateBook(book *Book) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, book.Name).
		MaxLen(FieldName, book.Name, MaxNameLength).
		ISBN13(FieldISBN, book.ISBN)

	if book.Description != nil {
		validator.MaxLen(FieldDescription, *book.Description, MaxDescriptionLength)
	}
	if book.PDFURL != nil {
		validator.URL(FieldPDFURL, *book.PDFURL)
	}
	return validator.Err()
}

func mapConflict(err error) error {
	if apperr.HasCode(err, apperr.CodeConflict) {
		return errDuplicateISBN
	}
	return err
}

// markPDFUsed is best effort and only fires when the URL actually changed.
func (service *Service) markPDFUsed(context context.Context, previous, current *string) {
	if service.files == nil || !pointer.Changed(previous, current) {
		return
	}
	if err := service.files.MarkUsed(context, *current); err != nil {
		service.logger.Warn("book_pdf_mark_failed",
			slog.String("pdf_url", *current),
			slog.Any("error", err),
		)
	}
}
