// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package booktest provides an in-memory [book.Repository] for service and handler tests.
package booktest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/bookhub/internal/book"
	"github.com/taibuivan/bookhub/internal/platform/apperr"
)

// MemoryRepository keeps books in a map and mimics the Postgres error mapping.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	books  map[int64]*book.Book
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{books: make(map[int64]*book.Book)}
}

// Put stores a book under its own ID, replacing any previous entry.
func (repository *MemoryRepository) Put(stored *book.Book) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	clone := *stored
	if clone.Author == nil {
		clone.Author = &book.Author{ID: clone.AuthorID}
	}
	repository.books[clone.ID] = &clone
	repository.nextID = max(repository.nextID, clone.ID)
}

func (repository *MemoryRepository) List(_ context.Context, limit, offset int) ([]*book.Book, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	all := make([]*book.Book, 0, len(repository.books))
	for _, stored := range repository.books {
		clone := *stored
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	total := len(all)
	if offset >= total {
		return []*book.Book{}, total, nil
	}
	return all[offset:min(offset+limit, total)], total, nil
}

func (repository *MemoryRepository) FindByID(_ context.Context, id int64) (*book.Book, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.books[id]
	if !ok {
		return nil, apperr.NotFound("Book")
	}
	clone := *stored
	return &clone, nil
}

func (repository *MemoryRepository) Create(_ context.Context, created *book.Book) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.isbnTaken(created.ISBN, 0) {
		return apperr.Conflict("Book already exists")
	}

	repository.nextID++
	created.ID = repository.nextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt

	clone := *created
	repository.books[created.ID] = &clone
	return nil
}

func (repository *MemoryRepository) Update(_ context.Context, updated *book.Book) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.books[updated.ID]
	if !ok {
		return apperr.NotFound("Book")
	}
	if repository.isbnTaken(updated.ISBN, updated.ID) {
		return apperr.Conflict("Book already exists")
	}

	updated.UpdatedAt = time.Now()
	updated.AuthorID = stored.AuthorID

	clone := *updated
	repository.books[updated.ID] = &clone
	return nil
}

func (repository *MemoryRepository) Delete(_ context.Context, id int64) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.books[id]; !ok {
		return apperr.NotFound("Book")
	}
	delete(repository.books, id)
	return nil
}

func (repository *MemoryRepository) isbnTaken(isbn string, selfID int64) bool {
	for _, stored := range repository.books {
		if stored.ISBN == isbn && stored.ID != selfID {
			return true
		}
	}
	return false
}

var _ book.Repository = (*MemoryRepository)(nil)
