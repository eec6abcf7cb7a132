// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package filetest provides an in-memory [file.Repository] for service and handler tests.
package filetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/bookhub/internal/file"
	"github.com/taibuivan/bookhub/internal/platform/apperr"
)

// MemoryRepository keeps file metadata in a map.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	files  map[int64]*file.File

	// Now stamps CreatedAt on insert. Defaults to time.Now.
	Now func() time.Time
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{files: make(map[int64]*file.File), Now: time.Now}
}

func (repository *MemoryRepository) Create(_ context.Context, created *file.File) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, stored := range repository.files {
		if stored.StoredName == created.StoredName || stored.DownloadURL == created.DownloadURL {
			return apperr.Conflict("File already exists")
		}
	}

	repository.nextID++
	created.ID = repository.nextID
	created.CreatedAt = repository.Now()

	clone := *created
	repository.files[created.ID] = &clone
	return nil
}

func (repository *MemoryRepository) FindByID(_ context.Context, id int64) (*file.File, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.files[id]
	if !ok {
		return nil, apperr.NotFound("File")
	}
	clone := *stored
	return &clone, nil
}

func (repository *MemoryRepository) FindByStoredName(_ context.Context, storedName string) (*file.File, error) {
	return repository.findFirst(func(stored *file.File) bool { return stored.StoredName == storedName })
}

func (repository *MemoryRepository) ListByUploader(_ context.Context, uploaderID int64) ([]*file.File, error) {
	files := repository.filter(func(stored *file.File) bool { return stored.UploaderID == uploaderID })
	sort.Slice(files, func(i, j int) bool { return files[i].ID > files[j].ID })
	return files, nil
}

func (repository *MemoryRepository) MarkUsed(_ context.Context, downloadURL string) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	found := false
	for _, stored := range repository.files {
		if stored.DownloadURL == downloadURL {
			stored.IsUsed = true
			found = true
		}
	}
	return found, nil
}

func (repository *MemoryRepository) ListUnused(_ context.Context, createdBefore time.Time) ([]*file.File, error) {
	files := repository.filter(func(stored *file.File) bool {
		return !stored.IsUsed && stored.CreatedAt.Before(createdBefore)
	})
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return files, nil
}

func (repository *MemoryRepository) Delete(_ context.Context, id int64) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.files[id]; !ok {
		return apperr.NotFound("File")
	}
	delete(repository.files, id)
	return nil
}

func (repository *MemoryRepository) findFirst(match func(*file.File) bool) (*file.File, error) {
	found := repository.filter(match)
	if len(found) == 0 {
		return nil, apperr.NotFound("File")
	}
	return found[0], nil
}

func (repository *MemoryRepository) filter(match func(*file.File) bool) []*file.File {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	matched := []*file.File{}
	for _, stored := range repository.files {
		if match(stored) {
			clone := *stored
			matched = append(matched, &clone)
		}
	}
	return matched
}

var _ file.Repository = (*MemoryRepository)(nil)
