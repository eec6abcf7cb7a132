// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package usertest provides an in-memory [user.Repository] for service tests.
package usertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/bookhub/internal/platform/apperr"
	"github.com/taibuivan/bookhub/internal/platform/sec"
	"github.com/taibuivan/bookhub/internal/user"
)

// MemoryRepository keeps users in a map and mimics the Postgres error mapping.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*user.User
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[int64]*user.User)}
}

// Seed inserts a user directly and returns the stored copy.
func (repository *MemoryRepository) Seed(name, email string, role sec.UserRole) *user.User {
	seeded := &user.User{Name: name, Email: email, Role: role, PasswordHash: "x"}
	if err := repository.Create(context.Background(), seeded); err != nil {
		panic(err)
	}
	return seeded
}

func (repository *MemoryRepository) FindByID(_ context.Context, id int64) (*user.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *stored
	return &clone, nil
}

func (repository *MemoryRepository) FindByEmail(_ context.Context, email string) (*user.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, stored := range repository.users {
		if stored.Email == email {
			clone := *stored
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *MemoryRepository) List(_ context.Context, excludeID int64, limit, offset int) ([]*user.User, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	matched := make([]*user.User, 0, len(repository.users))
	for _, stored := range repository.users {
		if stored.ID != excludeID {
			clone := *stored
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	if offset >= total {
		return []*user.User{}, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func (repository *MemoryRepository) Create(_ context.Context, created *user.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.emailTaken(created.Email, 0) {
		return apperr.Conflict("User already exists")
	}

	repository.nextID++
	created.ID = repository.nextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt

	clone := *created
	repository.users[created.ID] = &clone
	return nil
}

func (repository *MemoryRepository) Update(_ context.Context, updated *user.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.users[updated.ID]
	if !ok {
		return apperr.NotFound("User")
	}
	if repository.emailTaken(updated.Email, updated.ID) {
		return apperr.Conflict("User already exists")
	}

	updated.UpdatedAt = time.Now()
	updated.PasswordHash = stored.PasswordHash

	clone := *updated
	repository.users[updated.ID] = &clone
	return nil
}

func (repository *MemoryRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.users[id]
	if !ok {
		return apperr.NotFound("User")
	}
	stored.PasswordHash = passwordHash
	return nil
}

func (repository *MemoryRepository) Delete(_ context.Context, id int64) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(repository.users, id)
	return nil
}

func (repository *MemoryRepository) emailTaken(email string, selfID int64) bool {
	for _, stored := range repository.users {
		if stored.Email == email && stored.ID != selfID {
			return true
		}
	}
	return false
}

// FileMarks records the URLs passed to MarkUsed.
type FileMarks struct {
	mu   sync.Mutex
	URLs []string
}

// MarkUsed implements [user.FileUsageMarker].
func (marks *FileMarks) MarkUsed(_ context.Context, downloadURL string) error {
	marks.mu.Lock()
	defer marks.mu.Unlock()
	marks.URLs = append(marks.URLs, downloadURL)
	return nil
}

var (
	_ user.Repository      = (*MemoryRepository)(nil)
	_ user.FileUsageMarker = (*FileMarks)(nil)
)
