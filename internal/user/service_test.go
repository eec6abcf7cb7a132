// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookhub/internal/platform/apperr"
	"github.com/taibuivan/bookhub/internal/platform/sec"
	"github.com/taibuivan/bookhub/internal/user"
	"github.com/taibuivan/bookhub/internal/user/usertest"
	"github.com/taibuivan/bookhub/pkg/pagination"
	"github.com/taibuivan/bookhub/pkg/pointer"
)

type fixture struct {
	service *user.Service
	repo    *usertest.MemoryRepository
	marks   *usertest.FileMarks
	admin   *user.User
	author  *user.User
	reader  *user.User
}

func newFixture(options ...user.Option) *fixture {
	repo := usertest.NewMemoryRepository()
	marks := &usertest.FileMarks{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		service: user.NewService(repo, marks, logger, options...),
		repo:    repo,
		marks:   marks,
		admin:   repo.Seed("Admin", "admin@x.com", sec.RoleAdmin),
		author:  repo.Seed("Author", "author@x.com", sec.RoleAuthor),
		reader:  repo.Seed("Reader", "reader@x.com", sec.RoleReader),
	}
}

func principalOf(account *user.User) *sec.Principal {
	principal := account.Principal()
	return &principal
}

/*
TestService_List verifies that only ADMIN may list and that the caller is excluded.
*/
func TestService_List(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	params := pagination.Params{Page: 1, Limit: 10}

	users, total, err := f.service.List(ctx, principalOf(f.admin), params)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, listed := range users {
		assert.NotEqual(t, f.admin.ID, listed.ID)
	}

	_, _, err = f.service.List(ctx, principalOf(f.reader), params)
	assert.True(t, apperr.HasCode(err, apperr.CodeAccessDenied))
}

/*
TestService_Get covers self-service reads and the READER denial.
*/
func TestService_Get(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, account := range []*user.User{f.admin, f.author, f.reader} {
		got, err := f.service.Get(ctx, principalOf(account), account.ID)
		require.NoError(t, err)
		assert.Equal(t, account.Email, got.Email)
	}

	_, err := f.service.Get(ctx, principalOf(f.reader), f.author.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeAccessDenied))

	got, err := f.service.Get(ctx, principalOf(f.admin), f.reader.ID)
	require.NoError(t, err)
	assert.Equal(t, f.reader.ID, got.ID)

	_, err = f.service.Get(ctx, principalOf(f.admin), 999)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

/*
TestService_Profile always returns the caller.
*/
func TestService_Profile(t *testing.T) {
	f := newFixture()

	got, err := f.service.Profile(context.Background(), principalOf(f.reader))
	require.NoError(t, err)
	assert.Equal(t, f.reader.ID, got.ID)
}

/*
TestService_Update covers replacement, ownership and duplicate emails.
*/
func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("self_replace", func(t *testing.T) {
		f := newFixture()
		image := "http://localhost:8080/api/files/download/abc-me.png"

		got, err := f.service.Update(ctx, principalOf(f.reader), f.reader.ID, user.UpdateInput{
			Name:  "Renamed",
			Email: "  NEW@X.com ",
			Age:   pointer.To(30),
			Image: &image,
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.Equal(t, "new@x.com", got.Email)
		assert.Equal(t, 30, *got.Age)
		assert.Equal(t, []string{image}, f.marks.URLs)
	})

	t.Run("other_account_denied_even_for_admin", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Update(ctx, principalOf(f.admin), f.reader.ID, user.UpdateInput{Name: "x", Email: "x@x.com"})
		assert.True(t, apperr.HasCode(err, apperr.CodeAccessDenied))
	})

	t.Run("duplicate_email_is_validation_error", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Update(ctx, principalOf(f.reader), f.reader.ID, user.UpdateInput{Name: "R", Email: "author@x.com"})
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, 400, appError.HTTPStatus)
	})

	t.Run("self_role_change_applied", func(t *testing.T) {
		f := newFixture()
		role := sec.RoleAuthor
		got, err := f.service.Update(ctx, principalOf(f.reader), f.reader.ID, user.UpdateInput{Name: "R", Email: "reader@x.com", Role: &role})
		require.NoError(t, err)
		assert.Equal(t, sec.RoleAuthor, got.Role)

		stored, err := f.repo.FindByID(ctx, f.reader.ID)
		require.NoError(t, err)
		assert.Equal(t, sec.RoleAuthor, stored.Role)
	})

	t.Run("self_role_change_locked", func(t *testing.T) {
		f := newFixture(user.WithSelfRoleLock(true))
		role := sec.RoleAdmin
		_, err := f.service.Update(ctx, principalOf(f.reader), f.reader.ID, user.UpdateInput{Name: "R", Email: "reader@x.com", Role: &role})
		assert.True(t, apperr.HasCode(err, apperr.CodeAccessDenied))

		same := sec.RoleReader
		_, err = f.service.Update(ctx, principalOf(f.reader), f.reader.ID, user.UpdateInput{Name: "R", Email: "reader@x.com", Role: &same})
		assert.NoError(t, err)
	})

	t.Run("unknown_role_rejected", func(t *testing.T) {
		f := newFixture()
		role := sec.UserRole("ROOT")
		_, err := f.service.Update(ctx, principalOf(f.reader), f.reader.ID, user.UpdateInput{Name: "R", Email: "reader@x.com", Role: &role})
		assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	})

	t.Run("missing_target", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Update(ctx, principalOf(f.reader), 404, user.UpdateInput{Name: "R", Email: "r@x.com"})
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	})
}

/*
TestService_Patch changes only the supplied fields.
*/
func TestService_Patch(t *testing.T) {
	f := newFixture()

	got, err := f.service.Patch(context.Background(), principalOf(f.author), f.author.ID, user.PatchInput{
		Age: pointer.To(41),
	})
	require.NoError(t, err)
	assert.Equal(t, "Author", got.Name)
	assert.Equal(t, "author@x.com", got.Email)
	assert.Equal(t, sec.RoleAuthor, got.Role)
	assert.Equal(t, 41, *got.Age)
	assert.Empty(t, f.marks.URLs)

	_, err = f.service.Patch(context.Background(), principalOf(f.author), f.author.ID, user.PatchInput{
		Age: pointer.To(-1),
	})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	got, err = f.service.Patch(context.Background(), principalOf(f.reader), f.reader.ID, user.PatchInput{
		Role: pointer.To(sec.RoleAuthor),
	})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAuthor, got.Role)
	assert.Equal(t, "Reader", got.Name)
}

/*
TestService_Delete enforces the admin-only rule and protects ADMIN targets.
*/
func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("admin_deletes_reader", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.service.Delete(ctx, principalOf(f.admin), f.reader.ID))

		_, err := f.repo.FindByID(ctx, f.reader.ID)
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	})

	t.Run("admin_target_denied", func(t *testing.T) {
		f := newFixture()
		other := f.repo.Seed("Other Admin", "other@x.com", sec.RoleAdmin)

		for _, target := range []*user.User{f.admin, other} {
			err := f.service.Delete(ctx, principalOf(f.admin), target.ID)
			assert.True(t, apperr.HasCode(err, apperr.CodeAccessDenied))
		}
	})

	t.Run("non_admin_denied", func(t *testing.T) {
		f := newFixture()
		err := f.service.Delete(ctx, principalOf(f.author), f.reader.ID)
		assert.True(t, apperr.HasCode(err, apperr.CodeAccessDenied))
	})

	t.Run("missing_target_is_not_found", func(t *testing.T) {
		f := newFixture()
		err := f.service.Delete(ctx, principalOf(f.admin), 12345)
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	})
}
