// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package file_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookhub/internal/file"
	"github.com/taibuivan/bookhub/internal/file/filetest"
	"github.com/taibuivan/bookhub/internal/platform/apperr"
	"github.com/taibuivan/bookhub/internal/platform/sec"
)

const baseURL = "http://localhost:8080"

var (
	owner     = &sec.Principal{ID: 1, Email: "o@x.com", Role: sec.RoleReader}
	stranger  = &sec.Principal{ID: 2, Email: "s@x.com", Role: sec.RoleAdmin}
	discarded = slog.New(slog.NewTextHandler(io.Discard, nil))
)

type fixture struct {
	service *file.Service
	repo    *filetest.MemoryRepository
	storage *file.LocalStorage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	storage, err := file.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	repo := filetest.NewMemoryRepository()
	return &fixture{
		service: file.NewService(repo, storage, baseURL+"/", discarded),
		repo:    repo,
		storage: storage,
	}
}

func (f *fixture) upload(t *testing.T, principal *sec.Principal, name, body string) *file.File {
	t.Helper()
	uploaded, err := f.service.Upload(context.Background(), principal, file.UploadInput{
		Name:    name,
		Content: strings.NewReader(body),
	})
	require.NoError(t, err)
	return uploaded
}

/*
TestService_Upload stores bytes under a unique name and builds the public URL.
*/
func TestService_Upload(t *testing.T) {
	f := newFixture(t)

	uploaded := f.upload(t, owner, "../Báo Cáo.PDF", "%PDF-1.7 body")

	assert.Equal(t, "bao-cao.pdf", uploaded.FileName)
	assert.True(t, strings.HasSuffix(uploaded.StoredName, "-bao-cao.pdf"))
	assert.Equal(t, baseURL+"/api/files/download/"+uploaded.StoredName, uploaded.DownloadURL)
	assert.Equal(t, "application/pdf", uploaded.MimeType)
	assert.Equal(t, int64(len("%PDF-1.7 body")), uploaded.Size)
	assert.False(t, uploaded.IsUsed)
	assert.Equal(t, owner.ID, uploaded.UploaderID)

	again := f.upload(t, owner, "../Báo Cáo.PDF", "%PDF-1.7 body")
	assert.NotEqual(t, uploaded.StoredName, again.StoredName)
}

/*
TestService_Upload_MimeType prefers a specific client type and sniffs otherwise.
*/
func TestService_Upload_MimeType(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		body     string
		expected string
	}{
		{"declared", "image/png; foo=bar", "whatever", "image/png"},
		{"generic_is_sniffed", "application/octet-stream", "plain words", "text/plain"},
		{"missing_is_sniffed", "", "<html><body></body></html>", "text/html"},
		{"empty_body", "", "", file.DefaultMimeType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			uploaded, err := f.service.Upload(context.Background(), owner, file.UploadInput{
				Name: "a.bin", ContentType: tt.declared, Content: strings.NewReader(tt.body),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, uploaded.MimeType)
		})
	}
}

/*
TestService_Upload_Anonymous is refused before touching the disk.
*/
func TestService_Upload_Anonymous(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Upload(context.Background(), nil, file.UploadInput{Name: "a", Content: strings.NewReader("x")})
	assert.True(t, apperr.HasCode(err, apperr.CodeTokenMissing))
}

/*
TestService_Ownership allows only the uploader, even over an ADMIN.
*/
func TestService_Ownership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uploaded := f.upload(t, owner, "notes.txt", "hello")

	_, err := f.service.Get(ctx, stranger, uploaded.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeAccessDenied))

	err = f.service.Delete(ctx, stranger, uploaded.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeAccessDenied))

	_, err = f.service.Get(ctx, stranger, 999)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	got, err := f.service.Get(ctx, owner, uploaded.ID)
	require.NoError(t, err)
	assert.Equal(t, uploaded.StoredName, got.StoredName)

	mine, err := f.service.ListMine(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := f.service.ListMine(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	require.NoError(t, f.service.Delete(ctx, owner, uploaded.ID))

	_, _, err = f.service.Open(ctx, uploaded.StoredName)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = f.storage.Open(uploaded.StoredName)
	assert.Error(t, err)
}

/*
TestService_Open streams the stored bytes and hides missing content as NOT_FOUND.
*/
func TestService_Open(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uploaded := f.upload(t, owner, "notes.txt", "hello")

	meta, content, err := f.service.Open(ctx, uploaded.StoredName)
	require.NoError(t, err)
	defer content.Close()

	body, err := io.ReadAll(content)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, uploaded.ID, meta.ID)

	_, _, err = f.service.Open(ctx, "unknown")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	require.NoError(t, f.storage.Remove(uploaded.StoredName))
	_, _, err = f.service.Open(ctx, uploaded.StoredName)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

/*
TestService_Cleanup removes only old, unused files.
*/
func TestService_Cleanup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.repo.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	oldUnused := f.upload(t, owner, "old.txt", "a")
	oldUsed := f.upload(t, owner, "avatar.png", "b")

	f.repo.Now = time.Now
	fresh := f.upload(t, owner, "fresh.txt", "c")

	require.NoError(t, f.service.MarkUsed(ctx, oldUsed.DownloadURL))
	require.NoError(t, f.service.MarkUsed(ctx, "https://elsewhere.example/x.png"))

	removed, err := f.service.Cleanup(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = f.repo.FindByID(ctx, oldUnused.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	_, err = f.storage.Open(oldUnused.StoredName)
	assert.Error(t, err)

	for _, kept := range []*file.File{oldUsed, fresh} {
		_, err := f.repo.FindByID(ctx, kept.ID)
		assert.NoError(t, err)
	}
}
