// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookhub/internal/platform/middleware"
	"github.com/taibuivan/bookhub/internal/platform/route"
	"github.com/taibuivan/bookhub/internal/platform/sec"
	"github.com/taibuivan/bookhub/internal/user"
	"github.com/taibuivan/bookhub/internal/user/usertest"
)

const gateSecret = "0123456789abcdef0123456789abcdef0123456789abcdef"

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Code  string          `json:"code"`
}

type httpFixture struct {
	router http.Handler
	codec  *sec.TokenCodec
	repo   *usertest.MemoryRepository
	admin  *user.User
	author *user.User
	reader *user.User
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()

	codec, err := sec.NewTokenCodec(gateSecret, "bookhub")
	require.NoError(t, err)

	repo := usertest.NewMemoryRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(codec, route.NewClassifier(route.DefaultExemptPatterns...)))
	router.Mount("/api/users", user.NewHandler(user.NewService(repo, &usertest.FileMarks{}, logger)).Routes())

	return &httpFixture{
		router: router,
		codec:  codec,
		repo:   repo,
		admin:  repo.Seed("Admin", "admin@x.com", sec.RoleAdmin),
		author: repo.Seed("Author", "author@x.com", sec.RoleAuthor),
		reader: repo.Seed("Reader", "reader@x.com", sec.RoleReader),
	}
}

// tokenFor issues a bearer token carrying the account's claims.
func (f *httpFixture) tokenFor(t *testing.T, account *user.User) string {
	t.Helper()

	token, err := f.codec.Issue(account.Principal())
	require.NoError(t, err)
	return token
}

func (f *httpFixture) call(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	request := httptest.NewRequest(method, path, &payload)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, request)

	var decoded envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return recorder, decoded
}

func userPath(id int64) string {
	return "/api/users/" + strconv.FormatInt(id, 10)
}

/*
TestHTTP_ReaderCannotFetchOthers returns a 403 error envelope to a READER
asking for another account, while their own record stays readable.
*/
func TestHTTP_ReaderCannotFetchOthers(t *testing.T) {
	f := newHTTPFixture(t)
	token := f.tokenFor(t, f.reader)

	recorder, body := f.call(t, http.MethodGet, userPath(f.author.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, "ACCESS_DENIED", body.Code)
	assert.NotEmpty(t, body.Error)
	assert.Empty(t, body.Data)

	recorder, body = f.call(t, http.MethodGet, userPath(f.reader.ID), token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var got user.User
	require.NoError(t, json.Unmarshal(body.Data, &got))
	assert.Equal(t, f.reader.ID, got.ID)
}

/*
TestHTTP_ProfileForEveryRole serves /profile to each role with the caller's own record.
*/
func TestHTTP_ProfileForEveryRole(t *testing.T) {
	f := newHTTPFixture(t)

	for _, account := range []*user.User{f.admin, f.author, f.reader} {
		t.Run(string(account.Role), func(t *testing.T) {
			recorder, body := f.call(t, http.MethodGet, "/api/users/profile", f.tokenFor(t, account), nil)
			require.Equal(t, http.StatusOK, recorder.Code)

			var got user.User
			require.NoError(t, json.Unmarshal(body.Data, &got))
			assert.Equal(t, account.ID, got.ID)
			assert.Equal(t, account.Email, got.Email)
			assert.Equal(t, account.Role, got.Role)
		})
	}
}

/*
TestHTTP_DeleteAdminTarget refuses to delete an ADMIN account, even for an ADMIN caller.
*/
func TestHTTP_DeleteAdminTarget(t *testing.T) {
	f := newHTTPFixture(t)
	other := f.repo.Seed("Second Admin", "admin2@x.com", sec.RoleAdmin)
	token := f.tokenFor(t, f.admin)

	recorder, body := f.call(t, http.MethodDelete, userPath(other.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, "ACCESS_DENIED", body.Code)

	_, err := f.repo.FindByID(t.Context(), other.ID)
	assert.NoError(t, err)

	recorder, _ = f.call(t, http.MethodDelete, userPath(f.reader.ID), token, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestHTTP_MalformedUserID rejects a non-numeric or non-positive path ID with 400.
*/
func TestHTTP_MalformedUserID(t *testing.T) {
	f := newHTTPFixture(t)
	token := f.tokenFor(t, f.admin)

	for _, path := range []string{"/api/users/abc", "/api/users/0", "/api/users/-3"} {
		recorder, body := f.call(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, path)
		assert.Equal(t, "VALIDATION_ERROR", body.Code, path)
	}

	recorder, body := f.call(t, http.MethodDelete, "/api/users/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
}

/*
TestHTTP_UnknownUser returns 404 to an ADMIN before any permission check.
*/
func TestHTTP_UnknownUser(t *testing.T) {
	f := newHTTPFixture(t)

	recorder, body := f.call(t, http.MethodGet, userPath(404), f.tokenFor(t, f.admin), nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

/*
TestHTTP_PatchSelf updates the caller through PATCH /api/users and
refuses PATCH on another account.
*/
func TestHTTP_PatchSelf(t *testing.T) {
	f := newHTTPFixture(t)
	token := f.tokenFor(t, f.author)

	recorder, body := f.call(t, http.MethodPatch, "/api/users", token, map[string]any{"age": 33})
	require.Equal(t, http.StatusOK, recorder.Code)

	var got user.User
	require.NoError(t, json.Unmarshal(body.Data, &got))
	assert.Equal(t, f.author.ID, got.ID)
	require.NotNil(t, got.Age)
	assert.Equal(t, 33, *got.Age)

	recorder, body = f.call(t, http.MethodPatch, userPath(f.reader.ID), token, map[string]any{"age": 33})
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, "ACCESS_DENIED", body.Code)
}

/*
TestHTTP_Gate rejects user calls without a token.
*/
func TestHTTP_Gate(t *testing.T) {
	f := newHTTPFixture(t)

	recorder, body := f.call(t, http.MethodGet, "/api/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "TOKEN_MISSING", body.Code)
}
