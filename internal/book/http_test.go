// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookhub/internal/auth"
	"github.com/taibuivan/bookhub/internal/book"
	"github.com/taibuivan/bookhub/internal/book/booktest"
	"github.com/taibuivan/bookhub/internal/platform/middleware"
	"github.com/taibuivan/bookhub/internal/platform/route"
	"github.com/taibuivan/bookhub/internal/platform/sec"
	"github.com/taibuivan/bookhub/internal/user/usertest"
)

const gateSecret = "0123456789abcdef0123456789abcdef0123456789abcdef"

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Code  string          `json:"code"`
}

func newRouter(t *testing.T) (http.Handler, *booktest.MemoryRepository) {
	t.Helper()

	codec, err := sec.NewTokenCodec(gateSecret, "bookhub")
	require.NoError(t, err)

	books := booktest.NewMemoryRepository()
	authService := auth.NewService(usertest.NewMemoryRepository(), &usertest.FileMarks{}, codec, discarded)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(codec, route.NewClassifier(route.DefaultExemptPatterns...)))
	router.Mount("/api/auth", auth.NewHandler(authService).Routes())
	router.Mount("/api/books", book.NewHandler(book.NewService(books, nil, discarded)).Routes())

	return router, books
}

func call(t *testing.T, router http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
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
	router.ServeHTTP(recorder, request)

	var decoded envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return recorder, decoded
}

/*
TestHTTP_AuthorEditsOnlyOwnBooks walks an author from registration to editing:
another author's book is refused, their own book is updated.
*/
func TestHTTP_AuthorEditsOnlyOwnBooks(t *testing.T) {
	router, books := newRouter(t)

	recorder, _ := call(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ada", "email": "a@x.com", "password": "secret1", "role": "AUTHOR",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder, body := call(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var session struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &session))
	require.NotEmpty(t, session.Token)

	books.Put(&book.Book{ID: 5, Name: "Theirs", ISBN: "9780306406157", AuthorID: session.User.ID + 100})
	books.Put(&book.Book{ID: 7, Name: "Mine", ISBN: "9780131103627", AuthorID: session.User.ID})

	update := map[string]string{"name": "Renamed", "isbn": "9780262033848"}

	recorder, body = call(t, router, http.MethodPut, "/api/books/5", session.Token, update)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, "ACCESS_DENIED", body.Code)

	recorder, body = call(t, router, http.MethodPut, "/api/books/7", session.Token, update)
	require.Equal(t, http.StatusOK, recorder.Code)

	var updated book.Book
	require.NoError(t, json.Unmarshal(body.Data, &updated))
	assert.Equal(t, int64(7), updated.ID)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "9780262033848", updated.ISBN)
}

/*
TestHTTP_Gate rejects book calls without a usable token.
*/
func TestHTTP_Gate(t *testing.T) {
	router, _ := newRouter(t)

	recorder, body := call(t, router, http.MethodGet, "/api/books", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "TOKEN_MISSING", body.Code)

	recorder, body = call(t, router, http.MethodGet, "/api/books", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "TOKEN_INVALID", body.Code)
}

/*
TestHTTP_GetUnknownBook returns 404 to an authenticated reader.
*/
func TestHTTP_GetUnknownBook(t *testing.T) {
	router, _ := newRouter(t)

	_, body := call(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Rae", "email": "r@x.com", "password": "secret1",
	})
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &session))

	recorder, body := call(t, router, http.MethodGet, "/api/books/404", session.Token, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "NOT_FOUND", body.Code)
}
