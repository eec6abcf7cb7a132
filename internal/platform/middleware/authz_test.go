// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookhub/internal/platform/ctxutil"
	"github.com/taibuivan/bookhub/internal/platform/middleware"
	"github.com/taibuivan/bookhub/internal/platform/route"
	"github.com/taibuivan/bookhub/internal/platform/sec"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(token string) (*sec.Principal, error) {
	args := m.Called(token)
	principal, _ := args.Get(0).(*sec.Principal)
	return principal, args.Error(1)
}

// gateResult captures what the downstream handler saw.
type gateResult struct {
	reached   bool
	principal *sec.Principal
}

func runGate(verifier middleware.TokenVerifier, path, authorization string) (*httptest.ResponseRecorder, *gateResult) {
	result := &gateResult{}
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		result.reached = true
		result.principal = ctxutil.GetPrincipal(request.Context())
		writer.WriteHeader(http.StatusOK)
	})

	classifier := route.NewClassifier(route.DefaultExemptPatterns...)
	handler := middleware.Authenticate(verifier, classifier)(next)

	request := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		request.Header.Set("Authorization", authorization)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder, result
}

func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body.Code
}

/*
TestAuthenticate_Exempt passes public paths without touching the verifier.
*/
func TestAuthenticate_Exempt(t *testing.T) {
	verifier := &mockVerifier{}

	for _, header := range []string{"", "Bearer garbage", "Basic abc"} {
		recorder, result := runGate(verifier, "/api/files/download/a/b.pdf", header)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, result.reached)
		assert.Nil(t, result.principal)
	}

	verifier.AssertNotCalled(t, "Verify", mock.Anything)
}

/*
TestAuthenticate_MissingCredential rejects absent or malformed headers.
*/
func TestAuthenticate_MissingCredential(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"absent", ""},
		{"basic_scheme", "Basic dXNlcjpwYXNz"},
		{"scheme_only", "Bearer"},
		{"scheme_and_space", "Bearer    "},
		{"extra_segment", "Bearer a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &mockVerifier{}
			recorder, result := runGate(verifier, "/api/books", tt.header)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Equal(t, "TOKEN_MISSING", errorCode(t, recorder))
			assert.False(t, result.reached)
			verifier.AssertNotCalled(t, "Verify", mock.Anything)
		})
	}
}

/*
TestAuthenticate_Rejections maps each verification failure to its own code.
*/
func TestAuthenticate_Rejections(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"expired", &sec.TokenError{Kind: sec.TokenExpired}, "TOKEN_EXPIRED"},
		{"invalid", &sec.TokenError{Kind: sec.TokenInvalid}, "TOKEN_INVALID"},
		{"unknown_error", assert.AnError, "TOKEN_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &mockVerifier{}
			verifier.On("Verify", "tkn").Return(nil, tt.err).Once()

			recorder, result := runGate(verifier, "/api/users/profile", "Bearer tkn")

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Equal(t, tt.code, errorCode(t, recorder))
			assert.False(t, result.reached)
			verifier.AssertExpectations(t)
		})
	}
}

/*
TestAuthenticate_Success attaches exactly the verified principal.
*/
func TestAuthenticate_Success(t *testing.T) {
	principal := &sec.Principal{ID: 9, Email: "a@x.com", Name: "Ada", Role: sec.RoleAuthor}

	verifier := &mockVerifier{}
	verifier.On("Verify", "good").Return(principal, nil).Once()

	recorder, result := runGate(verifier, "/api/books/7", "bearer good")

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, result.reached)
	assert.Equal(t, principal, result.principal)
	verifier.AssertExpectations(t)
}

/*
TestAuthenticate_RealCodec runs the gate against the real token codec.
*/
func TestAuthenticate_RealCodec(t *testing.T) {
	codec, err := sec.NewTokenCodec("0123456789abcdef0123456789abcdef0123456789abcdef", "bookhub")
	require.NoError(t, err)

	token, err := codec.Issue(sec.Principal{ID: 1, Email: "r@x.com", Role: sec.RoleReader})
	require.NoError(t, err)

	recorder, result := runGate(codec, "/api/books", "Bearer "+token)
	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, result.principal)
	assert.Equal(t, sec.RoleReader, result.principal.Role)
}

/*
TestRequireAuth blocks handlers reached without a principal.
*/
func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNoContent)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithPrincipal(request.Context(), &sec.Principal{ID: 1, Role: sec.RoleReader}))
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}
