// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/bookhub/internal/platform/apperr"
	"github.com/taibuivan/bookhub/internal/platform/constants"
	"github.com/taibuivan/bookhub/internal/platform/ctxutil"
	"github.com/taibuivan/bookhub/internal/platform/respond"
	"github.com/taibuivan/bookhub/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// [sec.TokenCodec] satisfies it. Tests inject a mock.
type TokenVerifier interface {
	Verify(token string) (*sec.Principal, error)
}

// RouteClassifier decides which paths skip authentication entirely.
type RouteClassifier interface {
	IsExempt(path string) bool
}

// Authenticate is the access gate. It runs once per request, in front of
// every business handler.
//
// # Flow
//  1. Exempt path: pass through untouched, no token work even if a header is sent.
//  2. Missing or non-Bearer Authorization header: reject with TOKEN_MISSING (401).
//  3. Verify the token via [TokenVerifier].
//  4. Expired or invalid: reject with TOKEN_EXPIRED or TOKEN_INVALID (401).
//  5. Success: attach the [*sec.Principal] to the context and pass.
//
// A request that reaches the next handler therefore carries either no
// principal (exempt route) or exactly one verified principal.
//
// # Parameters
//   - verifier: The TokenVerifier instance.
//   - classifier: The static allow-list of public routes.
//
// # Returns
//   - An [http.Handler] middleware.
func Authenticate(verifier TokenVerifier, classifier RouteClassifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			logger := ctxutil.GetLogger(request.Context())

			// ── 1. Public Routes ──────────────────────────────────────────────
			if classifier.IsExempt(request.URL.Path) {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Credential Extraction ──────────────────────────────────────
			token, ok := bearerToken(request)
			if !ok {
				logger.DebugContext(request.Context(), "auth_token_missing")
				respond.Error(writer, request, apperr.TokenMissing())
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			principal, err := verifier.Verify(token)
			if err != nil {
				rejection := rejectionFor(err)
				logger.WarnContext(request.Context(), "auth_token_rejected",
					slog.String("code", rejection.Code),
					slog.String("error", err.Error()),
				)
				respond.Error(writer, request, rejection)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			recordPrincipal(ctx, principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// bearerToken returns the credential of an 'Authorization: Bearer <token>' header.
// The scheme is matched case-insensitively.
func bearerToken(request *http.Request) (string, bool) {
	header := strings.TrimSpace(request.Header.Get(constants.HeaderAuthorization))
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, constants.BearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.Contains(token, " ") {
		return "", false
	}

	return token, true
}

// rejectionFor maps a verification failure to its 401 response.
// Anything that is not a recognised expiry is treated as invalid.
func rejectionFor(err error) *apperr.AppError {
	switch {
	case errors.Is(err, sec.ErrTokenExpired):
		return apperr.TokenExpired(err)
	case errors.Is(err, sec.ErrTokenMissing):
		return apperr.TokenMissing()
	default:
		return apperr.TokenInvalid(err)
	}
}

// RequireAuth blocks requests that carry no principal.
//
// # Usage
//
// The gate already rejects anonymous calls on protected paths. Mount this on
// sub-routers that must stay private even if the allow-list grows.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetPrincipal(request.Context()) == nil {
			respond.Error(writer, request, apperr.TokenMissing())
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// # Principal Holder

// principalHolder lets [StructuredLogger], which wraps the gate, see the
// principal the gate attaches further down the chain.
type principalHolder struct {
	principal *sec.Principal
}

type holderKey struct{}

func withPrincipalHolder(ctx context.Context, holder *principalHolder) context.Context {
	return context.WithValue(ctx, holderKey{}, holder)
}

// recordPrincipal fills the holder, if the logger installed one.
func recordPrincipal(ctx context.Context, principal *sec.Principal) {
	if holder, ok := ctx.Value(holderKey{}).(*principalHolder); ok {
		holder.principal = principal
	}
}
