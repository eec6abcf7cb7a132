// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, token signing) from
// the domain logic. The [TokenCodec] is constructed once at startup with the
// signing secret and passed explicitly to the services and middleware that
// need it. It holds no mutable state and is safe for concurrent use.
package sec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Constants

const (
	// AccessTokenTTL is how long an issued token stays valid.
	AccessTokenTTL = 1 * time.Hour

	// MinSecretLength is the minimum HS384 key size in bytes (384 bits).
	MinSecretLength = 48
)

// signingMethod is the only algorithm accepted on verification.
var signingMethod = jwt.SigningMethodHS384

// # Token Failures

// TokenFailure classifies why a credential was rejected.
type TokenFailure int

const (
	// TokenMissing means no usable credential was supplied.
	TokenMissing TokenFailure = iota + 1

	// TokenInvalid covers bad signatures, malformed structure and unsupported algorithms.
	TokenInvalid

	// TokenExpired means the token verified but its expiry instant has passed.
	TokenExpired
)

// String implements [fmt.Stringer].
func (f TokenFailure) String() string {
	switch f {
	case TokenMissing:
		return "token_missing"
	case TokenInvalid:
		return "token_invalid"
	case TokenExpired:
		return "token_expired"
	default:
		return "token_unknown"
	}
}

// TokenError is the typed failure returned by [TokenCodec.Verify].
type TokenError struct {
	Kind  TokenFailure
	Cause error
}

// Sentinels for use with [errors.Is]. Matching compares only the Kind.
var (
	ErrTokenMissing = &TokenError{Kind: TokenMissing}
	ErrTokenInvalid = &TokenError{Kind: TokenInvalid}
	ErrTokenExpired = &TokenError{Kind: TokenExpired}
)

// Error implements the error interface.
func (e *TokenError) Error() string {
	if e.Cause == nil {
		return "sec: " + e.Kind.String()
	}
	return fmt.Sprintf("sec: %s: %v", e.Kind, e.Cause)
}

// Unwrap exposes the underlying parser error.
func (e *TokenError) Unwrap() error { return e.Cause }

// Is makes two token errors equal when their kinds match.
func (e *TokenError) Is(target error) bool {
	var other *TokenError
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// # Codec

// TokenCodec issues and verifies HS384-signed identity tokens.
type TokenCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption customizes a [TokenCodec].
type CodecOption func(*TokenCodec)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) CodecOption {
	return func(codec *TokenCodec) {
		codec.now = now
	}
}

// WithTTL overrides [AccessTokenTTL].
func WithTTL(ttl time.Duration) CodecOption {
	return func(codec *TokenCodec) {
		codec.ttl = ttl
	}
}

// NewTokenCodec creates a codec bound to a symmetric signing secret.
//
// The secret must be at least [MinSecretLength] bytes long.
func NewTokenCodec(secret, issuer string, options ...CodecOption) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("sec: signing secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}

	codec := &TokenCodec{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    AccessTokenTTL,
		now:    time.Now,
	}

	for _, option := range options {
		option(codec)
	}

	return codec, nil
}

// Issue creates a signed token for the principal.
func (codec *TokenCodec) Issue(principal Principal) (string, error) {
	currentTime := codec.now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(principal.ID, 10),
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(codec.ttl)),
		},
		UserID: principal.ID,
		Email:  principal.Email,
		Name:   principal.Name,
		Role:   string(principal.Role),
	}

	token := jwt.NewWithClaims(signingMethod, claims)
	signedToken, err := token.SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature and expiry of a token and returns its principal.
//
// Failures are always a [*TokenError]. A token that verifies but is past its
// expiry is reported as [TokenExpired], never [TokenInvalid].
func (codec *TokenCodec) Verify(tokenString string) (*Principal, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, &TokenError{Kind: TokenMissing}
	}

	claims := &AuthClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, codec.keyFunc, codec.parserOptions()...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &TokenError{Kind: TokenExpired, Cause: err}
		}
		return nil, &TokenError{Kind: TokenInvalid, Cause: err}
	}

	principal, err := claims.principal()
	if err != nil {
		return nil, &TokenError{Kind: TokenInvalid, Cause: err}
	}

	return &principal, nil
}

// IsExpired reports whether a correctly signed token is past its expiry.
//
// Any other parse failure yields false.
func (codec *TokenCodec) IsExpired(tokenString string) bool {
	_, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, codec.keyFunc, codec.parserOptions()...)
	return err != nil && errors.Is(err, jwt.ErrTokenExpired)
}

// keyFunc returns the signing secret after checking the algorithm family.
func (codec *TokenCodec) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
	}
	return codec.secret, nil
}

func (codec *TokenCodec) parserOptions() []jwt.ParserOption {
	return []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(codec.issuer),
		jwt.WithTimeFunc(codec.now),
	}
}
