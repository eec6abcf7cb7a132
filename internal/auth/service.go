// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the identity entry points: registration, login and
password changes.

Every successful call returns a freshly signed access token. There is no
server-side session: a token stays valid until it expires, and changing the
password does not revoke tokens issued earlier.

Architecture:

  - Service: Validates input, hashes passwords (bcrypt) and issues tokens.
  - Storage: Reuses [user.Repository]; accounts live in the users table.
  - Handler: Public /register and /login, protected /update-password.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/bookhub/internal/platform/apperr"
	"github.com/taibuivan/bookhub/internal/platform/constants"
	"github.com/taibuivan/bookhub/internal/platform/sec"
	"github.com/taibuivan/bookhub/internal/platform/validate"
	"github.com/taibuivan/bookhub/internal/user"
)

// # Contracts & Types

// TokenIssuer signs access tokens. [sec.TokenCodec] satisfies it.
type TokenIssuer interface {
	Issue(principal sec.Principal) (string, error)
}

// Service implements authentication use cases.
type Service struct {
	users            user.Repository
	files            user.FileUsageMarker
	tokens           TokenIssuer
	logger           *slog.Logger
	blockAdminSignup bool
}

// Option customizes a [Service].
type Option func(*Service)

// WithAdminSignupBlocked refuses self-registration of ADMIN accounts.
// Off by default: any role may register.
func WithAdminSignupBlocked(blocked bool) Option {
	return func(service *Service) {
		service.blockAdminSignup = blocked
	}
}

// NewService constructs a new [Service].
func NewService(users user.Repository, files user.FileUsageMarker, tokens TokenIssuer, logger *slog.Logger, options ...Option) *Service {
	service := &Service{
		users:  users,
		files:  files,
		tokens: tokens,
		logger: logger,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// Session is the result of a successful authentication.
type Session struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// errInvalidCredentials is deliberately identical for unknown email and wrong password.
var errInvalidCredentials = apperr.Unauthorized("Invalid email or password")

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Role     sec.UserRole `json:"role"`
	Age      *int         `json:"age"`
	Image    *string      `json:"image"`
}

/*
Register validates, hashes, and persists a brand new account, then signs a token for it.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Session: The created account and its first token
  - error: VALIDATION_ERROR, CONFLICT (email taken), ACCESS_DENIED (admin signup disabled)
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Session, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = user.NormalizeEmail(input.Email)
	if input.Role == "" {
		input.Role = sec.RoleReader
	}

	validator := &validate.Validator{}
	validator.Required(user.FieldName, input.Name).
		MaxLen(user.FieldName, input.Name, user.MaxNameLength).
		Required(user.FieldEmail, input.Email).
		MaxLen(user.FieldEmail, input.Email, user.MaxEmailLength).
		Email(user.FieldEmail, input.Email).
		Required(user.FieldPassword, input.Password).
		MinLen(user.FieldPassword, input.Password, constants.MinPasswordLength).
		OneOf(user.FieldRole, string(input.Role), sec.RoleNames()...)
	if input.Age != nil {
		validator.Range(user.FieldAge, *input.Age, user.MinAge, user.MaxAge)
	}
	if input.Image != nil {
		validator.URL(user.FieldImage, *input.Image)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if input.Role == sec.RoleAdmin && service.blockAdminSignup {
		return nil, apperr.AccessDenied("ADMIN accounts cannot be self-registered.")
	}

	// Verify email uniqueness. Return a client-safe Conflict error.
	if _, err := service.users.FindByEmail(context, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	} else if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, fmt.Errorf("auth_service_email_lookup_failed: %w", err)
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	account := &user.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         input.Role,
		Age:          input.Age,
		Image:        input.Image,
	}

	// A concurrent registration can still win the unique index
	if err := service.users.Create(context, account); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, apperr.Conflict("Email is already registered")
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	if account.Image != nil {
		service.markImageUsed(context, *account.Image)
	}

	token, err := service.tokens.Issue(account.Principal())
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.logger.Info("user_registered",
		slog.Int64("user_id", account.ID),
		slog.String("role", account.Role.String()),
	)

	return &Session{Token: token, User: account}, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Login validates credentials and issues an access token.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: The token and account
  - error: UNAUTHORIZED for any credential mismatch
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {
	email := user.NormalizeEmail(input.Email)

	validator := &validate.Validator{}
	validator.Required(user.FieldEmail, email).Required(user.FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	account, err := service.users.FindByEmail(context, email)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			sec.BurnPasswordCheck(input.Password)
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(input.Password, account.PasswordHash) {
		service.logger.Warn("login_failed", slog.Int64("user_id", account.ID))
		return nil, errInvalidCredentials
	}

	token, err := service.tokens.Issue(account.Principal())
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.logger.Info("user_logged_in", slog.Int64("user_id", account.ID))
	return &Session{Token: token, User: account}, nil
}

// # Password Management

// UpdatePasswordInput carries the current and the desired password.
type UpdatePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

/*
UpdatePassword replaces the caller's password after checking the current one.

Returns a fresh token. Tokens issued before the change remain valid until
they expire.

Parameters:
  - context: context.Context
  - principal: The authenticated caller
  - input: UpdatePasswordInput

Returns:
  - string: New access token
  - error: VALIDATION_ERROR if the current password is wrong or the new one is too short
*/
func (service *Service) UpdatePassword(context context.Context, principal *sec.Principal, input UpdatePasswordInput) (string, error) {
	if principal == nil {
		return "", apperr.TokenMissing()
	}

	validator := &validate.Validator{}
	validator.Required(user.FieldCurrentPassword, input.CurrentPassword).
		Required(user.FieldNewPassword, input.NewPassword).
		MinLen(user.FieldNewPassword, input.NewPassword, constants.MinPasswordLength)
	if err := validator.Err(); err != nil {
		return "", err
	}

	account, err := service.users.FindByID(context, principal.ID)
	if err != nil {
		return "", err
	}

	if !sec.CheckPasswordHash(input.CurrentPassword, account.PasswordHash) {
		return "", validate.RequiredError(user.FieldCurrentPassword, "Current password is incorrect")
	}

	hashedPassword, err := hashPassword(input.NewPassword)
	if err != nil {
		return "", err
	}

	if err := service.users.UpdatePassword(context, account.ID, hashedPassword); err != nil {
		return "", fmt.Errorf("auth_service_update_password_failed: %w", err)
	}

	token, err := service.tokens.Issue(account.Principal())
	if err != nil {
		return "", fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.logger.Info("password_updated", slog.Int64("user_id", account.ID))
	return token, nil
}

// # Helpers

// hashPassword maps bcrypt's length limit to a client-facing validation error.
func hashPassword(password string) (string, error) {
	hashedPassword, err := sec.HashPassword(password)
	if err != nil {
		if errors.Is(err, sec.ErrPasswordTooLong) {
			return "", validate.RequiredError(user.FieldPassword, "Maximum 72 bytes")
		}
		return "", fmt.Errorf("auth_service_hash_failed: %w", err)
	}
	return hashedPassword, nil
}

func (service *Service) markImageUsed(context context.Context, downloadURL string) {
	if service.files == nil {
		return
	}
	if err := service.files.MarkUsed(context, downloadURL); err != nil {
		service.logger.Warn("user_image_mark_failed",
			slog.String("image", downloadURL),
			slog.Any("error", err),
		)
	}
}
