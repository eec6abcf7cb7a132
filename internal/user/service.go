// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/bookhub/internal/platform/apperr"
	"github.com/taibuivan/bookhub/internal/platform/policy"
	"github.com/taibuivan/bookhub/internal/platform/sec"
	"github.com/taibuivan/bookhub/internal/platform/validate"
	"github.com/taibuivan/bookhub/pkg/pagination"
	"github.com/taibuivan/bookhub/pkg/pointer"
)

// Service implements account management use cases.
type Service struct {
	repo     Repository
	files    FileUsageMarker
	logger   *slog.Logger
	lockRole bool
}

// Option customizes a [Service].
type Option func(*Service)

// WithSelfRoleLock makes self-service updates refuse a role change.
// Off by default: the submitted role is applied as-is.
func WithSelfRoleLock(locked bool) Option {
	return func(service *Service) {
		service.lockRole = locked
	}
}

// NewService constructs a new [Service].
func NewService(repo Repository, files FileUsageMarker, logger *slog.Logger, options ...Option) *Service {
	service := &Service{
		repo:   repo,
		files:  files,
		logger: logger,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// # Inputs

// UpdateInput is a full replacement of the profile (PUT).
// Absent optional fields are cleared.
type UpdateInput struct {
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Role  *sec.UserRole `json:"role"`
	Age   *int          `json:"age"`
	Image *string       `json:"image"`
}

// PatchInput changes only the fields that are present (PATCH).
type PatchInput struct {
	Name  *string       `json:"name"`
	Email *string       `json:"email"`
	Role  *sec.UserRole `json:"role"`
	Age   *int          `json:"age"`
	Image *string       `json:"image"`
}

// # Queries

// List returns every account except the caller's. ADMIN only.
func (service *Service) List(context context.Context, principal *sec.Principal, params pagination.Params) ([]*User, int, error) {
	if err := policy.CanListUsers(principal); err != nil {
		return nil, 0, err
	}
	return service.repo.List(context, principal.ID, params.Limit, params.Offset())
}

// Profile returns the caller's own record.
func (service *Service) Profile(context context.Context, principal *sec.Principal) (*User, error) {
	if principal == nil {
		return nil, apperr.TokenMissing()
	}
	return service.repo.FindByID(context, principal.ID)
}

// Get returns one account, checking existence before permission.
func (service *Service) Get(context context.Context, principal *sec.Principal, id int64) (*User, error) {
	target, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if err := policy.CanReadUser(principal, target.ID); err != nil {
		return nil, err
	}

	return target, nil
}

// # Commands

/*
Update replaces the profile of the target account.

Parameters:
  - context: context.Context
  - principal: The caller
  - id: Target account ID
  - input: UpdateInput

Returns:
  - *User: The saved record
  - error: NOT_FOUND, ACCESS_DENIED, VALIDATION_ERROR or storage failures
*/
func (service *Service) Update(context context.Context, principal *sec.Principal, id int64, input UpdateInput) (*User, error) {
	return service.apply(context, principal, id, func(target *User) {
		target.Name = strings.TrimSpace(input.Name)
		target.Email = NormalizeEmail(input.Email)
		target.Age = input.Age
		target.Image = input.Image
	}, input.Role)
}

// Patch changes only the supplied fields of the target account.
func (service *Service) Patch(context context.Context, principal *sec.Principal, id int64, input PatchInput) (*User, error) {
	return service.apply(context, principal, id, func(target *User) {
		if input.Name != nil {
			target.Name = strings.TrimSpace(*input.Name)
		}
		if input.Email != nil {
			target.Email = NormalizeEmail(*input.Email)
		}
		if input.Age != nil {
			target.Age = input.Age
		}
		if input.Image != nil {
			target.Image = input.Image
		}
	}, input.Role)
}

// apply runs the shared update pipeline: load, authorize, mutate, validate, persist.
func (service *Service) apply(context context.Context, principal *sec.Principal, id int64, mutate func(*User), requestedRole *sec.UserRole) (*User, error) {

	// 1. Existence first
	target, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	// 2. Permission
	if err := policy.CanUpdateUser(principal, target.ID); err != nil {
		return nil, err
	}

	if requestedRole != nil {
		if !requestedRole.Valid() {
			return nil, validate.RequiredError(FieldRole, "Must be one of: "+strings.Join(sec.RoleNames(), ", "))
		}
		if service.lockRole {
			if err := policy.CanChangeRole(principal, target.Role, *requestedRole); err != nil {
				return nil, err
			}
		}
	}

	previousEmail := target.Email
	previousImage := target.Image
	mutate(target)
	if requestedRole != nil {
		target.Role = *requestedRole
	}

	// 3. Validation
	validator := &validate.Validator{}
	validator.Required(FieldName, target.Name).
		MaxLen(FieldName, target.Name, MaxNameLength).
		Required(FieldEmail, target.Email).
		MaxLen(FieldEmail, target.Email, MaxEmailLength).
		Email(FieldEmail, target.Email)
	if target.Age != nil {
		validator.Range(FieldAge, *target.Age, MinAge, MaxAge)
	}
	if target.Image != nil {
		validator.URL(FieldImage, *target.Image)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// 4. Email uniqueness (reported as a validation failure, not a conflict)
	if target.Email != previousEmail {
		if err := service.ensureEmailFree(context, target.Email, target.ID); err != nil {
			return nil, err
		}
	}

	// 5. Persist
	if err := service.repo.Update(context, target); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, validate.RequiredError(FieldEmail, "Email is already in use")
		}
		return nil, err
	}

	if pointer.Changed(previousImage, target.Image) {
		service.markImageUsed(context, *target.Image)
	}

	service.logger.Info("user_updated", slog.Int64("user_id", target.ID))
	return target, nil
}

// Delete removes an account. ADMIN only, and never another ADMIN.
func (service *Service) Delete(context context.Context, principal *sec.Principal, id int64) error {
	target, err := service.repo.FindByID(context, id)
	if err != nil {
		return err
	}

	if err := policy.CanDeleteUser(principal, target.Role); err != nil {
		return err
	}

	if err := service.repo.Delete(context, target.ID); err != nil {
		return err
	}

	service.logger.Warn("user_deleted",
		slog.Int64("user_id", target.ID),
		slog.Int64("deleted_by", principal.ID),
	)
	return nil
}

// # Helpers

// ensureEmailFree fails when another account already owns email.
func (service *Service) ensureEmailFree(context context.Context, email string, selfID int64) error {
	existing, err := service.repo.FindByEmail(context, email)
	switch {
	case err == nil && existing.ID != selfID:
		return validate.RequiredError(FieldEmail, "Email is already in use")
	case err == nil, apperr.HasCode(err, apperr.CodeNotFound):
		return nil
	default:
		return fmt.Errorf("user_email_lookup_failed: %w", err)
	}
}

// markImageUsed is best effort. A profile update never fails because of it.
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

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
