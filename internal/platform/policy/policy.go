// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package policy is the single place where role and ownership rules live.

Every function is a pure decision over the caller and the ownership data of
the target resource. It returns nil to allow, or an [apperr.AppError] with
code ACCESS_DENIED to deny. Services load the resource first (so a missing
resource is reported as NOT_FOUND) and then ask the policy.

Decision table:

	Resource  Action          ADMIN              AUTHOR         READER
	Book      create          deny               allow          deny
	Book      update / patch  owner only         owner only     deny
	Book      delete          any                owner only     deny
	Book      read            allow              allow          allow
	User      list            allow              deny           deny
	User      update / patch  self only          self only      self only
	User      change role     allow (*)          allow (*)      allow (*)
	User      delete          non-admin target   deny           deny
	User      read by id      any                self only      self only
	File      upload          allow              allow          allow
	File      delete / read   uploader only      uploader only  uploader only

(*) denied when the self-role lock is configured, see CanChangeRole.
*/
package policy

import (
	"github.com/taibuivan/bookhub/internal/platform/apperr"
	"github.com/taibuivan/bookhub/internal/platform/sec"
)

// # Denial Reasons

const (
	ReasonCreateBook    = "Only authors can create books."
	ReasonUpdateBook    = "You can only update your own books."
	ReasonDeleteBook    = "You can only delete your own books."
	ReasonReaderDelete  = "Readers cannot delete books."
	ReasonListUsers     = "Only admins can list users."
	ReasonUpdateUser    = "You can only update your own account."
	ReasonChangeRole    = "You cannot change your own role."
	ReasonDeleteUser    = "Only admins can delete users."
	ReasonDeleteAdmin   = "Cannot delete ADMIN users."
	ReasonReadUser      = "You can only view your own account."
	ReasonFileOwnership = "You can only access your own files."
)

// guard turns a nil principal into a missing-credential failure.
// The access gate never lets that happen on a protected route.
func guard(principal *sec.Principal) error {
	if principal == nil {
		return apperr.TokenMissing()
	}
	return nil
}

// # Books

// CanCreateBook allows AUTHOR only.
func CanCreateBook(principal *sec.Principal) error {
	if err := guard(principal); err != nil {
		return err
	}
	if !principal.HasRole(sec.RoleAuthor) {
		return apperr.AccessDenied(ReasonCreateBook)
	}
	return nil
}

// CanUpdateBook requires ownership. ADMIN gets no override here, unlike delete.
func CanUpdateBook(principal *sec.Principal, authorID int64) error {
	if err := guard(principal); err != nil {
		return err
	}
	if principal.HasRole(sec.RoleReader) || !principal.Is(authorID) {
		return apperr.AccessDenied(ReasonUpdateBook)
	}
	return nil
}

// CanDeleteBook allows ADMIN on any book and AUTHOR on their own.
func CanDeleteBook(principal *sec.Principal, authorID int64) error {
	if err := guard(principal); err != nil {
		return err
	}

	switch principal.Role {
	case sec.RoleAdmin:
		return nil
	case sec.RoleAuthor:
		if principal.Is(authorID) {
			return nil
		}
		return apperr.AccessDenied(ReasonDeleteBook)
	default:
		return apperr.AccessDenied(ReasonReaderDelete)
	}
}

// CanReadBook allows any authenticated caller.
func CanReadBook(principal *sec.Principal) error {
	return guard(principal)
}

// # Users

// CanListUsers allows ADMIN only.
func CanListUsers(principal *sec.Principal) error {
	if err := guard(principal); err != nil {
		return err
	}
	if !principal.HasRole(sec.RoleAdmin) {
		return apperr.AccessDenied(ReasonListUsers)
	}
	return nil
}

// CanUpdateUser is self-service only, whatever the caller's role.
func CanUpdateUser(principal *sec.Principal, targetID int64) error {
	if err := guard(principal); err != nil {
		return err
	}
	if !principal.Is(targetID) {
		return apperr.AccessDenied(ReasonUpdateUser)
	}
	return nil
}

// CanChangeRole rejects any self-service update that alters the caller's role.
// Submitting the current role unchanged is allowed. Services consult it only
// when the self-role lock is enabled.
func CanChangeRole(principal *sec.Principal, current, requested sec.UserRole) error {
	if err := guard(principal); err != nil {
		return err
	}
	if requested != "" && requested != current {
		return apperr.AccessDenied(ReasonChangeRole)
	}
	return nil
}

// CanDeleteUser allows ADMIN, except when the target is an ADMIN too.
func CanDeleteUser(principal *sec.Principal, targetRole sec.UserRole) error {
	if err := guard(principal); err != nil {
		return err
	}
	if !principal.HasRole(sec.RoleAdmin) {
		return apperr.AccessDenied(ReasonDeleteUser)
	}
	if targetRole == sec.RoleAdmin {
		return apperr.AccessDenied(ReasonDeleteAdmin)
	}
	return nil
}

// CanReadUser allows ADMIN on anyone and everybody else on themselves.
func CanReadUser(principal *sec.Principal, targetID int64) error {
	if err := guard(principal); err != nil {
		return err
	}
	if principal.HasRole(sec.RoleAdmin) || principal.Is(targetID) {
		return nil
	}
	return apperr.AccessDenied(ReasonReadUser)
}

// # Files

// CanUploadFile allows any authenticated caller.
func CanUploadFile(principal *sec.Principal) error {
	return guard(principal)
}

// CanDeleteFile allows only the uploader.
func CanDeleteFile(principal *sec.Principal, uploaderID int64) error {
	return ownsFile(principal, uploaderID)
}

// CanReadFile allows only the uploader.
func CanReadFile(principal *sec.Principal, uploaderID int64) error {
	return ownsFile(principal, uploaderID)
}

func ownsFile(principal *sec.Principal, uploaderID int64) error {
	if err := guard(principal); err != nil {
		return err
	}
	if !principal.Is(uploaderID) {
		return apperr.AccessDenied(ReasonFileOwnership)
	}
	return nil
}
