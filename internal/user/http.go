// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/bookhub/internal/platform/request"
	"github.com/taibuivan/bookhub/internal/platform/respond"
	"github.com/taibuivan/bookhub/pkg/pagination"
)

// Handler implements the /api/users endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] for account management.
//
// # Endpoints
//   - GET    /           : List accounts except the caller (ADMIN).
//   - GET    /profile    : The caller's own record.
//   - PUT    /           : Replace the caller's profile.
//   - PATCH  /           : Partially update the caller's profile.
//   - GET    /{userId}   : One account (self or ADMIN).
//   - PUT    /{userId}   : Replace a profile (self only).
//   - PATCH  /{userId}   : Partially update a profile (self only).
//   - DELETE /{userId}   : Delete a non-admin account (ADMIN).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/profile", handler.profile)
	router.Put("/", handler.updateSelf)
	router.Patch("/", handler.patchSelf)

	router.Get("/{userId}", handler.get)
	router.Put("/{userId}", handler.update)
	router.Patch("/{userId}", handler.patch)
	router.Delete("/{userId}", handler.delete)

	return router
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	users, total, err := handler.service.List(request.Context(), principal, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, params.Meta(total))
}

func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Profile(request.Context(), principal)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := requestutil.ID(request, "userId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Get(request.Context(), principal, userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *Handler) updateSelf(writer http.ResponseWriter, request *http.Request) {
	handler.replace(writer, request, false)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	handler.replace(writer, request, true)
}

func (handler *Handler) patchSelf(writer http.ResponseWriter, request *http.Request) {
	handler.partial(writer, request, false)
}

func (handler *Handler) patch(writer http.ResponseWriter, request *http.Request) {
	handler.partial(writer, request, true)
}

// replace handles PUT, on the path ID or on the caller.
func (handler *Handler) replace(writer http.ResponseWriter, request *http.Request, byPath bool) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	targetID := principal.ID
	if byPath {
		if targetID, err = requestutil.ID(request, "userId"); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Update(request.Context(), principal, targetID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

// partial handles PATCH, on the path ID or on the caller.
func (handler *Handler) partial(writer http.ResponseWriter, request *http.Request, byPath bool) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	targetID := principal.ID
	if byPath {
		if targetID, err = requestutil.ID(request, "userId"); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	var input PatchInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Patch(request.Context(), principal, targetID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := requestutil.ID(request, "userId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), principal, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "User deleted successfully.")
}
