// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package file

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookhub/internal/platform/apperr"
	"github.com/taibuivan/bookhub/internal/platform/constants"
	requestutil "github.com/taibuivan/bookhub/internal/platform/request"
	"github.com/taibuivan/bookhub/internal/platform/respond"
	"github.com/taibuivan/bookhub/internal/platform/validate"
)

// multipartMemory is how much of a form is buffered in memory before spilling to temp files.
const multipartMemory = 1 << 20

// Handler implements the /api/files endpoints.
type Handler struct {
	service        *Service
	maxUploadBytes int64
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

// Routes returns a [chi.Router] for uploads.
//
// # Endpoints
//   - POST   /upload              : Multipart upload, field "file".
//   - GET    /user-files          : The caller's uploads.
//   - GET    /download/{fileName} : Public download by stored name.
//   - GET    /{fileId}            : Metadata (uploader only).
//   - DELETE /{fileId}            : Delete (uploader only).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/upload", handler.upload)
	router.Get("/user-files", handler.listMine)
	router.Get("/download/{fileName}", handler.download)
	router.Get("/{fileId}", handler.get)
	router.Delete("/{fileId}", handler.delete)

	return router
}

type uploadResponse struct {
	Message string `json:"message"`
	File    *File  `json:"file"`
}

func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, handler.maxUploadBytes)
	if err := request.ParseMultipartForm(multipartMemory); err != nil {
		respond.Error(writer, request, uploadError(err))
		return
	}
	defer request.MultipartForm.RemoveAll()

	part, header, err := request.FormFile(constants.UploadFormField)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(constants.UploadFormField, "A file is required"))
		return
	}
	defer part.Close()

	file, err := handler.service.Upload(request.Context(), principal, UploadInput{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     part,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, uploadResponse{Message: "File uploaded successfully", File: file})
}

func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	files, err := handler.service.ListMine(request.Context(), principal)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, files)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	fileID, err := requestutil.ID(request, "fileId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	file, err := handler.service.Get(request.Context(), principal, fileID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, file)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	fileID, err := requestutil.ID(request, "fileId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), principal, fileID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "File deleted successfully.")
}

// download streams a stored file. The route is public, so no principal is read.
func (handler *Handler) download(writer http.ResponseWriter, request *http.Request) {
	file, content, err := handler.service.Open(request.Context(), requestutil.Param(request, "fileName"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer content.Close()

	respond.Attachment(writer, request, file.FileName, file.MimeType, file.CreatedAt, content)
}

// uploadError maps multipart parsing failures to client errors.
func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.ValidationError("Upload exceeds the maximum allowed size",
			apperr.FieldError{Field: constants.UploadFormField, Message: "File is too large"})
	}
	return validate.RequiredError(constants.UploadFormField, "Request must be multipart/form-data")
}
