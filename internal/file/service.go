// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/taibuivan/bookhub/internal/platform/apperr"
	"github.com/taibuivan/bookhub/internal/platform/constants"
	"github.com/taibuivan/bookhub/internal/platform/policy"
	"github.com/taibuivan/bookhub/internal/platform/sec"
	"github.com/taibuivan/bookhub/pkg/slug"
	"github.com/taibuivan/bookhub/pkg/uuid"
)

// sniffLength is how many bytes [http.DetectContentType] considers.
const sniffLength = 512

// Service implements upload, download and cleanup use cases.
type Service struct {
	repo    Repository
	storage Storage
	baseURL string
	logger  *slog.Logger
	now     func() time.Time
}

// NewService constructs a new [Service].
//
// baseURL is the public origin used to build download URLs, without a trailing slash.
func NewService(repo Repository, storage Storage, baseURL string, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		storage: storage,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// DownloadURL returns the public URL of a stored name.
func (service *Service) DownloadURL(storedName string) string {
	return service.baseURL + constants.DownloadPathPrefix + storedName
}

/*
Upload stores a new file for the caller.

The bytes are written first. If the metadata insert then fails, the bytes are
removed again so disk and table stay in step.

Parameters:
  - context: context.Context
  - principal: The uploader
  - input: UploadInput

Returns:
  - *File: The stored metadata, with IsUsed=false
  - error: TOKEN_MISSING or storage failures
*/
func (service *Service) Upload(context context.Context, principal *sec.Principal, input UploadInput) (*File, error) {
	if err := policy.CanUploadFile(principal); err != nil {
		return nil, err
	}

	displayName := slug.FileName(input.Name)
	storedName := uuid.New() + "-" + displayName

	content := bufio.NewReaderSize(input.Content, sniffLength)
	mimeType := detectMimeType(input.ContentType, content)

	size, err := service.storage.Save(storedName, content)
	if err != nil {
		return nil, fmt.Errorf("file_store_failed: %w", err)
	}

	file := &File{
		FileName:    displayName,
		StoredName:  storedName,
		MimeType:    mimeType,
		Size:        size,
		UploaderID:  principal.ID,
		DownloadURL: service.DownloadURL(storedName),
	}

	if err := service.repo.Create(context, file); err != nil {
		if removeErr := service.storage.Remove(storedName); removeErr != nil {
			service.logger.Error("file_orphan_left", slog.String("stored_name", storedName), slog.Any("error", removeErr))
		}
		return nil, err
	}

	service.logger.Info("file_uploaded",
		slog.Int64("file_id", file.ID),
		slog.Int64("uploader_id", file.UploaderID),
		slog.Int64("size", file.Size),
		slog.String("mime_type", file.MimeType),
	)
	return file, nil
}

// ListMine returns the caller's uploads.
func (service *Service) ListMine(context context.Context, principal *sec.Principal) ([]*File, error) {
	if principal == nil {
		return nil, apperr.TokenMissing()
	}
	return service.repo.ListByUploader(context, principal.ID)
}

// Get returns the metadata of one of the caller's uploads.
func (service *Service) Get(context context.Context, principal *sec.Principal, id int64) (*File, error) {
	file, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if err := policy.CanReadFile(principal, file.UploaderID); err != nil {
		return nil, err
	}
	return file, nil
}

// Delete removes one of the caller's uploads from disk, then from the table.
func (service *Service) Delete(context context.Context, principal *sec.Principal, id int64) error {
	file, err := service.repo.FindByID(context, id)
	if err != nil {
		return err
	}

	if err := policy.CanDeleteFile(principal, file.UploaderID); err != nil {
		return err
	}

	if err := service.remove(context, file); err != nil {
		return err
	}

	service.logger.Info("file_deleted", slog.Int64("file_id", file.ID))
	return nil
}

// Open resolves a public download name. Unknown names, and rows whose bytes
// are gone, are both reported as NOT_FOUND.
func (service *Service) Open(context context.Context, storedName string) (*File, io.ReadSeekCloser, error) {
	if len(storedName) < 36 || !uuid.Valid(storedName[:36]) {
		return nil, nil, apperr.NotFound("File")
	}

	file, err := service.repo.FindByStoredName(context, storedName)
	if err != nil {
		return nil, nil, err
	}

	content, err := service.storage.Open(file.StoredName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			service.logger.Warn("file_content_missing", slog.Int64("file_id", file.ID))
			return nil, nil, apperr.NotFound("File")
		}
		return nil, nil, fmt.Errorf("file_open_failed: %w", err)
	}
	return file, content, nil
}

// MarkUsed flags the upload behind downloadURL as referenced.
// URLs that do not belong to an upload are ignored.
func (service *Service) MarkUsed(context context.Context, downloadURL string) error {
	found, err := service.repo.MarkUsed(context, downloadURL)
	if err != nil {
		return err
	}
	if !found {
		service.logger.Debug("file_mark_unknown_url", slog.String("url", downloadURL))
	}
	return nil
}

/*
Cleanup removes unused uploads created more than minAge ago.

A file whose bytes cannot be removed keeps its row so the next pass retries it.

Returns:
  - int: Number of files removed
  - error: Listing failure, or the context ending mid-pass
*/
func (service *Service) Cleanup(context context.Context, minAge time.Duration) (int, error) {
	candidates, err := service.repo.ListUnused(context, service.now().Add(-minAge))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, file := range candidates {
		if err := context.Err(); err != nil {
			return removed, err
		}

		if err := service.remove(context, file); err != nil {
			service.logger.Warn("file_cleanup_skipped",
				slog.Int64("file_id", file.ID),
				slog.Any("error", err),
			)
			continue
		}
		removed++
	}

	service.logger.Info("file_cleanup_done",
		slog.Int("candidates", len(candidates)),
		slog.Int("removed", removed),
	)
	return removed, nil
}

func (service *Service) remove(context context.Context, file *File) error {
	if err := service.storage.Remove(file.StoredName); err != nil {
		return fmt.Errorf("file_remove_failed: %w", err)
	}
	return service.repo.Delete(context, file.ID)
}

// detectMimeType trusts a specific client type, otherwise sniffs the first bytes.
func detectMimeType(declared string, content *bufio.Reader) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != DefaultMimeType {
		return mediaType
	}

	head, err := content.Peek(sniffLength)
	if len(head) == 0 && err != nil {
		return DefaultMimeType
	}

	mediaType, _, _ := mime.ParseMediaType(http.DetectContentType(head))
	if mediaType == "" {
		return DefaultMimeType
	}
	return mediaType
}
