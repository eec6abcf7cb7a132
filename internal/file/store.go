// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package file

import (
	"context"
	"time"
)

// Repository defines persistence operations for upload metadata.
type Repository interface {
	Create(context context.Context, file *File) error
	FindByID(context context.Context, id int64) (*File, error)
	FindByStoredName(context context.Context, storedName string) (*File, error)

	// ListByUploader returns the caller's files, newest first.
	ListByUploader(context context.Context, uploaderID int64) ([]*File, error)

	// MarkUsed flags the file with this download URL. It reports false when no file matches.
	MarkUsed(context context.Context, downloadURL string) (bool, error)

	// ListUnused returns unreferenced files created before the cutoff.
	ListUnused(context context.Context, createdBefore time.Time) ([]*File, error)

	Delete(context context.Context, id int64) error
}
