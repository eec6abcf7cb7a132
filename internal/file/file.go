// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package file handles uploads: storing bytes on local disk, tracking metadata
in Postgres, serving public downloads and purging uploads nothing references.

# Lifecycle

 1. Upload: the file lands on disk under a unique stored name, with IsUsed=false.
 2. Reference: registration, profile or book updates submit the download URL,
    and [Service.MarkUsed] flips IsUsed.
 3. Cleanup: once a day, unused files older than the configured age are
    removed from disk and from the table.
*/
package file

import (
	"io"
	"time"
)

// # Domain Entities

// File is the metadata of one uploaded blob.
type File struct {
	ID          int64     `json:"id"`
	FileName    string    `json:"fileName"`
	StoredName  string    `json:"-"`
	MimeType    string    `json:"mimeType"`
	Size        int64     `json:"size"`
	UploaderID  int64     `json:"-"`
	DownloadURL string    `json:"downloadUrl"`
	IsUsed      bool      `json:"isUsed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UploadInput is one incoming file.
type UploadInput struct {
	// Name is the client-supplied file name. It is sanitized before use.
	Name string

	// ContentType is the part header. Empty or generic values are sniffed.
	ContentType string

	Content io.Reader
}

// DefaultMimeType is used when neither the client nor sniffing can tell.
const DefaultMimeType = "application/octet-stream"
