// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package file

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Storage keeps upload bytes under a flat namespace of stored names.
type Storage interface {
	// Save writes content under name and returns the number of bytes written.
	// It fails if name already exists.
	Save(name string, content io.Reader) (int64, error)

	// Open returns the content for streaming. Missing names wrap [fs.ErrNotExist].
	Open(name string) (io.ReadSeekCloser, error)

	// Remove deletes name. A missing name is not an error.
	Remove(name string) error
}

// LocalStorage stores uploads in one directory on the local disk.
//
// All access goes through an [os.Root], so a name containing ".." or an
// absolute path cannot reach outside the directory.
type LocalStorage struct {
	root *os.Root
}

// NewLocalStorage creates dir if needed and opens it as the storage root.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", dir, err)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", dir, err)
	}
	return &LocalStorage{root: root}, nil
}

// Save implements [Storage]. A partial write is removed.
func (storage *LocalStorage) Save(name string, content io.Reader) (int64, error) {
	target, err := storage.root.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("storage: create %s: %w", name, err)
	}

	written, copyErr := io.Copy(target, content)
	closeErr := target.Close()

	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = storage.root.Remove(name)
		return 0, fmt.Errorf("storage: write %s: %w", name, err)
	}
	return written, nil
}

// Open implements [Storage].
func (storage *LocalStorage) Open(name string) (io.ReadSeekCloser, error) {
	opened, err := storage.root.Open(name)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", name, err)
	}
	return opened, nil
}

// Remove implements [Storage].
func (storage *LocalStorage) Remove(name string) error {
	if err := storage.root.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove %s: %w", name, err)
	}
	return nil
}

// Close releases the directory handle.
func (storage *LocalStorage) Close() error {
	return storage.root.Close()
}
