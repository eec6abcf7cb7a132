// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package file

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/bookhub/internal/platform/dberr"
	"github.com/taibuivan/bookhub/internal/platform/postgres"
)

const fileColumns = `id, file_name, stored_name, mime_type, size_bytes, uploader_id, download_url, is_used, created_at`

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db postgres.Querier
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanFile(row pgx.Row) (*File, error) {
	file := &File{}
	err := row.Scan(
		&file.ID,
		&file.FileName,
		&file.StoredName,
		&file.MimeType,
		&file.Size,
		&file.UploaderID,
		&file.DownloadURL,
		&file.IsUsed,
		&file.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Create inserts the metadata row of a stored upload.
func (repository *PostgresRepository) Create(context context.Context, file *File) error {
	const query = `
		INSERT INTO files (file_name, stored_name, mime_type, size_bytes, uploader_id, download_url, is_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := repository.db.QueryRow(context, query,
		file.FileName,
		file.StoredName,
		file.MimeType,
		file.Size,
		file.UploaderID,
		file.DownloadURL,
		file.IsUsed,
	).Scan(&file.ID, &file.CreatedAt)

	return dberr.Wrap(err, "File")
}

// FindByID retrieves upload metadata by its ID.
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*File, error) {
	file, err := scanFile(repository.db.QueryRow(context, `SELECT `+fileColumns+` FROM files WHERE id = $1`, id))
	if err != nil {
		return nil, dberr.Wrap(err, "File")
	}
	return file, nil
}

// FindByStoredName resolves the public download name.
func (repository *PostgresRepository) FindByStoredName(context context.Context, storedName string) (*File, error) {
	file, err := scanFile(repository.db.QueryRow(context, `SELECT `+fileColumns+` FROM files WHERE stored_name = $1`, storedName))
	if err != nil {
		return nil, dberr.Wrap(err, "File")
	}
	return file, nil
}

// ListByUploader returns every file the account uploaded.
func (repository *PostgresRepository) ListByUploader(context context.Context, uploaderID int64) ([]*File, error) {
	const query = `SELECT ` + fileColumns + ` FROM files WHERE uploader_id = $1 ORDER BY id DESC`
	return repository.list(context, "list_user_files_failed", query, uploaderID)
}

// MarkUsed sets is_used on the file with the given download URL.
func (repository *PostgresRepository) MarkUsed(context context.Context, downloadURL string) (bool, error) {
	command, err := repository.db.Exec(context, `UPDATE files SET is_used = TRUE WHERE download_url = $1`, downloadURL)
	if err != nil {
		return false, fmt.Errorf("mark_file_used_failed: %w", err)
	}
	return command.RowsAffected() > 0, nil
}

// ListUnused returns cleanup candidates, oldest first.
func (repository *PostgresRepository) ListUnused(context context.Context, createdBefore time.Time) ([]*File, error) {
	const query = `SELECT ` + fileColumns + ` FROM files WHERE is_used = FALSE AND created_at < $1 ORDER BY id ASC`
	return repository.list(context, "list_unused_files_failed", query, createdBefore)
}

// Delete removes a metadata row.
func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	command, err := repository.db.Exec(context, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "File")
	}
	if command.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "File")
	}
	return nil
}

func (repository *PostgresRepository) list(context context.Context, event, query string, args ...any) ([]*File, error) {
	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", event, err)
	}
	defer rows.Close()

	files := []*File{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan_file_failed: %w", err)
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", event, err)
	}
	return files, nil
}
