// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package migration applies the SQL files under data/migrations with
golang-migrate. The API runs it once at startup, before serving traffic, so
the users, books and files tables always exist when a request arrives.
*/
package migration

import (
	stdcontext "context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirty means a previous run failed halfway and the schema needs a manual fix.
var ErrDirty = errors.New("migration: database is dirty")

/*
RunUp applies every pending up migration.

A cancelled context asks golang-migrate to stop after the file it is
currently applying.

Parameters:
  - context: bounds the run
  - dsn: postgres:// URL or pgx5:// URL
  - dir: directory holding NNNNNN_name.up.sql / .down.sql pairs
  - logger: receives migration_* events

Returns:
  - error: [ErrDirty], or a wrapped driver or SQL failure
*/
func RunUp(context stdcontext.Context, dsn, dir string, logger *slog.Logger) error {
	migrator, err := open(dsn, dir, logger)
	if err != nil {
		return err
	}
	defer closeMigrator(migrator, logger)

	from, err := version(migrator)
	if err != nil {
		return err
	}

	stop := stdcontext.AfterFunc(context, func() { migrator.GracefulStop <- true })
	defer stop()

	logger.Info("migration_started", slog.Uint64("version", uint64(from)))

	switch err := migrator.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("migration_up_to_date", slog.Uint64("version", uint64(from)))
		return nil
	case err != nil:
		return fmt.Errorf("migration: up failed: %w", err)
	}

	to, _ := version(migrator)
	logger.Info("migration_applied",
		slog.Uint64("from_version", uint64(from)),
		slog.Uint64("to_version", uint64(to)),
	)
	return nil
}

func open(dsn, dir string, logger *slog.Logger) (*migrate.Migrate, error) {
	absolute, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("migration: resolve %s: %w", dir, err)
	}

	migrator, err := migrate.New("file://"+filepath.ToSlash(absolute), pgx5URL(dsn))
	if err != nil {
		return nil, fmt.Errorf("migration: init: %w", err)
	}
	migrator.Log = slogBridge{logger: logger}
	return migrator, nil
}

// version is zero for a database that has never been migrated.
func version(migrator *migrate.Migrate) (uint, error) {
	current, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("migration: read version: %w", err)
	}
	if dirty {
		return current, fmt.Errorf("%w at version %d", ErrDirty, current)
	}
	return current, nil
}

func closeMigrator(migrator *migrate.Migrate, logger *slog.Logger) {
	sourceErr, databaseErr := migrator.Close()
	if err := errors.Join(sourceErr, databaseErr); err != nil {
		logger.Error("migration_close_failed", slog.Any("error", err))
	}
}

// pgx5URL swaps a postgres scheme for the one the pgx/v5 driver registers.
func pgx5URL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, found := strings.CutPrefix(dsn, prefix); found {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// slogBridge satisfies migrate.Logger. Steps are only printed at debug level.
type slogBridge struct {
	logger *slog.Logger
}

func (bridge slogBridge) Printf(format string, args ...any) {
	bridge.logger.Debug("migration_step", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (bridge slogBridge) Verbose() bool {
	return bridge.logger.Enabled(stdcontext.Background(), slog.LevelDebug)
}
