// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package file

import (
	"context"
	"log/slog"
	"time"
)

// Locker is a lease shared by every replica. [redis.Lock] implements it.
type Locker interface {
	Acquire(context context.Context) (release func(context.Context) error, acquired bool, err error)
}

// Cleaner runs [Service.Cleanup] once a day at local midnight.
type Cleaner struct {
	service *Service
	locker  Locker
	minAge  time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewCleaner builds the daily job. locker may be nil on a single replica.
func NewCleaner(service *Service, locker Locker, minAge time.Duration, logger *slog.Logger) *Cleaner {
	return &Cleaner{
		service: service,
		locker:  locker,
		minAge:  minAge,
		logger:  logger,
		now:     time.Now,
	}
}

// Run blocks until context is cancelled, firing one pass per midnight.
func (cleaner *Cleaner) Run(context context.Context) {
	for {
		wait := NextMidnight(cleaner.now()).Sub(cleaner.now())
		timer := time.NewTimer(wait)

		select {
		case <-context.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := cleaner.RunOnce(context); err != nil {
				cleaner.logger.Error("file_cleanup_failed", slog.Any("error", err))
			}
		}
	}
}

// RunOnce performs a single pass if this replica wins the lease.
//
// The lease is never released early. It expires on its own TTL, so a replica
// whose timer fires late still finds it held and skips the night's pass.
func (cleaner *Cleaner) RunOnce(context context.Context) error {
	if cleaner.locker != nil {
		_, acquired, err := cleaner.locker.Acquire(context)
		if err != nil {
			return err
		}
		if !acquired {
			cleaner.logger.Info("file_cleanup_skipped_locked")
			return nil
		}
	}

	_, err := cleaner.service.Cleanup(context, cleaner.minAge)
	return err
}

// NextMidnight returns the first local midnight strictly after now.
func NextMidnight(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day+1, 0, 0, 0, 0, now.Location())
}
