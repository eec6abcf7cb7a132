// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package file_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookhub/internal/file"
)

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) Acquire(ctx context.Context) (func(context.Context) error, bool, error) {
	args := m.Called(ctx)
	release, _ := args.Get(0).(func(context.Context) error)
	return release, args.Bool(1), args.Error(2)
}

/*
TestNextMidnight always lands on the following local day.
*/
func TestNextMidnight(t *testing.T) {
	zone := time.FixedZone("ICT", 7*60*60)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"afternoon", time.Date(2026, 3, 14, 15, 4, 5, 0, zone), time.Date(2026, 3, 15, 0, 0, 0, 0, zone)},
		{"exact_midnight", time.Date(2026, 3, 15, 0, 0, 0, 0, zone), time.Date(2026, 3, 16, 0, 0, 0, 0, zone)},
		{"year_end", time.Date(2026, 12, 31, 23, 59, 59, 0, zone), time.Date(2027, 1, 1, 0, 0, 0, 0, zone)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(file.NextMidnight(tt.now)))
		})
	}
}

/*
TestCleaner_RunOnce runs the pass only while holding the lease, and leaves
the lease to expire on its TTL.
*/
func TestCleaner_RunOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("acquired", func(t *testing.T) {
		f := newFixture(t)
		f.repo.Now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
		stale := f.upload(t, owner, "stale.txt", "x")

		released := false
		locker := &mockLocker{}
		locker.On("Acquire", mock.Anything).Return(func(context.Context) error {
			released = true
			return nil
		}, true, nil).Once()

		cleaner := file.NewCleaner(f.service, locker, time.Hour, discarded)
		require.NoError(t, cleaner.RunOnce(ctx))

		assert.False(t, released)
		_, err := f.repo.FindByID(ctx, stale.ID)
		assert.Error(t, err)
		locker.AssertExpectations(t)
	})

	t.Run("second_pass_same_night", func(t *testing.T) {
		f := newFixture(t)
		locker := &mockLocker{}
		locker.On("Acquire", mock.Anything).Return(func(context.Context) error { return nil }, true, nil).Once()
		locker.On("Acquire", mock.Anything).Return(nil, false, nil).Once()

		cleaner := file.NewCleaner(f.service, locker, time.Hour, discarded)
		require.NoError(t, cleaner.RunOnce(ctx))

		f.repo.Now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
		stale := f.upload(t, owner, "late.txt", "x")

		require.NoError(t, cleaner.RunOnce(ctx))
		_, err := f.repo.FindByID(ctx, stale.ID)
		assert.NoError(t, err)
		locker.AssertExpectations(t)
	})

	t.Run("held_elsewhere", func(t *testing.T) {
		f := newFixture(t)
		f.repo.Now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
		stale := f.upload(t, owner, "stale.txt", "x")

		locker := &mockLocker{}
		locker.On("Acquire", mock.Anything).Return(nil, false, nil).Once()

		cleaner := file.NewCleaner(f.service, locker, time.Hour, discarded)
		require.NoError(t, cleaner.RunOnce(ctx))

		_, err := f.repo.FindByID(ctx, stale.ID)
		assert.NoError(t, err)
	})

	t.Run("lock_error", func(t *testing.T) {
		f := newFixture(t)
		locker := &mockLocker{}
		locker.On("Acquire", mock.Anything).Return(nil, false, errors.New("redis down")).Once()

		cleaner := file.NewCleaner(f.service, locker, time.Hour, discarded)
		assert.EqualError(t, cleaner.RunOnce(ctx), "redis down")
	})
}

/*
TestCleaner_Run returns once its context is cancelled.
*/
func TestCleaner_Run(t *testing.T) {
	f := newFixture(t)
	cleaner := file.NewCleaner(f.service, nil, time.Hour, discarded)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cleaner.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleaner did not stop after cancellation")
	}
}
