package locks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barbergrid/api/internal/apperr"
)

func TestLocalLockerAcquireRelease(t *testing.T) {
	locker := NewLocalLocker()

	release, err := locker.Acquire(context.Background(), 1, time.Second)
	require.NoError(t, err)
	release()

	// Released lock can be taken again.
	release, err = locker.Acquire(context.Background(), 1, time.Second)
	require.NoError(t, err)
	release()
}

func TestLocalLockerBoundedWait(t *testing.T) {
	locker := NewLocalLocker()

	release, err := locker.Acquire(context.Background(), 1, time.Second)
	require.NoError(t, err)
	defer release()

	// Second acquire on the same staff member times out with a retryable
	// conflict instead of hanging.
	start := time.Now()
	_, err = locker.Acquire(context.Background(), 1, 50*time.Millisecond)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	var ce apperr.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.True(t, ce.Retryable)
}

func TestLocalLockerPerStaffIndependence(t *testing.T) {
	locker := NewLocalLocker()

	release1, err := locker.Acquire(context.Background(), 1, time.Second)
	require.NoError(t, err)
	defer release1()

	// A different staff member's lock is free.
	release2, err := locker.Acquire(context.Background(), 2, 50*time.Millisecond)
	require.NoError(t, err)
	release2()
}

func TestLocalLockerContention(t *testing.T) {
	locker := NewLocalLocker()

	var mu sync.Mutex
	inSection := 0
	maxInSection := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			release, err := locker.Acquire(context.Background(), 7, 5*time.Second)
			if err != nil {
				return
			}
			defer release()

			mu.Lock()
			inSection++
			if inSection > maxInSection {
				maxInSection = inSection
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inSection--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInSection, "critical section must hold one holder at a time")
}

func TestLocalLockerCancelledContext(t *testing.T) {
	locker := NewLocalLocker()

	release, err := locker.Acquire(context.Background(), 1, time.Second)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = locker.Acquire(ctx, 1, time.Minute)
	assert.True(t, apperr.IsConflict(err))
}
