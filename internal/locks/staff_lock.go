// Package locks provides the per-staff critical section held across the
// booking guard's recheck-then-commit span. One logical lock per staff
// member: bookings for different staff never contend.
package locks

import (
	"context"
	"sync"
	"time"

	"github.com/barbergrid/api/internal/apperr"
)

// Releaser releases a held lock. Safe to call exactly once.
type Releaser func()

// StaffLocker serializes bookings per staff member. Acquire blocks for at
// most wait; on timeout it returns a retryable ConflictError instead of
// hanging.
type StaffLocker interface {
	Acquire(ctx context.Context, staffID uint, wait time.Duration) (Releaser, error)
}

// ErrLockTimeout is the outcome of a bounded wait that expired.
func errLockTimeout() error {
	return apperr.RetryableConflict("booking_lock_timeout")
}

// ===============================
// In-process locker
// ===============================

// LocalLocker is the single-instance implementation: one binary semaphore per
// staff id. Used directly in tests and as fallback when Redis is not
// configured.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[uint]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[uint]chan struct{})}
}

func (l *LocalLocker) slot(staffID uint) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.slots[staffID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[staffID] = ch
	}
	return ch
}

func (l *LocalLocker) Acquire(
	ctx context.Context,
	staffID uint,
	wait time.Duration,
) (Releaser, error) {

	ch := l.slot(staffID)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-timer.C:
		return nil, errLockTimeout()
	case <-ctx.Done():
		return nil, errLockTimeout()
	}
}
