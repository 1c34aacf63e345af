// Package lock serialises payout cycles within one process or across
// processes sharing a database.
package lock

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrHeld is returned by TryLock when another holder has the lock.
	ErrHeld = errors.New("lock is held by another cycle")
	// ErrLost is returned by an unlock whose lease expired or was taken
	// over before it was released.
	ErrLost = errors.New("lock lease was lost")
)

// UnlockFunc releases a lock obtained from TryLock.
type UnlockFunc func(ctx context.Context) error

// Locker hands out one lock at a time without blocking.
type Locker interface {
	TryLock(ctx context.Context) (UnlockFunc, error)
}

// Local is an in-process Locker.
type Local struct {
	mu sync.Mutex
}

// NewLocal returns an unlocked Local.
func NewLocal() *Local {
	return &Local{}
}

// TryLock takes the lock or returns ErrHeld.
func (l *Local) TryLock(context.Context) (UnlockFunc, error) {
	if !l.mu.TryLock() {
		return nil, ErrHeld
	}
	var once sync.Once
	return func(context.Context) error {
		once.Do(l.mu.Unlock)
		return nil
	}, nil
}
