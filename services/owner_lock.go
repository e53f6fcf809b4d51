package services

import (
	"context"
	"sync"
)

// OwnerLocker serializes operations per owner. The returned unlock must be
// called exactly once.
type OwnerLocker interface {
	Lock(ctx context.Context, ownerID string) (func(), error)
}

// LocalOwnerLocks keeps one in-process lock per owner, created lazily.
type LocalOwnerLocks struct {
	locks map[string]chan struct{}
	mutex sync.RWMutex
}

var _ OwnerLocker = (*LocalOwnerLocks)(nil)

// NewLocalOwnerLocks creates an empty lock table
func NewLocalOwnerLocks() *LocalOwnerLocks {
	return &LocalOwnerLocks{locks: make(map[string]chan struct{})}
}

// Lock blocks until the owner's lock is free or ctx is done.
func (l *LocalOwnerLocks) Lock(ctx context.Context, ownerID string) (func(), error) {
	sem := l.get(ownerID)
	select {
	case sem <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-sem }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *LocalOwnerLocks) get(ownerID string) chan struct{} {
	l.mutex.RLock()
	sem, exists := l.locks[ownerID]
	l.mutex.RUnlock()
	if exists {
		return sem
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	// Check again if another goroutine created it
	if sem, exists := l.locks[ownerID]; exists {
		return sem
	}
	sem = make(chan struct{}, 1)
	l.locks[ownerID] = sem
	return sem
}
