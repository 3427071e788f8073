// Package rwlock provides a reader/writer lock whose acquisition honours
// context cancellation.
package rwlock

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// maxReaders is the semaphore capacity; a writer takes all of it.
const maxReaders = 1 << 30

// RWLock is a FIFO reader/writer lock. A waiting writer blocks readers that
// arrive after it. The zero value is not usable; call New.
type RWLock struct {
	sem *semaphore.Weighted
}

func New() *RWLock {
	return &RWLock{sem: semaphore.NewWeighted(maxReaders)}
}

// Lock acquires exclusive ownership. The returned release func is idempotent.
func (l *RWLock) Lock(ctx context.Context) (release func(), err error) {
	return l.acquire(ctx, maxReaders)
}

// RLock acquires shared ownership.
func (l *RWLock) RLock(ctx context.Context) (release func(), err error) {
	return l.acquire(ctx, 1)
}

func (l *RWLock) acquire(ctx context.Context, n int64) (func(), error) {
	if err := l.sem.Acquire(ctx, n); err != nil {
		return nil, err
	}
	return l.releaser(n), nil
}

func (l *RWLock) releaser(n int64) func() {
	var once sync.Once
	return func() { once.Do(func() { l.sem.Release(n) }) }
}
