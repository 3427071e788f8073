package checkcache

import (
	"context"

	"github.com/unkn0wn-root/checkcache/internal/rwlock"
)

// lockHeldKey marks a context that already runs under a Service's lock, so
// a Check nested inside an executable does not wait on its own caller.
type lockHeldKey struct{ l *rwlock.RWLock }

// exclusive takes the writer lock unless ctx already holds the service lock.
// The returned context carries the mark and must be used inside the section.
func (s *Service) exclusive(ctx context.Context) (context.Context, func(), error) {
	return s.acquire(ctx, s.lock.Lock)
}

// shared takes the reader lock unless ctx already holds the service lock.
func (s *Service) shared(ctx context.Context) (context.Context, func(), error) {
	return s.acquire(ctx, s.lock.RLock)
}

func (s *Service) acquire(ctx context.Context, lock func(context.Context) (func(), error)) (context.Context, func(), error) {
	key := lockHeldKey{l: s.lock}
	if ctx.Value(key) != nil {
		return ctx, func() {}, nil
	}
	release, err := lock(ctx)
	if err != nil {
		return ctx, nil, err
	}
	return context.WithValue(ctx, key, struct{}{}), release, nil
}
