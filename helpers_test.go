package checkcache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pr "github.com/unkn0wn-root/checkcache/provider"
	"github.com/unkn0wn-root/checkcache/provider/local"
)

type userResult struct {
	ResponseBase
	Name string `json:"name" msgpack:"name"`
}

func (u *userResult) Clone() *userResult {
	c := *u
	c.ResponseBase = u.CloneBase()
	return &c
}

var _ Tier[*userResult] = (*Cache[*userResult])(nil)

func newTestService(t *testing.T, b pr.Backend, mutate func(*Options)) *Service {
	t.Helper()
	opts := Options{Backend: b}
	if mutate != nil {
		mutate(&opts)
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

// countingExec returns an executable that builds a user named name and
// counts its invocations.
func countingExec(key, name string, calls *atomic.Int64, delay time.Duration) Executable[*userResult] {
	return NewExecutable(key, func(ctx context.Context) (*userResult, error) {
		calls.Add(1)
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		r := &userResult{Name: name}
		r.Track("db", 5*time.Millisecond)
		return r, nil
	})
}

type hookEvent struct {
	kind string
	op   string
	key  string
	err  error
}

type recordingHooks struct {
	mu     sync.Mutex
	events []hookEvent
}

func (h *recordingHooks) add(e hookEvent) {
	h.mu.Lock()
	h.events = append(h.events, e)
	h.mu.Unlock()
}

func (h *recordingHooks) CacheFault(op, key string, err error) {
	h.add(hookEvent{kind: "fault", op: op, key: key, err: err})
}
func (h *recordingHooks) DecodeFailed(k string, err error) {
	h.add(hookEvent{kind: "decode", key: k, err: err})
}
func (h *recordingHooks) ExecuteFailed(k string, err error) {
	h.add(hookEvent{kind: "execute", key: k, err: err})
}
func (h *recordingHooks) EndpointUnreachable(ep string, err error) {
	h.add(hookEvent{kind: "endpoint", key: ep, err: err})
}

func (h *recordingHooks) count(kind string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

// failingSetBackend rejects every value write; sets and reads pass through.
type failingSetBackend struct {
	pr.Backend
	err error
}

func (b failingSetBackend) Set(context.Context, string, string, time.Duration, pr.WriteMode) error {
	return b.err
}

// recordingBackend counts every call that reaches the wrapped backend.
type recordingBackend struct {
	inner pr.Backend
	calls atomic.Int64
}

var _ pr.Backend = (*recordingBackend)(nil)

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{inner: local.New(local.Config{})}
}

func (b *recordingBackend) Get(ctx context.Context, key string) (string, bool, error) {
	b.calls.Add(1)
	return b.inner.Get(ctx, key)
}
func (b *recordingBackend) Set(ctx context.Context, key, value string, ttl time.Duration, mode pr.WriteMode) error {
	b.calls.Add(1)
	return b.inner.Set(ctx, key, value, ttl, mode)
}
func (b *recordingBackend) Exists(ctx context.Context, key string) (bool, error) {
	b.calls.Add(1)
	return b.inner.Exists(ctx, key)
}
func (b *recordingBackend) Del(ctx context.Context, key string, mode pr.WriteMode) error {
	b.calls.Add(1)
	return b.inner.Del(ctx, key, mode)
}
func (b *recordingBackend) SAdd(ctx context.Context, set, member string, mode pr.WriteMode) error {
	b.calls.Add(1)
	return b.inner.SAdd(ctx, set, member, mode)
}
func (b *recordingBackend) SRem(ctx context.Context, set, member string, mode pr.WriteMode) error {
	b.calls.Add(1)
	return b.inner.SRem(ctx, set, member, mode)
}
func (b *recordingBackend) SMembers(ctx context.Context, set string) ([]string, error) {
	b.calls.Add(1)
	return b.inner.SMembers(ctx, set)
}
func (b *recordingBackend) Endpoints(ctx context.Context) ([]string, error) {
	b.calls.Add(1)
	return b.inner.Endpoints(ctx)
}
func (b *recordingBackend) FlushAll(ctx context.Context, ep string) error {
	b.calls.Add(1)
	return b.inner.FlushAll(ctx, ep)
}
func (b *recordingBackend) Info(ctx context.Context, ep string) (pr.Info, error) {
	b.calls.Add(1)
	return b.inner.Info(ctx, ep)
}
func (b *recordingBackend) Keys(ctx context.Context, ep string) ([]string, error) {
	b.calls.Add(1)
	return b.inner.Keys(ctx, ep)
}
func (b *recordingBackend) LockingEnabled() bool { return b.inner.LockingEnabled() }
func (b *recordingBackend) Close(ctx context.Context) error {
	return b.inner.Close(ctx)
}

// infoBackend serves canned diagnostics per endpoint on top of a Local.
type infoBackend struct {
	*local.Local
	endpoints []string
	info      map[string]pr.Info
	errs      map[string]error
}

func (b *infoBackend) Endpoints(context.Context) ([]string, error) { return b.endpoints, nil }

func (b *infoBackend) Info(_ context.Context, ep string) (pr.Info, error) {
	if err := b.errs[ep]; err != nil {
		return nil, err
	}
	return b.info[ep], nil
}
