// Package local implements an in-process provider.Backend, typically used as
// the fast secondary tier in front of a shared redis primary, or in tests.
//
// Values live in a pluggable ByteStore (map, ristretto, bigcache); set
// membership and the key index live next to it under one mutex.
package local

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	pr "github.com/unkn0wn-root/checkcache/provider"
)

// Endpoint is the only endpoint a Local backend reports.
const Endpoint = "local"

var ErrUnknownEndpoint = errors.New("local provider: unknown endpoint")

type Config struct {
	Store ByteStore // nil => MapStore
	// MaxBytes is reported as the storage ceiling in diagnostics. 0 = unlimited.
	MaxBytes int64
	// DisableLocking turns off in-process compute locking for caches on top.
	DisableLocking bool
}

type Local struct {
	cfg   Config
	store ByteStore

	mu   sync.RWMutex
	keys map[string]keyMeta // value keys known to the store
	sets map[string]map[string]struct{}
}

type keyMeta struct {
	size int
	exp  time.Time
}

var _ pr.Backend = (*Local)(nil)

func New(cfg Config) *Local {
	s := cfg.Store
	if s == nil {
		s = NewMapStore()
	}
	return &Local{
		cfg:   cfg,
		store: s,
		keys:  make(map[string]keyMeta),
		sets:  make(map[string]map[string]struct{}),
	}
}

func (l *Local) Get(_ context.Context, key string) (string, bool, error) {
	b, ok := l.store.Get(key)
	if !ok {
		l.forget(key)
		return "", false, nil
	}
	return string(b), true, nil
}

// Set ignores mode: in-process writes complete before returning either way.
func (l *Local) Set(_ context.Context, key, value string, ttl time.Duration, _ pr.WriteMode) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, isSet := l.sets[key]; isSet {
		return fmt.Errorf("local provider: %q holds a set", key)
	}
	if !l.store.Set(key, []byte(value), ttl) {
		delete(l.keys, key)
		return fmt.Errorf("local provider: store rejected %q", key)
	}
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	l.keys[key] = keyMeta{size: len(value), exp: exp}
	return nil
}

func (l *Local) Exists(_ context.Context, key string) (bool, error) {
	l.mu.RLock()
	_, isSet := l.sets[key]
	l.mu.RUnlock()
	if isSet {
		return true, nil
	}
	if _, ok := l.store.Get(key); ok {
		return true, nil
	}
	l.forget(key)
	return false, nil
}

func (l *Local) Del(_ context.Context, key string, _ pr.WriteMode) error {
	l.mu.Lock()
	l.store.Del(key)
	delete(l.keys, key)
	delete(l.sets, key)
	l.mu.Unlock()
	return nil
}

func (l *Local) SAdd(_ context.Context, set, member string, _ pr.WriteMode) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, isValue := l.keys[set]; isValue {
		return fmt.Errorf("local provider: %q holds a value", set)
	}
	m, ok := l.sets[set]
	if !ok {
		m = make(map[string]struct{})
		l.sets[set] = m
	}
	m[member] = struct{}{}
	return nil
}

// SRem drops member; an emptied set disappears, as in redis.
func (l *Local) SRem(_ context.Context, set, member string, _ pr.WriteMode) error {
	l.mu.Lock()
	if m, ok := l.sets[set]; ok {
		delete(m, member)
		if len(m) == 0 {
			delete(l.sets, set)
		}
	}
	l.mu.Unlock()
	return nil
}

func (l *Local) SMembers(_ context.Context, set string) ([]string, error) {
	l.mu.RLock()
	m := l.sets[set]
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	l.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

func (l *Local) Endpoints(context.Context) ([]string, error) { return []string{Endpoint}, nil }

func (l *Local) FlushAll(_ context.Context, endpoint string) error {
	if endpoint != Endpoint {
		return ErrUnknownEndpoint
	}
	l.mu.Lock()
	l.store.Clear()
	l.keys = make(map[string]keyMeta)
	l.sets = make(map[string]map[string]struct{})
	l.mu.Unlock()
	return nil
}

// Info reports redis-shaped Memory and Keyspace sections so the same stats
// parsing applies to every backend.
func (l *Local) Info(_ context.Context, endpoint string) (pr.Info, error) {
	if endpoint != Endpoint {
		return nil, ErrUnknownEndpoint
	}
	l.prune()

	l.mu.RLock()
	var used, expires int64
	for _, m := range l.keys {
		used += int64(m.size)
		if !m.exp.IsZero() {
			expires++
		}
	}
	total := int64(len(l.keys) + len(l.sets))
	l.mu.RUnlock()

	return pr.Info{
		{Name: "Memory", Fields: []pr.Field{
			{Key: "used_memory", Value: fmt.Sprint(used)},
			{Key: "used_memory_human", Value: humanize.IBytes(uint64(used))},
			{Key: "used_memory_peak", Value: fmt.Sprint(used)},
			{Key: "maxmemory", Value: fmt.Sprint(l.cfg.MaxBytes)},
		}},
		{Name: "Keyspace", Fields: []pr.Field{
			{Key: "db0", Value: fmt.Sprintf("keys=%d,expires=%d,avg_ttl=0", total, expires)},
		}},
	}, nil
}

func (l *Local) Keys(_ context.Context, endpoint string) ([]string, error) {
	if endpoint != Endpoint {
		return nil, ErrUnknownEndpoint
	}
	l.prune()

	l.mu.RLock()
	out := make([]string, 0, len(l.keys)+len(l.sets))
	for k := range l.keys {
		out = append(out, k)
	}
	for k := range l.sets {
		out = append(out, k)
	}
	l.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

func (l *Local) LockingEnabled() bool { return !l.cfg.DisableLocking }

func (l *Local) Close(context.Context) error { return l.store.Close() }

// forget drops key from the index once the store no longer has it
// (expired or evicted).
func (l *Local) forget(key string) {
	l.mu.Lock()
	if _, ok := l.store.Get(key); !ok {
		delete(l.keys, key)
	}
	l.mu.Unlock()
}

func (l *Local) prune() {
	l.mu.Lock()
	for k := range l.keys {
		if _, ok := l.store.Get(k); !ok {
			delete(l.keys, k)
		}
	}
	l.mu.Unlock()
}
