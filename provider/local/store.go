package local

import (
	"sync"
	"time"
)

// ByteStore is the value storage behind a Local backend.
// Must be safe for concurrent use and byte-for-byte transparent.
type ByteStore interface {
	Get(key string) ([]byte, bool)
	// Set returns false when the store rejected the write under pressure.
	Set(key string, value []byte, ttl time.Duration) bool
	Del(key string)
	Clear()
	Close() error
}

type mapEntry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

// MapStore is a plain TTL map. Expired entries are dropped on read.
type MapStore struct {
	mu sync.RWMutex
	m  map[string]mapEntry
}

var _ ByteStore = (*MapStore)(nil)

func NewMapStore() *MapStore { return &MapStore{m: make(map[string]mapEntry)} }

func (s *MapStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		s.mu.Lock()
		if cur, ok := s.m[key]; ok && cur.exp.Equal(e.exp) {
			delete(s.m, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.v, true
}

func (s *MapStore) Set(key string, value []byte, ttl time.Duration) bool {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.m[key] = mapEntry{v: value, exp: exp}
	s.mu.Unlock()
	return true
}

func (s *MapStore) Del(key string) {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
}

func (s *MapStore) Clear() {
	s.mu.Lock()
	s.m = make(map[string]mapEntry)
	s.mu.Unlock()
}

func (s *MapStore) Close() error { return nil }
