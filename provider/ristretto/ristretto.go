package ristretto

import (
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/checkcache/provider/local"
)

// Store is a local.ByteStore backed by ristretto. Ristretto owns eviction:
// sets may be rejected by its admission policy, which surfaces as a failed
// write on the Local backend and is treated by checkcache as a soft fault.
type Store struct {
	c *rc.Cache
}

var _ local.ByteStore = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64 // bytes; cost per entry is its length
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Get(key string) ([]byte, bool) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		s.c.Del(key)
		return nil, false
	}
	return b, true
}

// Set waits for the write buffer so the value is visible to the next Get.
func (s *Store) Set(key string, value []byte, ttl time.Duration) bool {
	if ttl < 0 {
		ttl = 0
	}
	ok := s.c.SetWithTTL(key, value, int64(len(value)), ttl)
	s.c.Wait()
	return ok
}

func (s *Store) Del(key string) { s.c.Del(key) }

func (s *Store) Clear() { s.c.Clear() }

func (s *Store) Close() error {
	s.c.Wait()
	s.c.Close()
	return nil
}

// Helper to expose metrics if desired by the application.
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }
