package ristretto

import (
	"context"
	"testing"
	"time"

	pr "github.com/unkn0wn-root/checkcache/provider"
	"github.com/unkn0wn-root/checkcache/provider/local"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{NumCounters: 1e4, MaxCost: 1 << 20, BufferItems: 64, Metrics: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInvalidConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for zero config")
	}
}

func TestStoreBehindLocal(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	l := local.New(local.Config{Store: s})

	if err := l.Set(ctx, "users-user-1", "payload", time.Minute, pr.Acknowledged); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok, err := l.Get(ctx, "users-user-1"); err != nil || !ok || v != "payload" {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}
	if err := l.Del(ctx, "users-user-1", pr.Acknowledged); err != nil {
		t.Fatal(err)
	}
	if ok, _ := l.Exists(ctx, "users-user-1"); ok {
		t.Fatalf("key survived Del")
	}
	if s.Metrics() == nil {
		t.Fatalf("metrics requested but nil")
	}
}

func TestClear(t *testing.T) {
	s := newStore(t)
	if !s.Set("a", []byte("1"), 0) {
		t.Fatalf("Set rejected")
	}
	s.Clear()
	if _, ok := s.Get("a"); ok {
		t.Fatalf("entry survived Clear")
	}
}
