package bigcache

import (
	"context"
	"testing"
	"time"

	pr "github.com/unkn0wn-root/checkcache/provider"
	"github.com/unkn0wn-root/checkcache/provider/local"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{LifeWindow: 10 * time.Minute, Shards: 16})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreBehindLocal(t *testing.T) {
	ctx := context.Background()
	l := local.New(local.Config{Store: newStore(t)})

	if err := l.Set(ctx, "k", "v", 0, pr.Acknowledged); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok, _ := l.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
	if err := l.FlushAll(ctx, local.Endpoint); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := l.Get(ctx, "k"); ok {
		t.Fatalf("entry survived FlushAll")
	}
}

func TestDelMissingIsNoop(t *testing.T) {
	s := newStore(t)
	s.Del("never-set")
	if _, ok := s.Get("never-set"); ok {
		t.Fatalf("unexpected hit")
	}
}
