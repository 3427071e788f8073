package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/checkcache/provider"
)

var (
	ErrNilClient = errors.New("redis provider: nil client")
	ErrNoAddress = errors.New("redis provider: no endpoint configured")
)

// AsyncErrorFunc receives failures of fire-and-forget writes.
type AsyncErrorFunc func(op, key string, err error)

type Redis struct {
	cfg Config

	// rdb is created at most once; mu guards creation only.
	rdb   atomic.Pointer[goredis.UniversalClient]
	mu    sync.Mutex
	owned bool

	nodesMu sync.Mutex
	nodes   map[string]*goredis.Client

	// closeMu orders inflight.Add against Close.
	closeMu  sync.RWMutex
	inflight sync.WaitGroup
	closed   atomic.Bool
}

var _ pr.Backend = (*Redis)(nil)

// New validates cfg. The connection is established lazily on first use.
func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil && len(cfg.Addrs) == 0 {
		return nil, ErrNoAddress
	}
	r := &Redis{cfg: cfg, owned: cfg.CloseClient, nodes: make(map[string]*goredis.Client)}
	if cfg.Client != nil {
		c := cfg.Client
		r.rdb.Store(&c)
	}
	return r, nil
}

// NewWithClient wraps an existing client. closeClient=true transfers ownership.
func NewWithClient(client goredis.UniversalClient, closeClient bool) (*Redis, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	return New(Config{Client: client, CloseClient: closeClient})
}

// Connect forces the lazy connection and pings the server.
func (p *Redis) Connect(ctx context.Context) error {
	_, err := p.client(ctx)
	return err
}

func (p *Redis) client(ctx context.Context) (goredis.UniversalClient, error) {
	if c := p.rdb.Load(); c != nil {
		return *c, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if c := p.rdb.Load(); c != nil {
		return *c, nil
	}

	c := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:    p.cfg.Addrs,
		Password: p.cfg.Password,
		DB:       p.cfg.DB,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis provider: connect %v: %w", p.cfg.Addrs, err)
	}
	p.rdb.Store(&c)
	p.owned = true
	return c, nil
}

func (p *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	c, err := p.client(ctx)
	if err != nil {
		return "", false, err
	}
	s, err := c.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil // miss
	}
	if err != nil {
		return "", false, err // transport/server error
	}
	return s, true, nil
}

func (p *Redis) Set(ctx context.Context, key, value string, ttl time.Duration, mode pr.WriteMode) error {
	if ttl <= 0 {
		ttl = 0 // treat non-positive TTLs as "no expiry"
	}
	return p.write(ctx, "set", key, mode, func(ctx context.Context, c goredis.UniversalClient) error {
		return c.Set(ctx, key, value, ttl).Err()
	})
}

func (p *Redis) Exists(ctx context.Context, key string) (bool, error) {
	c, err := p.client(ctx)
	if err != nil {
		return false, err
	}
	n, err := c.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *Redis) Del(ctx context.Context, key string, mode pr.WriteMode) error {
	return p.write(ctx, "del", key, mode, func(ctx context.Context, c goredis.UniversalClient) error {
		return c.Del(ctx, key).Err()
	})
}

func (p *Redis) SAdd(ctx context.Context, set, member string, mode pr.WriteMode) error {
	return p.write(ctx, "sadd", set, mode, func(ctx context.Context, c goredis.UniversalClient) error {
		return c.SAdd(ctx, set, member).Err()
	})
}

func (p *Redis) SRem(ctx context.Context, set, member string, mode pr.WriteMode) error {
	return p.write(ctx, "srem", set, mode, func(ctx context.Context, c goredis.UniversalClient) error {
		return c.SRem(ctx, set, member).Err()
	})
}

func (p *Redis) SMembers(ctx context.Context, set string) ([]string, error) {
	c, err := p.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.SMembers(ctx, set).Result()
}

// write runs fn either inline or detached from the caller, depending on mode.
// Writes after Close fail with goredis.ErrClosed.
func (p *Redis) write(ctx context.Context, op, key string, mode pr.WriteMode, fn func(context.Context, goredis.UniversalClient) error) error {
	if p.closed.Load() {
		return goredis.ErrClosed
	}
	c, err := p.client(ctx)
	if err != nil {
		return err
	}
	if mode != pr.FireAndForget {
		return fn(ctx, c)
	}

	p.closeMu.RLock()
	if p.closed.Load() {
		p.closeMu.RUnlock()
		return goredis.ErrClosed
	}
	p.inflight.Add(1)
	p.closeMu.RUnlock()
	go func() {
		defer p.inflight.Done()
		if err := fn(context.WithoutCancel(ctx), c); err != nil && p.cfg.OnAsyncError != nil {
			p.cfg.OnAsyncError(op, key, err)
		}
	}()
	return nil
}

// Endpoints returns master addresses for a cluster client, otherwise the
// configured addresses.
func (p *Redis) Endpoints(ctx context.Context) ([]string, error) {
	c, err := p.client(ctx)
	if err != nil {
		return nil, err
	}
	switch cc := c.(type) {
	case *goredis.ClusterClient:
		var (
			mu    sync.Mutex
			addrs []string
		)
		err := cc.ForEachMaster(ctx, func(_ context.Context, n *goredis.Client) error {
			mu.Lock()
			addrs = append(addrs, n.Options().Addr)
			mu.Unlock()
			return nil
		})
		return addrs, err
	case *goredis.Client:
		if len(p.cfg.Addrs) == 0 {
			return []string{cc.Options().Addr}, nil
		}
	}
	out := make([]string, len(p.cfg.Addrs))
	copy(out, p.cfg.Addrs)
	return out, nil
}

func (p *Redis) FlushAll(ctx context.Context, endpoint string) error {
	if !p.cfg.AllowAdmin {
		return pr.ErrAdminDisabled
	}
	n, err := p.node(ctx, endpoint)
	if err != nil {
		return err
	}
	return n.FlushDB(ctx).Err()
}

func (p *Redis) Info(ctx context.Context, endpoint string) (pr.Info, error) {
	n, err := p.node(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	raw, err := n.Info(ctx).Result()
	if err != nil {
		return nil, err
	}
	return ParseInfo(raw), nil
}

// Keys walks the keyspace with SCAN so large databases do not block the server.
func (p *Redis) Keys(ctx context.Context, endpoint string) ([]string, error) {
	n, err := p.node(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	var keys []string
	it := n.Scan(ctx, 0, "*", p.scanCount()).Iterator()
	for it.Next(ctx) {
		keys = append(keys, it.Val())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (p *Redis) scanCount() int64 {
	if p.cfg.ScanCount > 0 {
		return p.cfg.ScanCount
	}
	return 1000
}

func (p *Redis) LockingEnabled() bool { return p.cfg.Locking }

// node returns a client bound to a single endpoint.
func (p *Redis) node(ctx context.Context, endpoint string) (*goredis.Client, error) {
	c, err := p.client(ctx)
	if err != nil {
		return nil, err
	}
	if sc, ok := c.(*goredis.Client); ok && sc.Options().Addr == endpoint {
		return sc, nil
	}

	p.nodesMu.Lock()
	defer p.nodesMu.Unlock()
	if n, ok := p.nodes[endpoint]; ok {
		return n, nil
	}
	n := goredis.NewClient(&goredis.Options{
		Addr:     endpoint,
		Password: p.cfg.Password,
		DB:       p.cfg.DB,
	})
	p.nodes[endpoint] = n
	return n, nil
}

// Close waits for in-flight fire-and-forget writes, then releases per-node
// clients and the main client when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	p.closeMu.Lock()
	first := p.closed.CompareAndSwap(false, true)
	p.closeMu.Unlock()
	if !first {
		return nil
	}
	p.inflight.Wait()

	var errs []error
	p.nodesMu.Lock()
	for addr, n := range p.nodes {
		if err := n.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			errs = append(errs, err)
		}
		delete(p.nodes, addr)
	}
	p.nodesMu.Unlock()

	p.mu.Lock()
	owned := p.owned
	p.mu.Unlock()
	if c := p.rdb.Load(); c != nil && owned {
		if err := (*c).Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
