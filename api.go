package checkcache

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/checkcache/codec"
	"github.com/unkn0wn-root/checkcache/internal/rwlock"
	"github.com/unkn0wn-root/checkcache/otel"
	pr "github.com/unkn0wn-root/checkcache/provider"
)

// Options tune a Service. Only Backend is required; others have sensible defaults.
type Options struct {
	// Required
	Backend pr.Backend

	Codecs   *codec.Registry // nil => msgpack registry owned by the service
	Logger   Logger          // if nil, NopLogger is used
	Hooks    Hooks           // if nil, NopHooks is used
	TTL      time.Duration   // 0 => DefaultTTL (8 days)
	Disabled bool            // default false (enabled); Check then always executes

	Metrics *otel.MetricConfig // nil => no metrics
	Tracing *otel.TraceConfig  // nil => no spans
}

// Service owns the backend, the codec registry and the compute lock of one
// cache instance. Typed Check/Add live on Cache[R], obtained with For.
type Service struct {
	backend pr.Backend
	codecs  *codec.Registry
	lock    *rwlock.RWLock
	log     Logger
	hooks   Hooks
	inst    *instrumentation
	enabled bool
	ttl     time.Duration
}

func New(opts Options) (*Service, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("checkcache: backend is required")
	}
	s := &Service{
		backend: opts.Backend,
		codecs:  opts.Codecs,
		lock:    rwlock.New(),
		enabled: !opts.Disabled,
	}

	// defaults
	if s.codecs == nil {
		s.codecs = codec.NewRegistry()
	}
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	s.ttl = coalesce[time.Duration](opts.TTL, DefaultTTL)
	s.inst = newInstrumentation(opts.Metrics, opts.Tracing)

	return s, nil
}

// Enabled reports whether caching is globally on.
func (s *Service) Enabled() bool { return s.enabled }

// UseCache reports whether a call should touch the cache: globally enabled,
// or forced by the caller.
func (s *Service) UseCache(force bool) bool { return s.enabled || force }

// Codecs returns the registry values are encoded with.
func (s *Service) Codecs() *codec.Registry { return s.codecs }

func (s *Service) Close(ctx context.Context) error {
	return s.backend.Close(ctx)
}

// Option adjusts a single Check or Add call.
type Option func(*callOptions)

type callOptions struct {
	region  string
	force   bool
	execute bool
}

// WithRegion places the key in region. Empty means no region. A key that
// already starts with "<region>-" is used as is, see Normalize.
func WithRegion(region string) Option { return func(o *callOptions) { o.region = region } }

// WithForceCache uses the cache even when the service is disabled.
func WithForceCache() Option { return func(o *callOptions) { o.force = true } }

// WithoutExecute makes Check return the zero value on a miss instead of
// running the executable.
func WithoutExecute() Option { return func(o *callOptions) { o.execute = false } }

func applyOptions(opts []Option) callOptions {
	o := callOptions{execute: true}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
