package checkcache

import (
	"context"
	"errors"

	"github.com/unkn0wn-root/checkcache/codec"
	pr "github.com/unkn0wn-root/checkcache/provider"
)

// Tier is a cache level Check can consult before the primary backend and
// populate after it. *Cache[R] is a Tier.
type Tier[R any] interface {
	Get(ctx context.Context, key, region string) (R, bool, error)
	Add(ctx context.Context, key string, value R, opts ...Option) error
}

// Outcome says how Check produced its result.
type Outcome uint8

// Outcomes: Bypass ran the executable with caching off; SecondaryHit and
// PrimaryHit were served from a tier; Computed ran the executable after a
// miss; Skipped missed with execution disallowed.
const (
	OutcomeNone Outcome = iota
	OutcomeBypass
	OutcomeSecondaryHit
	OutcomePrimaryHit
	OutcomeComputed
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBypass:
		return "bypass"
	case OutcomeSecondaryHit:
		return "secondary_hit"
	case OutcomePrimaryHit:
		return "primary_hit"
	case OutcomeComputed:
		return "computed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "none"
	}
}

// Report describes one Check: its outcome and every non-fatal fault.
type Report struct {
	Key     string
	Outcome Outcome
	Faults  []Fault
}

// Err returns the faults as a *FaultError, or nil when there were none.
func (r Report) Err() error {
	if len(r.Faults) == 0 {
		return nil
	}
	return &FaultError{Key: r.Key, Faults: r.Faults}
}

// Cache is the typed Check/Add view over a Service. Views of different
// types on one Service share its backend, registry and lock.
type Cache[R Response[R]] struct {
	svc *Service
}

// For returns the Cache view for R.
func For[R Response[R]](s *Service) *Cache[R] {
	return &Cache[R]{svc: s}
}

// Service returns the service the view is bound to.
func (c *Cache[R]) Service() *Service { return c.svc }

// Check returns the cached response for exec, or runs exec and caches its
// result. Only a failure of exec itself is returned as an error.
func (c *Cache[R]) Check(ctx context.Context, exec Executable[R], opts ...Option) (R, error) {
	r, _, err := c.CheckReport(ctx, exec, nil, opts...)
	return r, err
}

// CheckTiered is Check with a secondary tier looked up first and populated
// on the way back.
func (c *Cache[R]) CheckTiered(ctx context.Context, exec Executable[R], secondary Tier[R], opts ...Option) (R, error) {
	r, _, err := c.CheckReport(ctx, exec, secondary, opts...)
	return r, err
}

// CheckReport is CheckTiered that also returns the outcome and the cache
// faults absorbed along the way. secondary may be nil.
func (c *Cache[R]) CheckReport(ctx context.Context, exec Executable[R], secondary Tier[R], opts ...Option) (res R, rep Report, err error) {
	if exec == nil {
		return res, rep, &PreconditionError{Op: "check", Field: "executable"}
	}
	key := exec.CacheKey()
	if key == "" {
		return res, rep, &PreconditionError{Op: "check", Field: "key"}
	}
	o := applyOptions(opts)
	rep.Key = key

	ctx, finish := c.svc.inst.start(ctx, "check", o.region)
	defer func() { finish(rep.Outcome, len(rep.Faults), err) }()

	res, err = c.check(ctx, exec, secondary, o, &rep)
	return res, rep, err
}

func (c *Cache[R]) check(ctx context.Context, exec Executable[R], secondary Tier[R], o callOptions, rep *Report) (R, error) {
	var zero R
	s := c.svc
	key := rep.Key

	if !s.UseCache(o.force) {
		rep.Outcome = OutcomeBypass
		r, err := c.execute(ctx, exec)
		if err == nil && !isNil(r) {
			r.SetCacheEnabled(s.enabled)
		}
		return r, err
	}

	if secondary != nil {
		v, ok, err := secondary.Get(ctx, key, o.region)
		switch {
		case err != nil:
			c.fault(rep, "secondary_get", err)
		case ok && !isNil(v):
			hit := c.fromCache(v)
			hit.SetWasCachedSecondary(true)
			rep.Outcome = OutcomeSecondaryHit
			return hit, nil
		}
	}

	if v, ok := c.lookup(ctx, key, o.region, "primary_get", rep); ok {
		hit := c.fromCache(v)
		hit.SetWasCached(true)
		if secondary != nil {
			c.backfill(ctx, secondary, key, o.region, v, rep)
		}
		rep.Outcome = OutcomePrimaryHit
		return hit, nil
	}

	if !o.execute {
		rep.Outcome = OutcomeSkipped
		return zero, nil
	}

	if s.backend.LockingEnabled() {
		lctx, release, err := s.exclusive(ctx)
		if err != nil {
			return zero, err
		}
		defer release()
		ctx = lctx

		// Another caller may have populated the key while we waited.
		if v, ok := c.lookup(ctx, key, o.region, "primary_recheck", rep); ok {
			hit := c.fromCache(v)
			hit.SetWasCached(true)
			rep.Outcome = OutcomePrimaryHit
			return hit, nil
		}
	}

	r, err := c.execute(ctx, exec)
	if err != nil {
		return zero, err
	}
	rep.Outcome = OutcomeComputed
	if isNil(r) {
		return r, nil
	}

	if r.Cacheable() {
		// Acknowledged so callers queued on the lock observe the entry.
		if err := c.add(ctx, key, o.region, r, pr.Acknowledged); err != nil {
			c.fault(rep, "primary_add", err)
		}
		if secondary != nil {
			if err := secondary.Add(ctx, key, r, WithRegion(o.region)); err != nil {
				c.fault(rep, "secondary_add", err)
			}
		}
	}

	r.SetCacheEnabled(s.enabled)
	return r, nil
}

// Add stores value under key, overwriting. The write is fire-and-forget.
func (c *Cache[R]) Add(ctx context.Context, key string, value R, opts ...Option) error {
	if key == "" {
		return &PreconditionError{Op: "add", Field: "key"}
	}
	o := applyOptions(opts)
	if !c.svc.UseCache(o.force) {
		return nil
	}
	return c.add(ctx, key, o.region, value, pr.FireAndForget)
}

// AddExecutable stores value under exec's cache key.
func (c *Cache[R]) AddExecutable(ctx context.Context, exec Executable[R], value R, opts ...Option) error {
	if exec == nil {
		return &PreconditionError{Op: "add", Field: "executable"}
	}
	return c.Add(ctx, exec.CacheKey(), value, opts...)
}

// Get returns the value stored under key in region. A payload that cannot
// be decoded yields a *DecodeError. A disabled service always misses.
func (c *Cache[R]) Get(ctx context.Context, key, region string) (R, bool, error) {
	var zero R
	if key == "" {
		return zero, false, &PreconditionError{Op: "get", Field: "key"}
	}
	if !c.svc.enabled {
		return zero, false, nil
	}
	return c.get(ctx, key, region)
}

func (c *Cache[R]) get(ctx context.Context, key, region string) (R, bool, error) {
	var zero R
	k := Normalize(key, region)
	ok, err := c.svc.backend.Exists(ctx, k)
	if err != nil || !ok {
		return zero, false, err
	}
	raw, ok, err := c.svc.backend.Get(ctx, k)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := codec.For[R](c.svc.codecs).DecodeText(raw)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (c *Cache[R]) add(ctx context.Context, key, region string, value R, mode pr.WriteMode) error {
	payload, err := codec.For[R](c.svc.codecs).EncodeText(value)
	if err != nil {
		return err
	}
	return c.svc.put(ctx, Normalize(key, region), region, payload, mode)
}

// lookup is get with failures turned into faults.
func (c *Cache[R]) lookup(ctx context.Context, key, region, op string, rep *Report) (R, bool) {
	v, ok, err := c.get(ctx, key, region)
	if err != nil {
		c.fault(rep, op, err)
		return v, false
	}
	return v, ok && !isNil(v)
}

// backfill copies a primary hit into the secondary tier under the writer lock.
func (c *Cache[R]) backfill(ctx context.Context, secondary Tier[R], key, region string, v R, rep *Report) {
	ctx, release, err := c.svc.exclusive(ctx)
	if err != nil {
		c.fault(rep, "secondary_backfill", err)
		return
	}
	defer release()
	if err := secondary.Add(ctx, key, v, WithRegion(region)); err != nil {
		c.fault(rep, "secondary_backfill", err)
	}
}

// fromCache hands out a private copy of a cached value.
func (c *Cache[R]) fromCache(v R) R {
	out := v.Clone()
	out.ClearDurations()
	out.SetCacheEnabled(c.svc.enabled)
	return out
}

func (c *Cache[R]) execute(ctx context.Context, exec Executable[R]) (R, error) {
	r, err := exec.Execute(ctx)
	if err != nil {
		key := exec.CacheKey()
		c.svc.log.Error("executable failed", Fields{"key": key, "err": err})
		c.svc.hooks.ExecuteFailed(key, err)
		var zero R
		return zero, &ExecutableError{Key: key, Err: err}
	}
	return r, nil
}

func (c *Cache[R]) fault(rep *Report, op string, err error) {
	rep.Faults = append(rep.Faults, Fault{Op: op, Key: rep.Key, Err: err})

	var de *DecodeError
	if errors.As(err, &de) {
		c.svc.log.Warn("cached payload could not be decoded", Fields{"op": op, "key": rep.Key, "err": err})
		c.svc.hooks.DecodeFailed(rep.Key, err)
		return
	}
	c.svc.log.Warn("cache fault", Fields{"op": op, "key": rep.Key, "err": err})
	c.svc.hooks.CacheFault(op, rep.Key, err)
}
