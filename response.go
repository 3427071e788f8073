package checkcache

import (
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Response is what an executable produces and what the cache stores.
// R is the concrete (usually pointer) type, so Clone can return it.
type Response[R any] interface {
	Cacheable() bool
	SetWasCached(bool)
	SetWasCachedSecondary(bool)
	SetCacheEnabled(bool)
	// ClearDurations drops compute timings; a cache hit must not report them.
	ClearDurations()
	IDs() []uuid.UUID
	// Clone returns a copy that shares no mutable state with the receiver.
	Clone() R
}

// ResponseBase implements every Response method except Clone.
// Embed it and add Clone on the outer type.
type ResponseBase struct {
	WasCached          bool                     `json:"wasCached" msgpack:"wasCached"`
	WasCachedSecondary bool                     `json:"wasCachedSecondary" msgpack:"wasCachedSecondary"`
	CacheEnabled       bool                     `json:"cacheEnabled" msgpack:"cacheEnabled"`
	Uncacheable        bool                     `json:"uncacheable,omitempty" msgpack:"uncacheable,omitempty"`
	Ids                []uuid.UUID              `json:"ids,omitempty" msgpack:"ids,omitempty"`
	Duration           time.Duration            `json:"duration,omitempty" msgpack:"duration,omitempty"`
	Durations          map[string]time.Duration `json:"durations,omitempty" msgpack:"durations,omitempty"`
}

func (r *ResponseBase) Cacheable() bool              { return !r.Uncacheable }
func (r *ResponseBase) SetWasCached(v bool)          { r.WasCached = v }
func (r *ResponseBase) SetWasCachedSecondary(v bool) { r.WasCachedSecondary = v }
func (r *ResponseBase) SetCacheEnabled(v bool)       { r.CacheEnabled = v }
func (r *ResponseBase) IDs() []uuid.UUID             { return r.Ids }

func (r *ResponseBase) ClearDurations() {
	r.Duration = 0
	r.Durations = nil
}

// Track records a named compute timing.
func (r *ResponseBase) Track(name string, d time.Duration) {
	if r.Durations == nil {
		r.Durations = make(map[string]time.Duration)
	}
	r.Durations[name] = d
	r.Duration += d
}

// CloneBase deep-copies the base fields; use it from Clone implementations.
func (r ResponseBase) CloneBase() ResponseBase {
	out := r
	if r.Ids != nil {
		out.Ids = append([]uuid.UUID(nil), r.Ids...)
	}
	if r.Durations != nil {
		out.Durations = make(map[string]time.Duration, len(r.Durations))
		for k, v := range r.Durations {
			out.Durations[k] = v
		}
	}
	return out
}

// Executable is a unit of work whose result may be cached under CacheKey.
type Executable[R any] interface {
	CacheKey() string
	Execute(ctx context.Context) (R, error)
}

type funcExecutable[R any] struct {
	key string
	fn  func(context.Context) (R, error)
}

// NewExecutable adapts a function into an Executable.
func NewExecutable[R any](key string, fn func(context.Context) (R, error)) Executable[R] {
	return funcExecutable[R]{key: key, fn: fn}
}

func (e funcExecutable[R]) CacheKey() string                       { return e.key }
func (e funcExecutable[R]) Execute(ctx context.Context) (R, error) { return e.fn(ctx) }

// isNil reports whether v is nil, including typed nil pointers behind R.
func isNil[R any](v R) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
