// Package provider defines the key-value backend abstraction used by checkcache.
//
// A Backend stores text payloads under string keys with a TTL, keeps set
// membership structures (used for region bookkeeping) and exposes a small
// admin surface per endpoint: flush, diagnostics and key listing.
//
// Important: the set key "regions" and every region name are owned by
// checkcache. External code should not write plain values under those keys.
package provider

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrAdminDisabled is returned by admin operations (flush) when the backend
// was configured without admin rights.
var ErrAdminDisabled = errors.New("provider: admin operations disabled")

// WriteMode selects whether a write waits for the backend reply.
type WriteMode uint8

const (
	// Acknowledged waits for the backend to confirm the write.
	Acknowledged WriteMode = iota
	// FireAndForget dispatches the write and returns immediately.
	// Failures are reported through the backend's async error callback.
	FireAndForget
)

func (m WriteMode) String() string {
	switch m {
	case Acknowledged:
		return "acknowledged"
	case FireAndForget:
		return "fire_and_forget"
	default:
		return "unknown"
	}
}

// Backend is a text key-value store with TTLs and sets.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Get returns (value, true, nil) on hit; ("", false, nil) on miss.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, always overwriting.
	Set(ctx context.Context, key, value string, ttl time.Duration, mode WriteMode) error
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, key string, mode WriteMode) error

	SAdd(ctx context.Context, set, member string, mode WriteMode) error
	SRem(ctx context.Context, set, member string, mode WriteMode) error
	SMembers(ctx context.Context, set string) ([]string, error)

	// Endpoints lists the addresses of every known backend node.
	Endpoints(ctx context.Context) ([]string, error)
	// FlushAll removes every key on endpoint. Destructive and not region scoped.
	FlushAll(ctx context.Context, endpoint string) error
	// Info returns the grouped diagnostics reported by endpoint.
	Info(ctx context.Context, endpoint string) (Info, error)
	// Keys lists every key stored on endpoint.
	Keys(ctx context.Context, endpoint string) ([]string, error)

	// LockingEnabled reports whether in-process locking around the
	// compute-and-populate section is meaningful for this backend.
	LockingEnabled() bool

	Close(ctx context.Context) error
}

// Field is a single diagnostic key/value pair.
type Field struct {
	Key   string
	Value string
}

// Section is a named group of diagnostic fields, e.g. "Memory" or "Keyspace".
type Section struct {
	Name   string
	Fields []Field
}

// Values returns the field values in reported order.
func (s Section) Values() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Value
	}
	return out
}

// Info is the ordered list of diagnostic sections of one endpoint.
type Info []Section

// Section looks a section up by name, case-insensitively.
func (in Info) Section(name string) (Section, bool) {
	for _, s := range in {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Section{}, false
}
