package checkcache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	pr "github.com/unkn0wn-root/checkcache/provider"
)

// Stats is what the backend reports about storage. Fields are nil when the
// diagnostics could not be parsed.
type Stats struct {
	Storage    *int64 `json:"storage,omitempty"`
	StorageMax *int64 `json:"storageMax,omitempty"`
	Keys       *int64 `json:"keys,omitempty"`
}

// Size returns the key count of the first reachable endpoint, 0 when the
// keyspace diagnostics are missing or unparsable.
func (s *Service) Size(ctx context.Context) (int64, error) {
	info, err := firstReachable(ctx, s, s.backend.Info)
	if err != nil {
		return 0, err
	}
	if n, ok := keyspaceKeys(info); ok {
		return n, nil
	}
	return 0, nil
}

// Stats reads memory and keyspace diagnostics of the first reachable endpoint.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	info, err := firstReachable(ctx, s, s.backend.Info)
	if err != nil {
		return st, err
	}
	if mem, ok := info.Section("Memory"); ok {
		vals := mem.Values()
		if len(vals) > 0 {
			st.Storage = parseInt(vals[0])
		}
		if len(vals) > 3 {
			st.StorageMax = parseInt(vals[3])
		}
	}
	if n, ok := keyspaceKeys(info); ok {
		st.Keys = &n
	}
	return st, nil
}

// Maintain is the periodic housekeeping hook. Backends here manage expiry
// themselves, so there is nothing to do yet.
func (s *Service) Maintain(context.Context) error { return nil }

// keyspaceKeys parses the first keyspace line, "keys=120,expires=3,...".
func keyspaceKeys(info pr.Info) (int64, bool) {
	ks, ok := info.Section("Keyspace")
	if !ok || len(ks.Fields) == 0 {
		return 0, false
	}
	first, _, _ := strings.Cut(ks.Fields[0].Value, ",")
	_, v, ok := strings.Cut(first, "=")
	if !ok {
		return 0, false
	}
	n := parseInt(v)
	if n == nil {
		return 0, false
	}
	return *n, true
}

func parseInt(s string) *int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// firstReachable calls fn on endpoints in order and returns the first
// success. Only one endpoint is ever consulted on success, so results
// describe a single node, not a sharded cluster.
func firstReachable[T any](ctx context.Context, s *Service, fn func(context.Context, string) (T, error)) (T, error) {
	var zero T
	endpoints, err := s.backend.Endpoints(ctx)
	if err != nil {
		return zero, err
	}
	if len(endpoints) == 0 {
		return zero, nil
	}
	var errs []error
	for _, ep := range endpoints {
		v, err := fn(ctx, ep)
		if err == nil {
			return v, nil
		}
		s.log.Warn("endpoint unreachable", Fields{"endpoint": ep, "err": err})
		s.hooks.EndpointUnreachable(ep, err)
		errs = append(errs, fmt.Errorf("%s: %w", ep, err))
	}
	return zero, errors.Join(errs...)
}
