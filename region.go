package checkcache

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	pr "github.com/unkn0wn-root/checkcache/provider"
)

// put stores payload under physicalKey and records region membership.
func (s *Service) put(ctx context.Context, physicalKey, region, payload string, mode pr.WriteMode) error {
	if err := s.backend.Set(ctx, physicalKey, payload, s.ttl, mode); err != nil {
		return err
	}
	rn := regionName(region)
	if err := s.backend.SAdd(ctx, RegionSetKey, rn, mode); err != nil {
		return err
	}
	return s.backend.SAdd(ctx, rn, physicalKey, mode)
}

// Contains reports whether key exists in region.
func (s *Service) Contains(ctx context.Context, key, region string) (bool, error) {
	if key == "" {
		return false, &PreconditionError{Op: "contains", Field: "key"}
	}
	return s.backend.Exists(ctx, Normalize(key, region))
}

// Remove deletes key and drops it from its region set. The region itself
// stays registered even when this was its last key.
func (s *Service) Remove(ctx context.Context, key, region string) error {
	if key == "" {
		return &PreconditionError{Op: "remove", Field: "key"}
	}
	k := Normalize(key, region)
	if err := s.backend.Del(ctx, k, pr.Acknowledged); err != nil {
		return err
	}
	s.log.Debug("removed key", Fields{"key": k})
	return s.backend.SRem(ctx, regionName(region), k, pr.Acknowledged)
}

// Clear deletes every key of region ("none" when empty) and empties its
// membership set. Other regions are untouched.
func (s *Service) Clear(ctx context.Context, region string) error {
	rn := regionName(region)
	members, err := s.backend.SMembers(ctx, rn)
	if err != nil {
		return fmt.Errorf("checkcache: clear %q: %w", rn, err)
	}
	var errs []error
	for _, m := range members {
		if m == "" {
			continue
		}
		if err := s.backend.Del(ctx, m, pr.Acknowledged); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.backend.SRem(ctx, rn, m, pr.Acknowledged); err != nil {
			errs = append(errs, err)
		}
	}
	s.log.Info("cleared region", Fields{"region": rn, "keys": len(members), "errors": len(errs)})
	return errors.Join(errs...)
}

// ClearAll flushes every endpoint. It is not region scoped and removes keys
// this package never wrote.
func (s *Service) ClearAll(ctx context.Context) error {
	endpoints, err := s.backend.Endpoints(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, ep := range endpoints {
		if err := s.backend.FlushAll(ctx, ep); err != nil {
			errs = append(errs, fmt.Errorf("flush %s: %w", ep, err))
		}
	}
	s.log.Warn("flushed all endpoints", Fields{"endpoints": endpoints, "errors": len(errs)})
	return errors.Join(errs...)
}

// SizeByRegion counts keys per region on the first reachable endpoint.
// The region is the part before the first '-', "none" without one.
// Bookkeeping sets (the region list, each region set, the index list and
// each id index set) are not counted. It holds the reader lock so a
// populate running under the writer lock is seen whole or not at all.
func (s *Service) SizeByRegion(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64)
	ctx, release, err := s.shared(ctx)
	if err != nil {
		return out, err
	}
	defer release()

	keys, err := firstReachable(ctx, s, s.backend.Keys)
	if err != nil {
		return out, err
	}

	skip := map[string]struct{}{RegionSetKey: {}, IndexSetKey: {}}
	for _, set := range []string{RegionSetKey, IndexSetKey} {
		members, err := s.backend.SMembers(ctx, set)
		if err != nil {
			return out, err
		}
		for _, m := range members {
			skip[m] = struct{}{}
		}
	}

	for _, k := range keys {
		if _, ok := skip[k]; ok {
			continue
		}
		out[regionOf(k)]++
	}
	return out, nil
}

// UpdateIndex records key in one set per id, so entries derived from an
// identifier can be found later. Every id set is listed in IndexSetKey.
// Check does not call it.
func (s *Service) UpdateIndex(ctx context.Context, key, region string, ids []uuid.UUID) error {
	if key == "" {
		return &PreconditionError{Op: "update_index", Field: "key"}
	}
	k := Normalize(key, region)
	for _, id := range ids {
		set := id.String()
		if err := s.backend.SAdd(ctx, IndexSetKey, set, pr.Acknowledged); err != nil {
			return err
		}
		if err := s.backend.SAdd(ctx, set, k, pr.Acknowledged); err != nil {
			return err
		}
	}
	return nil
}

// IndexedKeys returns the physical keys recorded for id by UpdateIndex.
func (s *Service) IndexedKeys(ctx context.Context, id uuid.UUID) ([]string, error) {
	return s.backend.SMembers(ctx, id.String())
}
