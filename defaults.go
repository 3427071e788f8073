package checkcache

import "time"

const (
	// DefaultTTL is applied to every stored entry unless Options.TTL is set.
	DefaultTTL = 8 * 24 * time.Hour

	// RegionNone is the region of keys stored without one.
	RegionNone = "none"
	// RegionSetKey is the set listing every known region name.
	RegionSetKey = "regions"
	// IndexSetKey is the set listing every id set written by UpdateIndex.
	IndexSetKey = "indexes"
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
