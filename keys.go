package checkcache

import "strings"

// Normalize returns the physical key for key in region: "<region>-<key>",
// lowercased, or the bare lowercased key without region.
// A key already carrying the region prefix is not prefixed twice, so
// Normalize(Normalize(k, r), r) == Normalize(k, r). As a consequence
// ("b", "a") and ("a-b", "a") name the same entry; avoid logical keys that
// start with their own region name and a dash.
func Normalize(key, region string) string {
	k := strings.ToLower(key)
	if region == "" {
		return k
	}
	prefix := strings.ToLower(region) + "-"
	if strings.HasPrefix(k, prefix) {
		return k
	}
	return prefix + k
}

// regionName is the membership set a key in region belongs to.
func regionName(region string) string {
	if region == "" {
		return RegionNone
	}
	return strings.ToLower(region)
}

// regionOf infers the region of a physical key from its shape.
func regionOf(physicalKey string) string {
	region, _, ok := strings.Cut(physicalKey, "-")
	if !ok || region == "" {
		return RegionNone
	}
	return region
}
