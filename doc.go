// Package checkcache orchestrates "compute once, reuse many" on top of a
// key-value backend.
//
// A caller hands Check an Executable: a cache key plus an operation that
// produces a Response. Check looks the key up in an optional secondary tier,
// then in the primary backend, and only on a miss runs the executable and
// stores the result in both tiers. Cache failures are logged and reported,
// never returned: the caller gets either a response or the executable's own
// error.
//
// Components:
//   - provider.Backend: text key-value store with TTLs, sets and an admin
//     surface (redis, or the in-process local backend).
//   - codec.Registry: one text-safe codec per value type (msgpack by default).
//   - Service: key addressing, regions, stats and the compute lock.
//   - Cache[R]: the typed Check/Add view over a Service.
//
// Keys:
//
//	<region>-<key>  - entry stored under region (lowercased)
//	<key>           - entry stored without region (member of region "none")
//	regions         - set of region names
//	<region>        - set of the region's physical keys
//
// Locking: when the backend declares LockingEnabled, concurrent Checks for a
// missing key in one process collapse to one executable run. Across
// processes two callers may both compute and overwrite each other; entries
// are idempotent re-derivations, so that race is accepted.
//
//	svc, _ := checkcache.New(checkcache.Options{Backend: backend})
//	users := checkcache.For[*UserResult](svc)
//	res, err := users.Check(ctx, checkcache.NewExecutable("user-42", loadUser),
//	    checkcache.WithRegion("users"))
package checkcache
