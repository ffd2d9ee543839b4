// Package cache provides a generic, thread-safe TTL bucket for keeping derived
// data in memory with a bounded footprint.
//
// A Bucket stores values under string keys together with the time they were
// written and their TTL. An entry is valid while now - timestamp <= ttl; once
// invalid it is treated as absent and evicted on the next read. PurgeExpired
// sweeps the whole bucket and is meant to run periodically, but correctness
// never depends on it.
//
// # Key Features
//
//   - Lazy expiry on every Get, independent of any background sweep
//   - Per-entry TTL with a bucket default
//   - In-place Update that preserves the entry's TTL clock
//   - Optional LRU capacity bound (WithCapacity)
//   - Observer hook for metrics (hits, misses, expirations, evictions)
//
// # Usage
//
//	limits := cache.NewBucket[[]quota.ResourceLimit](24*time.Hour, cache.WithCapacity(100))
//
//	limits.Set("basic", rows, 0) // 0 selects the default TTL
//
//	if rows, ok := limits.Get("basic"); ok {
//		// use rows
//	}
//
//	limits.Update("basic", func(rows []quota.ResourceLimit) ([]quota.ResourceLimit, bool) {
//		rows = slices.Clone(rows)
//		rows[0].LimitValue = 10
//		return rows, true
//	})
//
// # Thread Safety
//
// All operations take the bucket mutex for the in-memory work only. Values are
// returned as stored; callers must not mutate shared slices or maps in place and
// should clone inside Update callbacks.
package cache
