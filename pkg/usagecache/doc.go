// Package usagecache implements the shared in-memory cache of the quota packages.
//
// It holds three independent TTL buckets:
//
//   - limits, keyed by plan tier (default TTL 24h);
//   - usage, keyed by organization id (default TTL 5m);
//   - history, keyed by "organization:resourceType" (default TTL 30m).
//
// Reads evict expired entries lazily, so correctness never depends on the
// optional background purger started with StartPurger. UpdateUsageEntry patches
// one resource type inside an organization's cached usage array without
// resetting the array's TTL clock and never creates an entry; a false result
// tells the caller to reload.
//
// A single Cache is created per process and passed to the tracker and the
// providers that share it:
//
//	c, err := usagecache.New(cfg, usagecache.WithRegisterer(prometheus.DefaultRegisterer))
//	if err != nil {
//		return err
//	}
//	c.StartPurger(0)
//	defer c.Close()
package usagecache
