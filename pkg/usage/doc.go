// Package usage tracks per-organization resource usage against a persistent store.
//
// Store is the contract for the store of record: current usage rows plus an
// append-only history of samples. TxStore adds a transactional RecordUsage that
// writes both at once; when a store does not offer it, the Tracker writes the
// current usage first and treats a failed history append as advisory.
// PlanStore resolves an organization's subscription tier.
//
// Tracker is the usage tracking service. Its write operations return false,
// and its reads return empty results, instead of errors; ResourceUsage keeps
// the error for callers that must surface store outages. When a cache is
// attached with WithCache, writes patch the cached usage entry in place and
// drop the cached history of the written resource type.
//
//	tracker := usage.NewTracker(store, usage.WithCache(c))
//	if !tracker.UpdateResourceUsage(ctx, orgID, quota.ResourceTeam, 5) {
//		// could not update, ask the user to retry
//	}
//	trend := tracker.CalculateUsageTrend(ctx, orgID, quota.ResourceTeam, 30)
//
// MemoryStore is a complete in-memory Store, TxStore and PlanStore. The
// pgstore, redisstore and mongostore subpackages provide persistent backends.
package usage
