// Package quotakit governs plan-based resource limits for multi-tenant
// products: it tracks how much of each limited resource an organization
// uses, compares it with the limit its subscription plan grants and warns
// owners as usage approaches or reaches the limit.
//
// The building blocks live under pkg/:
//
//   - quota: resource types, plan tiers and derived usage values
//   - limits: per-resource limit strategies and the limit table
//   - usagecache: TTL cache for limits, usage and history
//   - usage: the usage tracker and its PostgreSQL, Redis and MongoDB stores
//   - limitprovider: per-organization state machine with threshold escalation
//   - meter: re-measures usage from its source of truth, including S3
//   - notifications and email: limit warnings delivered in-app and by email
//   - billing: Paddle subscription webhooks kept in step with plan tiers
//   - governor: builds all of the above from environment configuration
//
// cmd/quotad serves the operator HTTP API (pkg/opsapi) on top of a governor.
//
//	kit, err := governor.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer kit.Close()
//
//	p := kit.NewProvider(owners)
//	if err := p.SetOrganization(ctx, "org-42"); err != nil {
//		return err
//	}
//	if p.IsLimitReached(quota.ResourceTeam) {
//		// block team creation
//	}
package quotakit
