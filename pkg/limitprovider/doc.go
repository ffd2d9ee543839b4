// Package limitprovider aggregates an organization's plan, limits and usage
// into derived views and escalates threshold crossings.
//
// A Provider walks a small state machine on every load:
//
//	uninitialized -> loading_plan -> loading_limits -> loading_usage -> ready
//
// Any loading phase may fail into error. RefreshUsage re-enters loading_usage
// from ready or error; SetOrganization and Retry re-enter loading_plan. A
// failed load keeps the previous data queryable and exposes the cause via Err.
//
// A missing or unrecognized plan resolves to quota.DefaultTier. Limits are
// read through the shared cache and fall back to the LimitSource; usage is
// read through the cache and falls back to one concurrent tracker read per
// resource type.
//
// After each successful usage load at most one "limit reached" and one
// "near limit" notification are sent, each for the first newly crossed
// resource in display order. A resource is notified again only after its
// condition cleared in between.
//
//	p := limitprovider.New(store, factory, tracker,
//		limitprovider.WithCache(c),
//		limitprovider.WithNotifier(notifier),
//		limitprovider.WithRecipients(admins),
//	)
//	if err := p.SetOrganization(ctx, orgID); err != nil {
//		// p.State() == limitprovider.StateError
//	}
//	if p.IsLimitReached(quota.ResourceTeam) {
//		// block team creation
//	}
package limitprovider
