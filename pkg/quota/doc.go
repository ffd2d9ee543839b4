// Package quota holds the data model shared by the resource-limit governance packages:
// resource types, plan tiers, limits, derived usage views and usage history records.
//
// ResourceUsage is always derived through NewResourceUsage so that percentage,
// near-limit and limit-reached flags stay consistent:
//
//	u := quota.NewResourceUsage(quota.ResourceTeam, 4, 5)
//	// u.UsagePercentage == 80, u.NearLimit == true, u.LimitReached == false
package quota
