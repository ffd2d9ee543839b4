// Package meter measures live resource usage at its source and reconciles the
// usage store with it.
//
// Meters are registered per resource type at startup:
//
//	reg := meter.NewRegistry()
//	reg.Register(quota.ResourceTeam, func(ctx context.Context, org string) (int64, error) {
//		return teams.Count(ctx, org)
//	})
//	storage.Register(reg) // *S3Meter for quota.ResourceMediaStorage
//
//	rec := meter.NewReconciler(reg, tracker)
//	ok := rec.Reconcile(ctx, org)
//
// Reconcile measures every resource concurrently and writes the results with
// one batch update. A failing meter does not block the others.
//
// S3Meter lists the objects under "<prefix>/<organization>/" and reports their
// total size in megabytes, rounding up.
package meter
