// Package async runs functions in goroutines and collects their results as
// typed futures.
//
// Async starts one call and returns a *Future; Each starts one call per input.
// A Future is awaited with Await, AwaitContext or AwaitWithTimeout, or polled
// with IsComplete. WaitAll stops at the first error, while Settle waits for
// every future and reports errors index by index:
//
//	futures := async.Each(ctx, types, func(ctx context.Context, rt quota.ResourceType) (int64, error) {
//		return meter(ctx, org, rt)
//	})
//	values, errs := async.Settle(futures...)
//
// The usage tracker, the limit provider, the reconciler and the health
// handler all fan out this way. Concurrency is not bounded; callers pass
// small, fixed input sets.
package async
