// Package pgstore persists resource usage in PostgreSQL.
//
// Current usage lives in resource_usage_current, one row per organization and
// resource type. Samples are appended to resource_usage_history and never updated.
// Subscription plans are read from subscription_plans. RecordUsage writes the
// current row and its sample in a single transaction, so the tracker takes the
// transactional path when this store is configured.
//
// The schema ships as embedded goose migrations:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pgstore.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//	store := pgstore.New(pool)
package pgstore
