// Package pg connects the PostgreSQL usage store.
//
// Connect opens a pgx/v5 pool from Config (PG_* variables) and pings it,
// retrying with a linearly growing delay. Migrate applies goose migrations
// from an fs.FS owned by the store package over the same pool, and
// Healthcheck returns a readiness check.
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//	if err := pgstore.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//
// Failures wrap package sentinels with errors.Join.
package pg
