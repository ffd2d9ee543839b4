package governor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/teamarena/quotakit/pkg/config"
	"github.com/teamarena/quotakit/pkg/logger"
	mongoconn "github.com/teamarena/quotakit/pkg/mongo"
	"github.com/teamarena/quotakit/pkg/pg"
	redisconn "github.com/teamarena/quotakit/pkg/redis"
	"github.com/teamarena/quotakit/pkg/usage"
	"github.com/teamarena/quotakit/pkg/usage/mongostore"
	"github.com/teamarena/quotakit/pkg/usage/pgstore"
	"github.com/teamarena/quotakit/pkg/usage/redisstore"
)

// backend is an opened store with its release function and connectivity check.
type backend struct {
	store  usage.Store
	plans  usage.PlanStore
	health func(context.Context) error
	close  func() error
}

func openBackend(ctx context.Context, cfg Config, o *options, log *slog.Logger) (backend, error) {
	if o.store != nil {
		return backend{store: o.store, plans: o.plans}, nil
	}

	log = log.With(logger.Backend(cfg.Backend))

	switch cfg.Backend {
	case BackendPostgres:
		return openPostgres(ctx, o, log)
	case BackendRedis:
		return openRedis(ctx, cfg, o)
	case BackendMongo:
		return openMongo(ctx, o)
	default:
		mem := usage.NewMemoryStore()
		return backend{store: mem, plans: mem}, nil
	}
}

func openPostgres(ctx context.Context, o *options, log *slog.Logger) (backend, error) {
	b := backend{}
	pool := o.pgPool
	cfg := pg.Config{MigrationsTable: "quota_schema_migrations"}

	if pool == nil {
		if err := config.Load(&cfg); err != nil {
			return b, errors.Join(ErrConfig, err)
		}
		var err error
		if pool, err = pg.Connect(ctx, cfg); err != nil {
			return b, errors.Join(ErrConnect, err)
		}
		b.close = func() error {
			pool.Close()
			return nil
		}
	}

	if err := pgstore.Migrate(ctx, pool, cfg, log); err != nil {
		return b, errors.Join(ErrMigrate, err)
	}

	store := pgstore.New(pool)
	b.store, b.plans = store, store
	b.health = pg.Healthcheck(pool)
	return b, nil
}

func openRedis(ctx context.Context, cfg Config, o *options) (backend, error) {
	b := backend{}
	client := o.redisClient

	if client == nil {
		var rc redisconn.Config
		if err := config.Load(&rc); err != nil {
			return b, errors.Join(ErrConfig, err)
		}
		c, err := redisconn.Connect(ctx, rc)
		if err != nil {
			return b, errors.Join(ErrConnect, err)
		}
		client = c
		b.close = c.Close
	}

	store := redisstore.New(client,
		redisstore.WithKeyPrefix(cfg.RedisKeyPrefix),
		redisstore.WithHistoryRetention(cfg.RedisHistoryRetention),
	)
	b.store, b.plans = store, store
	b.health = redisconn.Healthcheck(client)
	return b, nil
}

func openMongo(ctx context.Context, o *options) (backend, error) {
	b := backend{}
	db := o.mongoDB

	if db == nil {
		var mc mongoconn.Config
		if err := config.Load(&mc); err != nil {
			return b, errors.Join(ErrConfig, err)
		}
		d, err := mongoconn.NewWithDatabase(ctx, mc)
		if err != nil {
			return b, errors.Join(ErrConnect, err)
		}
		db = d
		b.close = func() error {
			return d.Client().Disconnect(context.Background())
		}
	}

	store := mongostore.New(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		return b, errors.Join(ErrMigrate, err)
	}
	b.store, b.plans = store, store
	b.health = mongoconn.Healthcheck(db.Client())
	return b, nil
}
