package governor

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/teamarena/quotakit/pkg/meter"
	"github.com/teamarena/quotakit/pkg/notifications"
	"github.com/teamarena/quotakit/pkg/quota"
	"github.com/teamarena/quotakit/pkg/usage"
)

// Option configures New.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	registerer prometheus.Registerer

	store       usage.Store
	plans       usage.PlanStore
	pgPool      *pgxpool.Pool
	redisClient redis.UniversalClient
	mongoDB     *mongo.Database

	resolver   notifications.AddressResolver
	storage    notifications.Storage
	deliverers []notifications.Deliverer

	meters    map[quota.ResourceType]meter.MeterFunc
	s3Options []meter.S3Option
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRegisterer exports the cache metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithStore bypasses the configured backend. A nil plans store resolves
// every organization to the default tier.
func WithStore(store usage.Store, plans usage.PlanStore) Option {
	return func(o *options) {
		o.store = store
		o.plans = plans
	}
}

// WithPostgresPool reuses pool for the postgres backend. The Kit does not close it.
func WithPostgresPool(pool *pgxpool.Pool) Option {
	return func(o *options) { o.pgPool = pool }
}

// WithRedisClient reuses client for the redis backend. The Kit does not close it.
func WithRedisClient(client redis.UniversalClient) Option {
	return func(o *options) { o.redisClient = client }
}

// WithMongoDatabase reuses db for the mongo backend. The Kit does not disconnect it.
func WithMongoDatabase(db *mongo.Database) Option {
	return func(o *options) { o.mongoDB = db }
}

// WithAddressResolver enables email delivery of notifications.
func WithAddressResolver(resolve notifications.AddressResolver) Option {
	return func(o *options) { o.resolver = resolve }
}

// WithNotificationStorage replaces the in-memory notification storage.
func WithNotificationStorage(s notifications.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithDeliverer adds a notification delivery channel.
func WithDeliverer(d notifications.Deliverer) Option {
	return func(o *options) {
		if d != nil {
			o.deliverers = append(o.deliverers, d)
		}
	}
}

// WithMeter registers a reconciliation meter for rt.
func WithMeter(rt quota.ResourceType, fn meter.MeterFunc) Option {
	return func(o *options) {
		if o.meters == nil {
			o.meters = make(map[quota.ResourceType]meter.MeterFunc)
		}
		o.meters[rt] = fn
	}
}

// WithS3Options passes options to the media storage meter.
func WithS3Options(opts ...meter.S3Option) Option {
	return func(o *options) { o.s3Options = append(o.s3Options, opts...) }
}
