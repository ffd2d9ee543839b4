package usagecache

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/teamarena/quotakit/pkg/cache"
	"github.com/teamarena/quotakit/pkg/logger"
	"github.com/teamarena/quotakit/pkg/quota"
)

// Bucket names one of the three independent cache regions.
type Bucket string

const (
	BucketLimits  Bucket = "limits"
	BucketUsage   Bucket = "usage"
	BucketHistory Bucket = "history"
)

// Buckets lists every bucket.
func Buckets() []Bucket {
	return []Bucket{BucketLimits, BucketUsage, BucketHistory}
}

// History is a cached history read together with the query that produced it.
type History struct {
	Query  quota.HistoryQuery
	Points []quota.HistoryPoint
}

// UsageEntryUpdater performs a targeted, last-write-wins update of one resource
// type inside an organization's cached usage array.
type UsageEntryUpdater interface {
	UpdateUsageEntry(organizationID string, rt quota.ResourceType, currentUsage, limit int64) bool
}

// Cache is the process-wide usage cache: limits by plan tier, usage by
// organization and history by organization and resource type. Each bucket has
// its own lock; no operation locks across buckets.
type Cache struct {
	cfg     Config
	limits  *cache.Bucket[[]quota.ResourceLimit]
	usage   *cache.Bucket[[]quota.ResourceUsage]
	history *cache.Bucket[History]
	metrics *metrics
	logger  *slog.Logger

	purgeMu sync.Mutex
	stop    chan struct{}
	done    chan struct{}
}

var _ UsageEntryUpdater = (*Cache)(nil)

// Option configures a Cache.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	registerer prometheus.Registerer
	now        func() time.Time
}

// WithLogger sets the logger used by the purger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRegisterer registers the cache collectors on reg.
// Without it the counters are kept but not exported.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithClock overrides time.Now for every bucket.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// New builds a Cache from cfg. Zero TTLs fall back to DefaultConfig.
func New(cfg Config, opts ...Option) (*Cache, error) {
	o := &options{logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	cfg = cfg.withDefaults()
	m := newMetrics()
	if o.registerer != nil {
		if err := m.register(o.registerer); err != nil {
			return nil, errors.Join(ErrMetricsRegistration, err)
		}
	}

	bucketOpts := func(b Bucket) []cache.BucketOption {
		return []cache.BucketOption{
			cache.WithCapacity(cfg.MaxEntries),
			cache.WithClock(o.now),
			cache.WithObserver(m.observer(b)),
		}
	}

	return &Cache{
		cfg:     cfg,
		limits:  cache.NewBucket[[]quota.ResourceLimit](cfg.LimitsTTL, bucketOpts(BucketLimits)...),
		usage:   cache.NewBucket[[]quota.ResourceUsage](cfg.UsageTTL, bucketOpts(BucketUsage)...),
		history: cache.NewBucket[History](cfg.HistoryTTL, bucketOpts(BucketHistory)...),
		metrics: m,
		logger:  o.logger.With(logger.Component("usagecache")),
	}, nil
}

// Config returns the effective configuration.
func (c *Cache) Config() Config {
	return c.cfg
}

// Limits returns the cached limits of a plan tier.
func (c *Cache) Limits(tier quota.PlanTier) ([]quota.ResourceLimit, bool) {
	v, ok := c.limits.Get(string(tier))
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// SetLimits caches the limits of a plan tier. ttl <= 0 selects the bucket default.
func (c *Cache) SetLimits(tier quota.PlanTier, limits []quota.ResourceLimit, ttl time.Duration) {
	c.limits.Set(string(tier), slices.Clone(limits), ttl)
}

// Usage returns the cached usage array of an organization.
func (c *Cache) Usage(organizationID string) ([]quota.ResourceUsage, bool) {
	v, ok := c.usage.Get(organizationID)
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// UsageEntry returns a single resource type from the cached usage array.
func (c *Cache) UsageEntry(organizationID string, rt quota.ResourceType) (quota.ResourceUsage, bool) {
	v, ok := c.usage.Get(organizationID)
	if !ok {
		return quota.ResourceUsage{}, false
	}
	for _, u := range v {
		if u.ResourceType == rt {
			return u, true
		}
	}
	return quota.ResourceUsage{}, false
}

// SetUsage caches the usage array of an organization. ttl <= 0 selects the bucket default.
func (c *Cache) SetUsage(organizationID string, usages []quota.ResourceUsage, ttl time.Duration) {
	c.usage.Set(organizationID, slices.Clone(usages), ttl)
}

// InvalidateUsage drops the cached usage array of an organization.
func (c *Cache) InvalidateUsage(organizationID string) {
	c.usage.Delete(organizationID)
}

// UpdateUsageEntry replaces the entry for rt in the organization's cached usage
// array with values recomputed from currentUsage and limit. Sibling entries and
// the array's TTL clock are left untouched. It returns false and creates nothing
// when no array is cached or the array has no entry for rt; the caller should
// then reload in full.
func (c *Cache) UpdateUsageEntry(organizationID string, rt quota.ResourceType, currentUsage, limit int64) bool {
	ok := c.usage.Update(organizationID, func(usages []quota.ResourceUsage) ([]quota.ResourceUsage, bool) {
		idx := slices.IndexFunc(usages, func(u quota.ResourceUsage) bool { return u.ResourceType == rt })
		if idx < 0 {
			return usages, false
		}
		next := slices.Clone(usages)
		next[idx] = quota.NewResourceUsage(rt, currentUsage, limit)
		return next, true
	})
	if ok {
		c.metrics.pointUpdates.WithLabelValues(string(BucketUsage)).Inc()
	}
	return ok
}

// History returns cached history points for (organization, rt) when they were
// produced by an equal query.
func (c *Cache) History(organizationID string, rt quota.ResourceType, q quota.HistoryQuery) ([]quota.HistoryPoint, bool) {
	v, ok := c.history.Get(quota.HistoryKey(organizationID, rt))
	if !ok || !v.Query.Equal(q) {
		return nil, false
	}
	return slices.Clone(v.Points), true
}

// SetHistory caches history points for (organization, rt) along with the query.
// ttl <= 0 selects the bucket default.
func (c *Cache) SetHistory(organizationID string, rt quota.ResourceType, q quota.HistoryQuery, points []quota.HistoryPoint, ttl time.Duration) {
	c.history.Set(quota.HistoryKey(organizationID, rt), History{Query: q, Points: slices.Clone(points)}, ttl)
}

// InvalidateHistory drops the cached history of (organization, rt).
func (c *Cache) InvalidateHistory(organizationID string, rt quota.ResourceType) {
	c.history.Delete(quota.HistoryKey(organizationID, rt))
}

// PurgeExpired sweeps all buckets and returns the number of removed entries.
func (c *Cache) PurgeExpired() int {
	return c.limits.PurgeExpired() + c.usage.PurgeExpired() + c.history.PurgeExpired()
}

// Clear drops the given buckets, or all of them when none is given.
func (c *Cache) Clear(buckets ...Bucket) {
	if len(buckets) == 0 {
		buckets = Buckets()
	}
	for _, b := range buckets {
		switch b {
		case BucketLimits:
			c.limits.Clear()
		case BucketUsage:
			c.usage.Clear()
		case BucketHistory:
			c.history.Clear()
		}
	}
}

// Len returns the number of entries held by a bucket, expired ones included.
func (c *Cache) Len(b Bucket) int {
	switch b {
	case BucketLimits:
		return c.limits.Len()
	case BucketUsage:
		return c.usage.Len()
	case BucketHistory:
		return c.history.Len()
	default:
		return 0
	}
}

// StartPurger runs PurgeExpired every interval until Close is called.
// interval <= 0 selects Config.PurgeInterval. Calling it again while running is a no-op.
func (c *Cache) StartPurger(interval time.Duration) {
	if interval <= 0 {
		interval = c.cfg.PurgeInterval
	}

	c.purgeMu.Lock()
	defer c.purgeMu.Unlock()
	if c.stop != nil {
		return
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})

	go c.purge(interval, c.stop, c.done)
}

func (c *Cache) purge(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(done)

	for {
		select {
		case <-ticker.C:
			if n := c.PurgeExpired(); n > 0 {
				c.logger.Debug("purged expired cache entries", logger.Count(n))
			}
		case <-stop:
			return
		}
	}
}

// Close stops the purger and waits for it to exit. Cached data stays readable.
func (c *Cache) Close() error {
	c.purgeMu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.purgeMu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)
	<-done
	return nil
}
