package usage

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/teamarena/quotakit/pkg/async"
	"github.com/teamarena/quotakit/pkg/logger"
	"github.com/teamarena/quotakit/pkg/quota"
	"github.com/teamarena/quotakit/pkg/usagecache"
)

// DefaultTrendWindowDays is the trend window used when none is given.
const DefaultTrendWindowDays = 30

// Cache is the subset of the usage cache the tracker keeps in sync.
type Cache interface {
	usagecache.UsageEntryUpdater
	UsageEntry(organizationID string, rt quota.ResourceType) (quota.ResourceUsage, bool)
	History(organizationID string, rt quota.ResourceType, q quota.HistoryQuery) ([]quota.HistoryPoint, bool)
	SetHistory(organizationID string, rt quota.ResourceType, q quota.HistoryQuery, points []quota.HistoryPoint, ttl time.Duration)
	InvalidateHistory(organizationID string, rt quota.ResourceType)
}

// Tracker reads and writes usage against the persistent store and keeps the
// cache consistent. Write and read operations report failure through their
// return value and never panic; store errors are logged.
type Tracker struct {
	store  Store
	cache  Cache
	logger *slog.Logger
	now    func() time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithCache keeps c in sync with writes and serves history reads from it.
func WithCache(c Cache) TrackerOption {
	return func(t *Tracker) { t.cache = c }
}

// WithLogger sets the tracker logger.
func WithLogger(l *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithClock overrides time.Now for sample timestamps and trend windows.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTracker creates a Tracker on top of store.
func NewTracker(store Store, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With(logger.Component("usage_tracker"))
	return t
}

// UpdateResourceUsage records value as the current usage of rt and appends a
// history sample. It returns false when the current usage could not be written;
// a failed history append alone is logged and still reports success.
func (t *Tracker) UpdateResourceUsage(ctx context.Context, organizationID string, rt quota.ResourceType, value int64) bool {
	if err := t.recordUsage(ctx, organizationID, rt, value); err != nil {
		t.logger.WarnContext(ctx, "usage not updated",
			logger.OrganizationID(organizationID),
			logger.ResourceType(rt),
			logger.Error(err),
		)
		return false
	}
	return true
}

func (t *Tracker) recordUsage(ctx context.Context, organizationID string, rt quota.ResourceType, value int64) error {
	if organizationID == "" {
		return ErrMissingOrganization
	}
	if !rt.IsKnown() {
		return ErrUnknownResource
	}

	sample := quota.UsageSample{
		OrganizationID: organizationID,
		ResourceType:   rt,
		UsageValue:     value,
		RecordedAt:     t.now().UTC(),
	}

	if tx, ok := t.store.(TxStore); ok {
		if err := tx.RecordUsage(ctx, sample); err != nil {
			return errors.Join(ErrWriteFailed, err)
		}
	} else {
		if err := t.store.UpsertCurrentUsage(ctx, organizationID, rt, value); err != nil {
			return errors.Join(ErrWriteFailed, err)
		}
		if err := t.store.AppendUsageSample(ctx, sample); err != nil {
			t.logger.WarnContext(ctx, "usage history sample not recorded",
				logger.OrganizationID(organizationID),
				logger.ResourceType(rt),
				logger.Error(err),
			)
		}
	}

	if t.cache != nil {
		if cached, ok := t.cache.UsageEntry(organizationID, rt); ok {
			t.cache.UpdateUsageEntry(organizationID, rt, value, cached.Limit)
		}
		t.cache.InvalidateHistory(organizationID, rt)
	}
	return nil
}

// UpdateMultipleResourceUsage writes every value concurrently and returns true
// only when all writes succeeded. Successful writes are kept when others fail.
func (t *Tracker) UpdateMultipleResourceUsage(ctx context.Context, organizationID string, values map[quota.ResourceType]int64) bool {
	if len(values) == 0 {
		return true
	}

	types := slices.SortedFunc(maps.Keys(values), func(a, b quota.ResourceType) int { return cmp.Compare(a, b) })
	futures := async.Each(ctx, types, func(ctx context.Context, rt quota.ResourceType) (quota.ResourceType, error) {
		return rt, t.recordUsage(ctx, organizationID, rt, values[rt])
	})

	_, errs := async.Settle(futures...)
	ok := true
	for i, err := range errs {
		if err != nil {
			ok = false
			t.logger.WarnContext(ctx, "usage not updated",
				logger.OrganizationID(organizationID),
				logger.ResourceType(types[i]),
				logger.Error(err),
			)
		}
	}
	return ok
}

// GetResourceUsage returns current usage rows, optionally filtered by resource
// type. Failures yield an empty slice.
func (t *Tracker) GetResourceUsage(ctx context.Context, organizationID string, filter ...quota.ResourceType) []quota.CurrentUsage {
	rows, err := t.ResourceUsage(ctx, organizationID, filter...)
	if err != nil {
		t.logger.WarnContext(ctx, "current usage unavailable",
			logger.OrganizationID(organizationID),
			logger.Error(err),
		)
		return []quota.CurrentUsage{}
	}
	return rows
}

// ResourceUsage is GetResourceUsage with the store error preserved.
func (t *Tracker) ResourceUsage(ctx context.Context, organizationID string, filter ...quota.ResourceType) ([]quota.CurrentUsage, error) {
	if organizationID == "" {
		return nil, ErrMissingOrganization
	}
	rows, err := t.store.QueryCurrentUsage(ctx, organizationID, filter...)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	if rows == nil {
		rows = []quota.CurrentUsage{}
	}
	return rows, nil
}

// GetResourceUsageHistory returns history points most recent first. A zero
// q.Limit selects quota.DefaultHistoryLimit. Results are cached per
// (organization, resource type) and query. Failures yield an empty slice.
func (t *Tracker) GetResourceUsageHistory(ctx context.Context, organizationID string, rt quota.ResourceType, q quota.HistoryQuery) []quota.HistoryPoint {
	q = q.Normalize()

	if t.cache != nil {
		if points, ok := t.cache.History(organizationID, rt, q); ok {
			return points
		}
	}

	points, ok := t.queryHistory(ctx, organizationID, rt, q)
	if ok && t.cache != nil {
		t.cache.SetHistory(organizationID, rt, q, points, 0)
	}
	return points
}

func (t *Tracker) queryHistory(ctx context.Context, organizationID string, rt quota.ResourceType, q quota.HistoryQuery) ([]quota.HistoryPoint, bool) {
	points, err := t.store.QueryUsageHistory(ctx, organizationID, rt, q)
	if err != nil {
		t.logger.WarnContext(ctx, "usage history unavailable",
			logger.OrganizationID(organizationID),
			logger.ResourceType(rt),
			logger.Error(errors.Join(ErrQueryFailed, err)),
		)
		return []quota.HistoryPoint{}, false
	}
	if points == nil {
		points = []quota.HistoryPoint{}
	}
	return points, true
}

// CalculateUsageTrend returns the signed percentage change of rt over the last
// windowDays days (DefaultTrendWindowDays when <= 0). See Trend for the rule.
// The window moves with the clock, so trend reads bypass the history cache.
func (t *Tracker) CalculateUsageTrend(ctx context.Context, organizationID string, rt quota.ResourceType, windowDays int) int {
	if windowDays <= 0 {
		windowDays = DefaultTrendWindowDays
	}

	now := t.now().UTC()
	points, _ := t.queryHistory(ctx, organizationID, rt, quota.HistoryQuery{
		Limit: windowDays + 1,
		From:  now.AddDate(0, 0, -windowDays),
		To:    now,
	}.Normalize())
	return Trend(points)
}
