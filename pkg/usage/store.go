package usage

import (
	"context"

	"github.com/teamarena/quotakit/pkg/quota"
)

// Store is the persistent usage store: current usage rows keyed by
// (organization, resource type) plus an append-only sample history.
type Store interface {
	// UpsertCurrentUsage sets the current usage of one resource type.
	UpsertCurrentUsage(ctx context.Context, organizationID string, rt quota.ResourceType, value int64) error

	// AppendUsageSample adds a history sample. Samples are never mutated.
	AppendUsageSample(ctx context.Context, sample quota.UsageSample) error

	// QueryCurrentUsage returns current usage rows sorted by resource type.
	// With no filter every resource type is returned.
	QueryCurrentUsage(ctx context.Context, organizationID string, filter ...quota.ResourceType) ([]quota.CurrentUsage, error)

	// QueryUsageHistory returns at most q.Limit samples within [q.From, q.To],
	// most recent first. Zero bounds leave the range open.
	QueryUsageHistory(ctx context.Context, organizationID string, rt quota.ResourceType, q quota.HistoryQuery) ([]quota.HistoryPoint, error)
}

// TxStore is a Store that can write current usage and its history sample as one unit.
type TxStore interface {
	Store

	// RecordUsage upserts current usage and appends the sample atomically.
	RecordUsage(ctx context.Context, sample quota.UsageSample) error
}

// PlanStore resolves an organization's subscription plan.
// Implementations return ErrPlanNotFound when the organization has no plan row.
// The returned tier is not validated; callers fall back to quota.DefaultTier.
type PlanStore interface {
	SubscriptionPlan(ctx context.Context, organizationID string) (quota.PlanTier, error)
}

// PlanWriter assigns subscription plans. Billing integrations write through it.
type PlanWriter interface {
	SetPlan(ctx context.Context, organizationID string, tier quota.PlanTier) error
}
