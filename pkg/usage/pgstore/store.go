package pgstore

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/teamarena/quotakit/pkg/pg"
	"github.com/teamarena/quotakit/pkg/quota"
	"github.com/teamarena/quotakit/pkg/usage"
)

// DB is satisfied by *pgxpool.Pool and *pgx.Conn.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store keeps usage in PostgreSQL. Run Migrate before first use.
type Store struct {
	db DB
}

var (
	_ usage.TxStore    = (*Store)(nil)
	_ usage.PlanStore  = (*Store)(nil)
	_ usage.PlanWriter = (*Store)(nil)
)

// New wraps db.
func New(db DB) *Store {
	return &Store{db: db}
}

const upsertCurrentSQL = `
INSERT INTO resource_usage_current (organization_id, resource_type, current_usage, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (organization_id, resource_type)
DO UPDATE SET current_usage = EXCLUDED.current_usage, updated_at = EXCLUDED.updated_at`

const appendSampleSQL = `
INSERT INTO resource_usage_history (organization_id, resource_type, usage_value, recorded_at)
VALUES ($1, $2, $3, $4)`

const queryCurrentSQL = `
SELECT resource_type, current_usage
FROM resource_usage_current
WHERE organization_id = $1
  AND ($2::text[] IS NULL OR resource_type = ANY($2))`

const queryHistorySQL = `
SELECT recorded_at, usage_value
FROM resource_usage_history
WHERE organization_id = $1
  AND resource_type = $2
  AND ($3::timestamptz IS NULL OR recorded_at >= $3)
  AND ($4::timestamptz IS NULL OR recorded_at <= $4)
ORDER BY recorded_at DESC, id DESC
LIMIT $5`

const selectPlanSQL = `SELECT plan_tier FROM subscription_plans WHERE organization_id = $1`

const upsertPlanSQL = `
INSERT INTO subscription_plans (organization_id, plan_tier, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (organization_id)
DO UPDATE SET plan_tier = EXCLUDED.plan_tier, updated_at = EXCLUDED.updated_at`

func (s *Store) UpsertCurrentUsage(ctx context.Context, organizationID string, rt quota.ResourceType, value int64) error {
	_, err := s.db.Exec(ctx, upsertCurrentSQL, organizationID, rt.String(), value)
	return err
}

func (s *Store) AppendUsageSample(ctx context.Context, sample quota.UsageSample) error {
	_, err := s.db.Exec(ctx, appendSampleSQL,
		sample.OrganizationID, sample.ResourceType.String(), sample.UsageValue, sample.RecordedAt)
	return err
}

// RecordUsage writes current usage and the sample in one transaction.
func (s *Store) RecordUsage(ctx context.Context, sample quota.UsageSample) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertCurrentSQL,
			sample.OrganizationID, sample.ResourceType.String(), sample.UsageValue); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, appendSampleSQL,
			sample.OrganizationID, sample.ResourceType.String(), sample.UsageValue, sample.RecordedAt)
		return err
	})
}

func (s *Store) QueryCurrentUsage(ctx context.Context, organizationID string, filter ...quota.ResourceType) ([]quota.CurrentUsage, error) {
	var names []string
	for _, rt := range filter {
		names = append(names, rt.String())
	}

	rows, err := s.db.Query(ctx, queryCurrentSQL, organizationID, names)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (quota.CurrentUsage, error) {
		var (
			name string
			u    quota.CurrentUsage
		)
		if err := row.Scan(&name, &u.CurrentUsage); err != nil {
			return u, err
		}
		u.ResourceType = quota.ParseResourceType(name)
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	// Rows written by a newer deployment may carry types this build does not know.
	out = slices.DeleteFunc(out, func(u quota.CurrentUsage) bool { return !u.ResourceType.IsKnown() })
	slices.SortFunc(out, func(a, b quota.CurrentUsage) int { return cmp.Compare(a.ResourceType, b.ResourceType) })
	return out, nil
}

func (s *Store) QueryUsageHistory(ctx context.Context, organizationID string, rt quota.ResourceType, q quota.HistoryQuery) ([]quota.HistoryPoint, error) {
	q = q.Normalize()

	rows, err := s.db.Query(ctx, queryHistorySQL, organizationID, rt.String(), nullTime(q.From), nullTime(q.To), q.Limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (quota.HistoryPoint, error) {
		var p quota.HistoryPoint
		err := row.Scan(&p.Timestamp, &p.UsageValue)
		p.Timestamp = p.Timestamp.UTC()
		return p, err
	})
}

// SubscriptionPlan implements usage.PlanStore.
func (s *Store) SubscriptionPlan(ctx context.Context, organizationID string) (quota.PlanTier, error) {
	var tier string
	if err := s.db.QueryRow(ctx, selectPlanSQL, organizationID).Scan(&tier); err != nil {
		if pg.IsNotFoundError(err) {
			return "", usage.ErrPlanNotFound
		}
		return "", err
	}
	return quota.PlanTier(tier), nil
}

// SetPlan assigns a subscription plan to an organization.
func (s *Store) SetPlan(ctx context.Context, organizationID string, tier quota.PlanTier) error {
	if organizationID == "" {
		return errors.New("pgstore: organization id is required")
	}
	_, err := s.db.Exec(ctx, upsertPlanSQL, organizationID, string(tier))
	return err
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
