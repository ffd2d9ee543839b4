package redisstore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/teamarena/quotakit/pkg/quota"
	"github.com/teamarena/quotakit/pkg/usage"
)

// DefaultKeyPrefix namespaces every key the store writes.
const DefaultKeyPrefix = "quota"

// Store keeps usage in Redis.
//
// Layout, with the default prefix:
//
//	quota:usage:{org}          HASH  resource type -> current usage
//	quota:history:{org}:{rt}   ZSET  score = recorded_at in microseconds
//	quota:plans                HASH  organization -> plan tier
type Store struct {
	client    redis.UniversalClient
	prefix    string
	retention int64
}

var (
	_ usage.TxStore    = (*Store)(nil)
	_ usage.PlanStore  = (*Store)(nil)
	_ usage.PlanWriter = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithKeyPrefix replaces DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithHistoryRetention keeps at most n samples per organization and resource type.
// Zero keeps everything.
func WithHistoryRetention(n int64) Option {
	return func(s *Store) {
		if n >= 0 {
			s.retention = n
		}
	}
}

// New wraps client.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) usageKey(org string) string {
	return fmt.Sprintf("%s:usage:%s", s.prefix, org)
}

func (s *Store) historyKey(org string, rt quota.ResourceType) string {
	return fmt.Sprintf("%s:history:%s", s.prefix, quota.HistoryKey(org, rt))
}

func (s *Store) plansKey() string {
	return s.prefix + ":plans"
}

func (s *Store) UpsertCurrentUsage(ctx context.Context, organizationID string, rt quota.ResourceType, value int64) error {
	return s.client.HSet(ctx, s.usageKey(organizationID), rt.String(), value).Err()
}

func (s *Store) AppendUsageSample(ctx context.Context, sample quota.UsageSample) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.appendSample(ctx, pipe, sample)
		return nil
	})
	return err
}

// RecordUsage writes current usage and the sample in one MULTI/EXEC block.
func (s *Store) RecordUsage(ctx context.Context, sample quota.UsageSample) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.usageKey(sample.OrganizationID), sample.ResourceType.String(), sample.UsageValue)
		s.appendSample(ctx, pipe, sample)
		return nil
	})
	return err
}

func (s *Store) appendSample(ctx context.Context, pipe redis.Pipeliner, sample quota.UsageSample) {
	key := s.historyKey(sample.OrganizationID, sample.ResourceType)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(sample.RecordedAt.UnixMicro()),
		Member: encodeSample(sample),
	})
	if s.retention > 0 {
		pipe.ZRemRangeByRank(ctx, key, 0, -s.retention-1)
	}
}

func (s *Store) QueryCurrentUsage(ctx context.Context, organizationID string, filter ...quota.ResourceType) ([]quota.CurrentUsage, error) {
	fields, err := s.client.HGetAll(ctx, s.usageKey(organizationID)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]quota.CurrentUsage, 0, len(fields))
	for name, raw := range fields {
		rt := quota.ParseResourceType(name)
		if !rt.IsKnown() || (len(filter) > 0 && !slices.Contains(filter, rt)) {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redisstore: current usage of %s: %w", name, err)
		}
		out = append(out, quota.CurrentUsage{ResourceType: rt, CurrentUsage: v})
	}
	slices.SortFunc(out, func(a, b quota.CurrentUsage) int { return cmp.Compare(a.ResourceType, b.ResourceType) })
	return out, nil
}

func (s *Store) QueryUsageHistory(ctx context.Context, organizationID string, rt quota.ResourceType, q quota.HistoryQuery) ([]quota.HistoryPoint, error) {
	q = q.Normalize()

	rng := &redis.ZRangeBy{Min: "-inf", Max: "+inf", Count: int64(q.Limit)}
	if !q.From.IsZero() {
		rng.Min = strconv.FormatInt(q.From.UnixMicro(), 10)
	}
	if !q.To.IsZero() {
		rng.Max = strconv.FormatInt(q.To.UnixMicro(), 10)
	}

	members, err := s.client.ZRevRangeByScore(ctx, s.historyKey(organizationID, rt), rng).Result()
	if err != nil {
		return nil, err
	}

	out := make([]quota.HistoryPoint, 0, len(members))
	for _, m := range members {
		p, err := decodeSample(m)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	// Equal scores come back in reverse member order; keep the newest timestamp first.
	slices.SortStableFunc(out, func(a, b quota.HistoryPoint) int { return b.Timestamp.Compare(a.Timestamp) })
	return out, nil
}

// SubscriptionPlan implements usage.PlanStore.
func (s *Store) SubscriptionPlan(ctx context.Context, organizationID string) (quota.PlanTier, error) {
	tier, err := s.client.HGet(ctx, s.plansKey(), organizationID).Result()
	if errors.Is(err, redis.Nil) {
		return "", usage.ErrPlanNotFound
	}
	if err != nil {
		return "", err
	}
	return quota.PlanTier(tier), nil
}

// SetPlan assigns a subscription plan to an organization.
func (s *Store) SetPlan(ctx context.Context, organizationID string, tier quota.PlanTier) error {
	if organizationID == "" {
		return usage.ErrMissingOrganization
	}
	return s.client.HSet(ctx, s.plansKey(), organizationID, string(tier)).Err()
}

// Members are "<unix nanos>|<value>|<id>"; the id keeps equal samples distinct.
func encodeSample(sample quota.UsageSample) string {
	return fmt.Sprintf("%d|%d|%s", sample.RecordedAt.UnixNano(), sample.UsageValue, uuid.NewString())
}

func decodeSample(member string) (quota.HistoryPoint, error) {
	parts := strings.SplitN(member, "|", 3)
	if len(parts) != 3 {
		return quota.HistoryPoint{}, fmt.Errorf("redisstore: malformed history member %q", member)
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return quota.HistoryPoint{}, fmt.Errorf("redisstore: history timestamp: %w", err)
	}
	v, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return quota.HistoryPoint{}, fmt.Errorf("redisstore: history value: %w", err)
	}
	return quota.HistoryPoint{Timestamp: time.Unix(0, nanos).UTC(), UsageValue: v}, nil
}
