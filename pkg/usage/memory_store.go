package usage

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/teamarena/quotakit/pkg/quota"
)

// MemoryStore is a concurrency-safe in-memory TxStore and PlanStore.
type MemoryStore struct {
	mu      sync.RWMutex
	current map[string]map[quota.ResourceType]int64
	history map[string][]quota.UsageSample
	plans   map[string]quota.PlanTier
}

var (
	_ TxStore    = (*MemoryStore)(nil)
	_ PlanStore  = (*MemoryStore)(nil)
	_ PlanWriter = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		current: make(map[string]map[quota.ResourceType]int64),
		history: make(map[string][]quota.UsageSample),
		plans:   make(map[string]quota.PlanTier),
	}
}

// SetPlan assigns a subscription plan to an organization.
func (s *MemoryStore) SetPlan(ctx context.Context, organizationID string, tier quota.PlanTier) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if organizationID == "" {
		return ErrMissingOrganization
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[organizationID] = tier
	return nil
}

// SubscriptionPlan implements PlanStore.
func (s *MemoryStore) SubscriptionPlan(ctx context.Context, organizationID string) (quota.PlanTier, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	tier, ok := s.plans[organizationID]
	if !ok {
		return "", ErrPlanNotFound
	}
	return tier, nil
}

func (s *MemoryStore) UpsertCurrentUsage(ctx context.Context, organizationID string, rt quota.ResourceType, value int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsert(organizationID, rt, value)
	return nil
}

func (s *MemoryStore) AppendUsageSample(ctx context.Context, sample quota.UsageSample) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.append(sample)
	return nil
}

// RecordUsage implements TxStore under a single lock.
func (s *MemoryStore) RecordUsage(ctx context.Context, sample quota.UsageSample) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsert(sample.OrganizationID, sample.ResourceType, sample.UsageValue)
	s.append(sample)
	return nil
}

func (s *MemoryStore) QueryCurrentUsage(ctx context.Context, organizationID string, filter ...quota.ResourceType) ([]quota.CurrentUsage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.current[organizationID]
	out := make([]quota.CurrentUsage, 0, len(rows))
	for rt, v := range rows {
		if len(filter) > 0 && !slices.Contains(filter, rt) {
			continue
		}
		out = append(out, quota.CurrentUsage{ResourceType: rt, CurrentUsage: v})
	}
	slices.SortFunc(out, func(a, b quota.CurrentUsage) int {
		return cmp.Compare(a.ResourceType, b.ResourceType)
	})
	return out, nil
}

func (s *MemoryStore) QueryUsageHistory(ctx context.Context, organizationID string, rt quota.ResourceType, q quota.HistoryQuery) ([]quota.HistoryPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q = q.Normalize()

	s.mu.RLock()
	samples := slices.Clone(s.history[quota.HistoryKey(organizationID, rt)])
	s.mu.RUnlock()

	slices.SortStableFunc(samples, func(a, b quota.UsageSample) int {
		return b.RecordedAt.Compare(a.RecordedAt)
	})

	out := make([]quota.HistoryPoint, 0, min(len(samples), q.Limit))
	for _, sm := range samples {
		if !q.From.IsZero() && sm.RecordedAt.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && sm.RecordedAt.After(q.To) {
			continue
		}
		out = append(out, quota.HistoryPoint{Timestamp: sm.RecordedAt, UsageValue: sm.UsageValue})
		if len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) upsert(organizationID string, rt quota.ResourceType, value int64) {
	rows, ok := s.current[organizationID]
	if !ok {
		rows = make(map[quota.ResourceType]int64)
		s.current[organizationID] = rows
	}
	rows[rt] = value
}

func (s *MemoryStore) append(sample quota.UsageSample) {
	key := quota.HistoryKey(sample.OrganizationID, sample.ResourceType)
	s.history[key] = append(s.history[key], sample)
}
