package limits

import (
	"maps"

	"github.com/teamarena/quotakit/pkg/quota"
)

// Strategy computes the limit of one resource type for a plan tier.
type Strategy interface {
	Resource() quota.ResourceType
	CalculateLimit(tier quota.PlanTier) int64
}

// Calculator wraps a Strategy with the derived checks built only from CalculateLimit.
// Strategies cannot override these checks.
type Calculator struct {
	Strategy
}

// IsLimitReached reports usage >= limit.
func (c Calculator) IsLimitReached(tier quota.PlanTier, usage int64) bool {
	return quota.IsLimitReached(usage, c.CalculateLimit(tier))
}

// UsagePercentage returns the rounded usage percentage. Negative usage clamps to 0
// and a zero limit with positive usage yields +Inf.
func (c Calculator) UsagePercentage(tier quota.PlanTier, usage int64) float64 {
	if usage <= 0 {
		return 0
	}
	return quota.UsagePercentage(usage, c.CalculateLimit(tier))
}

// IsNearLimit reports whether usage is within [80%, 100%) of the limit.
func (c Calculator) IsNearLimit(tier quota.PlanTier, usage int64) bool {
	return quota.IsNearLimit(c.UsagePercentage(tier, usage))
}

// TableStrategy looks the limit up in a per-tier table.
// Tiers missing from the table fall back to the basic tier, then to 0.
type TableStrategy struct {
	resource quota.ResourceType
	limits   TierLimits
}

// NewTableStrategy creates a table-backed strategy. The table is copied.
func NewTableStrategy(rt quota.ResourceType, limits TierLimits) *TableStrategy {
	return &TableStrategy{resource: rt, limits: maps.Clone(limits)}
}

func (s *TableStrategy) Resource() quota.ResourceType {
	return s.resource
}

func (s *TableStrategy) CalculateLimit(tier quota.PlanTier) int64 {
	if v, ok := s.limits[tier]; ok {
		return max(v, 0)
	}
	return max(s.limits[quota.DefaultTier], 0)
}

// noopStrategy resolves resource types nobody configured. Its limit is always 0.
type noopStrategy struct {
	resource quota.ResourceType
}

func (s noopStrategy) Resource() quota.ResourceType      { return s.resource }
func (noopStrategy) CalculateLimit(quota.PlanTier) int64 { return 0 }
