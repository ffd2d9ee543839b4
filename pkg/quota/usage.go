package quota

import "math"

// Threshold percentages for escalation.
const (
	NearLimitThreshold = 80.0
	ReachedThreshold   = 100.0
)

// ResourceUsage is the derived usage view of one resource type for an organization.
// It is computed on read and never persisted.
type ResourceUsage struct {
	ResourceType    ResourceType `json:"resource_type"`
	CurrentUsage    int64        `json:"current_usage"`
	Limit           int64        `json:"limit"`
	UsagePercentage float64      `json:"usage_percentage"`
	LimitReached    bool         `json:"limit_reached"`
	NearLimit       bool         `json:"near_limit"`
}

// NewResourceUsage derives the usage view from the raw counter and the limit.
func NewResourceUsage(rt ResourceType, current, limit int64) ResourceUsage {
	pct := UsagePercentage(current, limit)
	return ResourceUsage{
		ResourceType:    rt,
		CurrentUsage:    current,
		Limit:           limit,
		UsagePercentage: pct,
		LimitReached:    IsLimitReached(current, limit),
		NearLimit:       IsNearLimit(pct),
	}
}

// UsagePercentage returns round(current/limit*100).
// Non-positive usage yields 0; positive usage against a zero limit yields +Inf.
func UsagePercentage(current, limit int64) float64 {
	if current <= 0 {
		return 0
	}
	if limit <= 0 {
		return math.Inf(1)
	}
	return math.Round(float64(current) / float64(limit) * 100)
}

// IsLimitReached reports current >= limit.
// A zero limit with zero usage counts as reached.
func IsLimitReached(current, limit int64) bool {
	return current >= limit
}

// IsNearLimit reports whether pct lies in [80, 100).
func IsNearLimit(pct float64) bool {
	return pct >= NearLimitThreshold && pct < ReachedThreshold
}
