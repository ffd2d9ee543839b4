package quota

import (
	"fmt"
	"time"
)

// ResourceType identifies a quota-governed resource.
// The set is closed: values outside the known list parse to ResourceUnknown.
type ResourceType uint8

const (
	ResourceUnknown ResourceType = iota
	ResourceTeam
	ResourceTeamMember
	ResourceGoal
	ResourceCompetition
	ResourceReport
	ResourceDashboard
	ResourceMediaStorage // measured in MB
)

var resourceNames = [...]string{
	ResourceUnknown:      "unknown",
	ResourceTeam:         "team",
	ResourceTeamMember:   "teamMember",
	ResourceGoal:         "goal",
	ResourceCompetition:  "competition",
	ResourceReport:       "report",
	ResourceDashboard:    "dashboard",
	ResourceMediaStorage: "mediaStorage",
}

// ResourceTypes returns every known resource type in declaration order, excluding ResourceUnknown.
func ResourceTypes() []ResourceType {
	return []ResourceType{
		ResourceTeam,
		ResourceTeamMember,
		ResourceGoal,
		ResourceCompetition,
		ResourceReport,
		ResourceDashboard,
		ResourceMediaStorage,
	}
}

func (r ResourceType) String() string {
	if int(r) < len(resourceNames) {
		return resourceNames[r]
	}
	return resourceNames[ResourceUnknown]
}

// IsKnown reports whether r is one of the governed resource types.
func (r ResourceType) IsKnown() bool {
	return r != ResourceUnknown && int(r) < len(resourceNames)
}

// ParseResourceType maps a resource tag to its ResourceType.
// Unrecognized tags yield ResourceUnknown; this never fails.
func ParseResourceType(s string) ResourceType {
	for i, name := range resourceNames {
		if i != int(ResourceUnknown) && name == s {
			return ResourceType(i)
		}
	}
	return ResourceUnknown
}

func (r ResourceType) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *ResourceType) UnmarshalText(text []byte) error {
	*r = ParseResourceType(string(text))
	return nil
}

// PlanTier is the subscription level that governs which limits apply.
type PlanTier string

const (
	TierBasic      PlanTier = "basic"
	TierPro        PlanTier = "pro"
	TierEnterprise PlanTier = "enterprise"
)

// DefaultTier is used whenever an organization's plan is missing or unrecognized.
const DefaultTier = TierBasic

// PlanTiers returns all plan tiers from lowest to highest.
func PlanTiers() []PlanTier {
	return []PlanTier{TierBasic, TierPro, TierEnterprise}
}

// ParsePlanTier reports whether s names a known plan tier.
func ParsePlanTier(s string) (PlanTier, bool) {
	switch PlanTier(s) {
	case TierBasic, TierPro, TierEnterprise:
		return PlanTier(s), true
	default:
		return DefaultTier, false
	}
}

// ResourceLimit is the limit a plan tier grants for one resource type.
type ResourceLimit struct {
	PlanTier     PlanTier     `json:"plan_tier"`
	ResourceType ResourceType `json:"resource_type"`
	LimitValue   int64        `json:"limit_value"`
	DisplayName  string       `json:"display_name"`
	Description  string       `json:"description,omitempty"`
}

// CurrentUsage is the raw usage counter of one resource type.
type CurrentUsage struct {
	ResourceType ResourceType `json:"resource_type"`
	CurrentUsage int64        `json:"current_usage"`
}

// UsageSample is an append-only historical usage record.
type UsageSample struct {
	OrganizationID string       `json:"organization_id"`
	ResourceType   ResourceType `json:"resource_type"`
	UsageValue     int64        `json:"usage_value"`
	RecordedAt     time.Time    `json:"recorded_at"`
}

// HistoryPoint is a single entry of a usage history query.
type HistoryPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	UsageValue int64     `json:"usage_value"`
}

// HistoryKey builds the cache key for an organization's history of one resource type.
func HistoryKey(organizationID string, rt ResourceType) string {
	return fmt.Sprintf("%s:%s", organizationID, rt)
}

// DefaultHistoryLimit caps history queries that do not set Limit.
const DefaultHistoryLimit = 30

// HistoryQuery narrows a usage history read. Zero From/To leave the range open.
type HistoryQuery struct {
	Limit int
	From  time.Time
	To    time.Time
}

// Normalize applies DefaultHistoryLimit to a non-positive Limit.
func (q HistoryQuery) Normalize() HistoryQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultHistoryLimit
	}
	return q
}

// Equal reports whether both queries select the same samples.
func (q HistoryQuery) Equal(o HistoryQuery) bool {
	return q.Limit == o.Limit && q.From.Equal(o.From) && q.To.Equal(o.To)
}
