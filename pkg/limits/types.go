package limits

import (
	"maps"

	"github.com/teamarena/quotakit/pkg/quota"
)

// TierLimits maps plan tiers to the limit of one resource type.
type TierLimits map[quota.PlanTier]int64

// Table is the full limit configuration: resource type -> tier -> limit.
type Table map[quota.ResourceType]TierLimits

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for rt, tiers := range t {
		out[rt] = maps.Clone(tiers)
	}
	return out
}

// DefaultTable returns the built-in limit table.
// The team and teamMember rows are fixed for compatibility with existing plans.
func DefaultTable() Table {
	return Table{
		quota.ResourceTeam:         {quota.TierBasic: 5, quota.TierPro: 25, quota.TierEnterprise: 100},
		quota.ResourceTeamMember:   {quota.TierBasic: 10, quota.TierPro: 25, quota.TierEnterprise: 50},
		quota.ResourceGoal:         {quota.TierBasic: 20, quota.TierPro: 100, quota.TierEnterprise: 500},
		quota.ResourceCompetition:  {quota.TierBasic: 3, quota.TierPro: 20, quota.TierEnterprise: 100},
		quota.ResourceReport:       {quota.TierBasic: 5, quota.TierPro: 50, quota.TierEnterprise: 250},
		quota.ResourceDashboard:    {quota.TierBasic: 2, quota.TierPro: 10, quota.TierEnterprise: 50},
		quota.ResourceMediaStorage: {quota.TierBasic: 500, quota.TierPro: 5000, quota.TierEnterprise: 50000},
	}
}

// descriptor carries the human-facing labels of a resource type.
type descriptor struct {
	displayName string
	description string
}

var descriptors = map[quota.ResourceType]descriptor{
	quota.ResourceTeam:         {"Teams", "Sales teams in the organization"},
	quota.ResourceTeamMember:   {"Team members", "Members per team"},
	quota.ResourceGoal:         {"Goals", "Active sales goals"},
	quota.ResourceCompetition:  {"Competitions", "Running competitions"},
	quota.ResourceReport:       {"Reports", "Saved reports"},
	quota.ResourceDashboard:    {"Dashboards", "Custom dashboards"},
	quota.ResourceMediaStorage: {"Media storage", "Uploaded media in MB"},
}

// DisplayName returns the label shown for a resource type.
func DisplayName(rt quota.ResourceType) string {
	if d, ok := descriptors[rt]; ok {
		return d.displayName
	}
	return rt.String()
}
