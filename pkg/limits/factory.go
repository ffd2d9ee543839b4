package limits

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/teamarena/quotakit/pkg/quota"
)

// Factory resolves strategies by resource type and memoizes one instance per type.
// It is safe for concurrent use.
type Factory struct {
	// table is treated as immutable after construction.
	table Table

	mu         sync.Mutex
	strategies map[quota.ResourceType]Strategy
}

// NewFactory creates a Factory over a copy of table. A nil table yields no limits at all.
func NewFactory(table Table) *Factory {
	if table == nil {
		table = Table{}
	}
	return &Factory{
		table:      table.Clone(),
		strategies: make(map[quota.ResourceType]Strategy),
	}
}

// NewFactoryFromSource loads and validates a limit table before building the Factory.
func NewFactoryFromSource(ctx context.Context, src Source) (*Factory, error) {
	table, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadLimits, err)
	}
	if err := validateTable(table); err != nil {
		return nil, err
	}
	return NewFactory(table), nil
}

// GetStrategy returns the memoized strategy for rt wrapped in a Calculator.
// Unknown or unconfigured resource types resolve to a strategy with a zero limit.
func (f *Factory) GetStrategy(rt quota.ResourceType) Calculator {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok := f.strategies[rt]; ok {
		return Calculator{Strategy: s}
	}

	s := f.build(rt)
	f.strategies[rt] = s
	return Calculator{Strategy: s}
}

// Must be called with lock held.
func (f *Factory) build(rt quota.ResourceType) Strategy {
	switch rt {
	case quota.ResourceTeam,
		quota.ResourceTeamMember,
		quota.ResourceGoal,
		quota.ResourceCompetition,
		quota.ResourceReport,
		quota.ResourceDashboard,
		quota.ResourceMediaStorage:
		if row, ok := f.table[rt]; ok {
			return NewTableStrategy(rt, row)
		}
		return noopStrategy{resource: rt}
	case quota.ResourceUnknown:
		return noopStrategy{resource: quota.ResourceUnknown}
	default:
		return noopStrategy{resource: quota.ResourceUnknown}
	}
}

// Limits returns every configured limit for tier, sorted by resource type.
func (f *Factory) Limits(tier quota.PlanTier) []quota.ResourceLimit {
	types := make([]quota.ResourceType, 0, len(f.table))
	for rt := range f.table {
		if rt.IsKnown() {
			types = append(types, rt)
		}
	}
	slices.Sort(types)

	out := make([]quota.ResourceLimit, 0, len(types))
	for _, rt := range types {
		d := descriptors[rt]
		out = append(out, quota.ResourceLimit{
			PlanTier:     tier,
			ResourceType: rt,
			LimitValue:   f.GetStrategy(rt).CalculateLimit(tier),
			DisplayName:  DisplayName(rt),
			Description:  d.description,
		})
	}
	return out
}

// LimitsForTier adapts Limits to the context-aware loader signature used by callers
// that may also read limits from a remote store. It never fails.
func (f *Factory) LimitsForTier(_ context.Context, tier quota.PlanTier) ([]quota.ResourceLimit, error) {
	return f.Limits(tier), nil
}

// validateTable checks limit configurations for validity.
func validateTable(table Table) error {
	for rt, tiers := range table {
		if !rt.IsKnown() {
			return errors.Join(ErrInvalidLimitTable,
				errors.New("unknown resource type in limit table"))
		}
		for tier, v := range tiers {
			if _, ok := quota.ParsePlanTier(string(tier)); !ok {
				return errors.Join(ErrInvalidLimitTable,
					fmt.Errorf("resource %s has unknown plan tier %q", rt, tier))
			}
			if v < 0 {
				return errors.Join(ErrInvalidLimitTable,
					fmt.Errorf("resource %s has negative limit for tier %s: %d", rt, tier, v))
			}
		}
	}
	return nil
}
