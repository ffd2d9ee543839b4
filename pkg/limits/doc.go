// Package limits provides plan-tier limit strategies for quota-governed resources.
//
// Each resource type resolves to exactly one Strategy that maps a plan tier to a
// non-negative limit. Strategies are looked up through a Factory which memoizes one
// instance per resource type and never fails: unknown resource types resolve to a
// strategy with a zero limit so that callers decide how to surface the problem.
//
// Key concepts:
//
//   - Table: resource type -> plan tier -> limit, the configuration behind strategies
//   - Strategy: CalculateLimit for one resource type
//   - Calculator: derived checks (IsLimitReached, UsagePercentage, IsNearLimit)
//   - Source: where tables come from (in-memory, YAML)
//
// Basic usage:
//
//	factory := limits.NewFactory(limits.DefaultTable())
//
//	team := factory.GetStrategy(quota.ResourceTeam)
//	team.CalculateLimit(quota.TierBasic)         // 5
//	team.IsNearLimit(quota.TierBasic, 4)         // true (80%)
//	team.IsLimitReached(quota.TierBasic, 5)      // true
//
// Loading limits from configuration:
//
//	src, err := limits.NewYAMLFileSource("limits.yaml")
//	if err != nil {
//	    return err
//	}
//	factory, err := limits.NewFactoryFromSource(ctx, src)
package limits
