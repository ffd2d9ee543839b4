package limits_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teamarena/quotakit/pkg/limits"
	"github.com/teamarena/quotakit/pkg/quota"
)

func TestCalculator_Properties(t *testing.T) {
	t.Parallel()

	factory := limits.NewFactory(limits.DefaultTable())

	for _, rt := range quota.ResourceTypes() {
		calc := factory.GetStrategy(rt)
		for _, tier := range quota.PlanTiers() {
			limit := calc.CalculateLimit(tier)
			for usage := int64(0); usage <= limit+2; usage++ {
				assert.Equal(t, usage >= limit, calc.IsLimitReached(tier, usage),
					"%s/%s usage=%d", rt, tier, usage)

				pct := calc.UsagePercentage(tier, usage)
				assert.Equal(t, pct >= 80 && pct < 100, calc.IsNearLimit(tier, usage),
					"%s/%s usage=%d pct=%v", rt, tier, usage, pct)
			}
		}
	}
}

func TestCalculator_TeamThresholds(t *testing.T) {
	t.Parallel()

	team := limits.NewFactory(limits.DefaultTable()).GetStrategy(quota.ResourceTeam)

	assert.Equal(t, float64(80), team.UsagePercentage(quota.TierBasic, 4))
	assert.True(t, team.IsNearLimit(quota.TierBasic, 4))
	assert.False(t, team.IsLimitReached(quota.TierBasic, 4))

	assert.Equal(t, float64(100), team.UsagePercentage(quota.TierBasic, 5))
	assert.False(t, team.IsNearLimit(quota.TierBasic, 5))
	assert.True(t, team.IsLimitReached(quota.TierBasic, 5))

	assert.Equal(t, float64(60), team.UsagePercentage(quota.TierBasic, 3))
	assert.False(t, team.IsNearLimit(quota.TierBasic, 3))
}

func TestCalculator_NegativeUsage(t *testing.T) {
	t.Parallel()

	team := limits.NewFactory(limits.DefaultTable()).GetStrategy(quota.ResourceTeam)

	assert.Equal(t, float64(0), team.UsagePercentage(quota.TierPro, -5))
	assert.False(t, team.IsLimitReached(quota.TierPro, -5))
	assert.False(t, team.IsNearLimit(quota.TierPro, -5))
}

func TestCalculator_ZeroLimit(t *testing.T) {
	t.Parallel()

	calc := limits.Calculator{Strategy: limits.NewTableStrategy(quota.ResourceReport, limits.TierLimits{
		quota.TierBasic: 0,
	})}

	assert.True(t, math.IsInf(calc.UsagePercentage(quota.TierBasic, 1), 1))
	assert.Equal(t, float64(0), calc.UsagePercentage(quota.TierBasic, 0))
	assert.True(t, calc.IsLimitReached(quota.TierBasic, 0))
	assert.False(t, calc.IsNearLimit(quota.TierBasic, 0))
	assert.False(t, calc.IsNearLimit(quota.TierBasic, 3))
}

func TestTableStrategy_TierFallback(t *testing.T) {
	t.Parallel()

	s := limits.NewTableStrategy(quota.ResourceGoal, limits.TierLimits{
		quota.TierBasic: 7,
		quota.TierPro:   -3,
	})

	assert.Equal(t, quota.ResourceGoal, s.Resource())
	assert.Equal(t, int64(7), s.CalculateLimit(quota.TierBasic))
	assert.Equal(t, int64(7), s.CalculateLimit(quota.TierEnterprise))
	assert.Equal(t, int64(7), s.CalculateLimit(quota.PlanTier("gold")))
	assert.Equal(t, int64(0), s.CalculateLimit(quota.TierPro), "negative limits clamp to zero")
}
