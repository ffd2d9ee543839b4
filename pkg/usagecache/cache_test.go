package usagecache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamarena/quotakit/pkg/quota"
	"github.com/teamarena/quotakit/pkg/usagecache"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newCache(t *testing.T) (*usagecache.Cache, *clock) {
	t.Helper()

	clk := &clock{now: time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)}
	c, err := usagecache.New(usagecache.DefaultConfig(), usagecache.WithClock(clk.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, clk
}

func sampleUsage() []quota.ResourceUsage {
	return []quota.ResourceUsage{
		quota.NewResourceUsage(quota.ResourceTeam, 4, 5),
		quota.NewResourceUsage(quota.ResourceTeamMember, 3, 10),
		quota.NewResourceUsage(quota.ResourceGoal, 20, 20),
	}
}

func TestCache_Defaults(t *testing.T) {
	t.Parallel()

	c, err := usagecache.New(usagecache.Config{})
	require.NoError(t, err)

	cfg := c.Config()
	assert.Equal(t, 24*time.Hour, cfg.LimitsTTL)
	assert.Equal(t, 5*time.Minute, cfg.UsageTTL)
	assert.Equal(t, 30*time.Minute, cfg.HistoryTTL)
	assert.Equal(t, time.Minute, cfg.PurgeInterval)
}

func TestCache_Limits(t *testing.T) {
	t.Parallel()

	c, clk := newCache(t)
	rows := []quota.ResourceLimit{
		{PlanTier: quota.TierBasic, ResourceType: quota.ResourceTeam, LimitValue: 5},
	}
	c.SetLimits(quota.TierBasic, rows, 0)
	rows[0].LimitValue = 99

	got, ok := c.Limits(quota.TierBasic)
	require.True(t, ok)
	assert.Equal(t, int64(5), got[0].LimitValue, "cache keeps its own copy")

	_, ok = c.Limits(quota.TierPro)
	assert.False(t, ok)

	clk.Advance(24 * time.Hour)
	_, ok = c.Limits(quota.TierBasic)
	assert.True(t, ok)

	clk.Advance(time.Second)
	_, ok = c.Limits(quota.TierBasic)
	assert.False(t, ok)
}

func TestCache_UsageRoundTrip(t *testing.T) {
	t.Parallel()

	c, clk := newCache(t)
	c.SetUsage("org-1", sampleUsage(), 0)

	got, ok := c.Usage("org-1")
	require.True(t, ok)
	assert.Equal(t, sampleUsage(), got)

	entry, ok := c.UsageEntry("org-1", quota.ResourceTeamMember)
	require.True(t, ok)
	assert.Equal(t, int64(3), entry.CurrentUsage)

	_, ok = c.UsageEntry("org-1", quota.ResourceDashboard)
	assert.False(t, ok)

	clk.Advance(5*time.Minute + time.Second)
	_, ok = c.Usage("org-1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(usagecache.BucketUsage), "expired entry is evicted on read")
}

func TestCache_CustomTTL(t *testing.T) {
	t.Parallel()

	c, clk := newCache(t)
	c.SetUsage("org-1", sampleUsage(), time.Second)

	clk.Advance(2 * time.Second)
	_, ok := c.Usage("org-1")
	assert.False(t, ok)
}

func TestCache_UpdateUsageEntry(t *testing.T) {
	t.Parallel()

	t.Run("no cached array", func(t *testing.T) {
		t.Parallel()

		c, _ := newCache(t)
		assert.False(t, c.UpdateUsageEntry("org-1", quota.ResourceTeam, 5, 5))

		_, ok := c.Usage("org-1")
		assert.False(t, ok, "update must not create an entry")
		assert.Equal(t, 0, c.Len(usagecache.BucketUsage))
	})

	t.Run("updates only the target resource", func(t *testing.T) {
		t.Parallel()

		c, _ := newCache(t)
		before := sampleUsage()
		c.SetUsage("org-1", before, 0)

		require.True(t, c.UpdateUsageEntry("org-1", quota.ResourceTeam, 5, 5))

		got, ok := c.Usage("org-1")
		require.True(t, ok)
		require.Len(t, got, 3)

		team := got[0]
		assert.Equal(t, int64(5), team.CurrentUsage)
		assert.Equal(t, int64(5), team.Limit)
		assert.Equal(t, 100.0, team.UsagePercentage)
		assert.True(t, team.LimitReached)
		assert.False(t, team.NearLimit)

		assert.Equal(t, before[1], got[1])
		assert.Equal(t, before[2], got[2])
	})

	t.Run("resource type not in array", func(t *testing.T) {
		t.Parallel()

		c, _ := newCache(t)
		c.SetUsage("org-1", sampleUsage(), 0)

		assert.False(t, c.UpdateUsageEntry("org-1", quota.ResourceDashboard, 1, 2))
		got, _ := c.Usage("org-1")
		assert.Len(t, got, 3)
	})

	t.Run("preserves the array ttl clock", func(t *testing.T) {
		t.Parallel()

		c, clk := newCache(t)
		c.SetUsage("org-1", sampleUsage(), 0)

		clk.Advance(4 * time.Minute)
		require.True(t, c.UpdateUsageEntry("org-1", quota.ResourceTeam, 5, 5))

		clk.Advance(90 * time.Second)
		_, ok := c.Usage("org-1")
		assert.False(t, ok, "the point update does not extend the lifetime of the array")
	})

	t.Run("satisfies the updater interface", func(t *testing.T) {
		t.Parallel()

		c, _ := newCache(t)
		var u usagecache.UsageEntryUpdater = c
		assert.False(t, u.UpdateUsageEntry("org", quota.ResourceTeam, 1, 1))
	})
}

func TestCache_History(t *testing.T) {
	t.Parallel()

	c, clk := newCache(t)
	q := quota.HistoryQuery{Limit: 30}
	points := []quota.HistoryPoint{
		{Timestamp: clk.Now(), UsageValue: 4},
		{Timestamp: clk.Now().Add(-time.Hour), UsageValue: 3},
	}
	c.SetHistory("org-1", quota.ResourceTeam, q, points, 0)

	got, ok := c.History("org-1", quota.ResourceTeam, q)
	require.True(t, ok)
	assert.Equal(t, points, got)

	_, ok = c.History("org-1", quota.ResourceTeam, quota.HistoryQuery{Limit: 5})
	assert.False(t, ok, "different query is a miss")

	_, ok = c.History("org-1", quota.ResourceGoal, q)
	assert.False(t, ok)

	c.InvalidateHistory("org-1", quota.ResourceTeam)
	_, ok = c.History("org-1", quota.ResourceTeam, q)
	assert.False(t, ok)

	c.SetHistory("org-1", quota.ResourceTeam, q, points, 0)
	clk.Advance(31 * time.Minute)
	_, ok = c.History("org-1", quota.ResourceTeam, q)
	assert.False(t, ok)
}

func TestCache_PurgeExpired(t *testing.T) {
	t.Parallel()

	c, clk := newCache(t)
	c.SetLimits(quota.TierBasic, nil, 0)
	c.SetUsage("org-1", sampleUsage(), 0)
	c.SetUsage("org-2", sampleUsage(), 0)
	c.SetHistory("org-1", quota.ResourceTeam, quota.HistoryQuery{}, nil, 0)

	clk.Advance(6 * time.Minute)
	assert.Equal(t, 2, c.PurgeExpired())
	assert.Equal(t, 0, c.Len(usagecache.BucketUsage))
	assert.Equal(t, 1, c.Len(usagecache.BucketHistory))
	assert.Equal(t, 1, c.Len(usagecache.BucketLimits))

	clk.Advance(25 * time.Minute)
	assert.Equal(t, 1, c.PurgeExpired())
	assert.Equal(t, 0, c.Len(usagecache.BucketHistory))
}

func TestCache_Clear(t *testing.T) {
	t.Parallel()

	fill := func(c *usagecache.Cache) {
		c.SetLimits(quota.TierBasic, nil, 0)
		c.SetUsage("org-1", sampleUsage(), 0)
		c.SetHistory("org-1", quota.ResourceTeam, quota.HistoryQuery{}, nil, 0)
	}

	c, _ := newCache(t)
	fill(c)
	c.Clear(usagecache.BucketUsage)
	assert.Equal(t, 1, c.Len(usagecache.BucketLimits))
	assert.Equal(t, 0, c.Len(usagecache.BucketUsage))
	assert.Equal(t, 1, c.Len(usagecache.BucketHistory))

	c.Clear()
	for _, b := range usagecache.Buckets() {
		assert.Equal(t, 0, c.Len(b), string(b))
	}
}

func TestCache_Purger(t *testing.T) {
	t.Parallel()

	c, err := usagecache.New(usagecache.Config{UsageTTL: 10 * time.Millisecond})
	require.NoError(t, err)

	c.SetUsage("org-1", sampleUsage(), 0)
	c.StartPurger(5 * time.Millisecond)
	c.StartPurger(5 * time.Millisecond)

	assert.Eventually(t, func() bool {
		return c.Len(usagecache.BucketUsage) == 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	c, _ := newCache(t)
	orgs := []string{"a", "b", "c", "d"}

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			org := orgs[i%len(orgs)]
			for j := range 200 {
				switch j % 4 {
				case 0:
					c.SetUsage(org, sampleUsage(), 0)
				case 1:
					c.UpdateUsageEntry(org, quota.ResourceTeam, int64(j), 5)
				case 2:
					if got, ok := c.Usage(org); ok {
						assert.Len(t, got, 3)
					}
				case 3:
					c.PurgeExpired()
				}
			}
		}(i)
	}
	wg.Wait()
}
