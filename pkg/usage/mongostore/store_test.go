package mongostore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamarena/quotakit/pkg/mongo"
	"github.com/teamarena/quotakit/pkg/quota"
	"github.com/teamarena/quotakit/pkg/usage"
	"github.com/teamarena/quotakit/pkg/usage/mongostore"
)

func setupStore(t *testing.T) *mongostore.Store {
	t.Helper()

	url := os.Getenv("MONGODB_URL")
	if url == "" {
		t.Skip("MONGODB_URL not set, skipping MongoDB integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := mongo.NewWithDatabase(ctx, mongo.Config{
		ConnectionURL:  url,
		Database:       "quotakit_test_" + uuid.NewString()[:8],
		ConnectTimeout: 5 * time.Second,
		RetryAttempts:  1,
	})
	if err != nil {
		t.Skipf("db not available: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = db.Client().Disconnect(context.Background())
	})

	store := mongostore.New(db)
	require.NoError(t, store.EnsureIndexes(ctx))
	return store
}

func TestStore_CurrentUsage(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertCurrentUsage(ctx, "org-1", quota.ResourceGoal, 7))
	require.NoError(t, store.UpsertCurrentUsage(ctx, "org-1", quota.ResourceTeam, 3))
	require.NoError(t, store.UpsertCurrentUsage(ctx, "org-1", quota.ResourceTeam, 4))

	all, err := store.QueryCurrentUsage(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, []quota.CurrentUsage{
		{ResourceType: quota.ResourceTeam, CurrentUsage: 4},
		{ResourceType: quota.ResourceGoal, CurrentUsage: 7},
	}, all)

	filtered, err := store.QueryCurrentUsage(ctx, "org-1", quota.ResourceGoal)
	require.NoError(t, err)
	assert.Equal(t, []quota.CurrentUsage{{ResourceType: quota.ResourceGoal, CurrentUsage: 7}}, filtered)
}

func TestStore_History(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, v := range []int64{1, 2, 3, 4} {
		require.NoError(t, store.AppendUsageSample(ctx, quota.UsageSample{
			OrganizationID: "org-1",
			ResourceType:   quota.ResourceTeam,
			UsageValue:     v,
			RecordedAt:     base.Add(time.Duration(i) * time.Hour),
		}))
	}

	points, err := store.QueryUsageHistory(ctx, "org-1", quota.ResourceTeam, quota.HistoryQuery{Limit: 3})
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, int64(4), points[0].UsageValue)
	assert.True(t, points[0].Timestamp.Equal(base.Add(3*time.Hour)))

	ranged, err := store.QueryUsageHistory(ctx, "org-1", quota.ResourceTeam, quota.HistoryQuery{
		From: base.Add(time.Hour),
		To:   base.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, int64(3), ranged[0].UsageValue)
	assert.Equal(t, int64(2), ranged[1].UsageValue)
}

func TestStore_SubscriptionPlan(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.SubscriptionPlan(ctx, "org-1")
	assert.ErrorIs(t, err, usage.ErrPlanNotFound)

	require.NoError(t, store.SetPlan(ctx, "org-1", quota.TierEnterprise))
	tier, err := store.SubscriptionPlan(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, quota.TierEnterprise, tier)
}
