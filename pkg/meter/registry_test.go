package meter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teamarena/quotakit/pkg/meter"
	"github.com/teamarena/quotakit/pkg/quota"
)

func constant(v int64) meter.MeterFunc {
	return func(context.Context, string) (int64, error) { return v, nil }
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := meter.NewRegistry()
	r.Register(quota.ResourceGoal, constant(1))
	r.Register(quota.ResourceTeam, constant(2))
	r.Register(quota.ResourceTeam, constant(3))

	assert.Equal(t, []quota.ResourceType{quota.ResourceTeam, quota.ResourceGoal}, r.ResourceTypes())

	v, err := r[quota.ResourceTeam](context.Background(), "org-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), v, "register replaces")

	assert.Panics(t, func() { r.Register(quota.ResourceReport, nil) })
	assert.Panics(t, func() { r.Register(quota.ResourceUnknown, constant(1)) })
}
