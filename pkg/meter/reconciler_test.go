package meter_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamarena/quotakit/pkg/meter"
	"github.com/teamarena/quotakit/pkg/quota"
	"github.com/teamarena/quotakit/pkg/usage"
)

type recordingWriter struct {
	mu     sync.Mutex
	calls  []map[quota.ResourceType]int64
	result bool
}

func (w *recordingWriter) UpdateMultipleResourceUsage(_ context.Context, _ string, values map[quota.ResourceType]int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, values)
	return w.result
}

var quiet = slog.New(slog.DiscardHandler)

func TestReconciler_Reconcile(t *testing.T) {
	t.Parallel()

	t.Run("writes measured usage through the tracker", func(t *testing.T) {
		t.Parallel()

		store := usage.NewMemoryStore()
		tracker := usage.NewTracker(store, usage.WithLogger(quiet))

		r := meter.NewRegistry()
		r.Register(quota.ResourceTeam, constant(4))
		r.Register(quota.ResourceGoal, constant(12))

		rec := meter.NewReconciler(r, tracker, meter.WithLogger(quiet))
		assert.True(t, rec.Reconcile(context.Background(), "org-1"))

		got := tracker.GetResourceUsage(context.Background(), "org-1")
		assert.Equal(t, []quota.CurrentUsage{
			{ResourceType: quota.ResourceTeam, CurrentUsage: 4},
			{ResourceType: quota.ResourceGoal, CurrentUsage: 12},
		}, got)
	})

	t.Run("failed meter still writes the others", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("count failed")
		r := meter.NewRegistry()
		r.Register(quota.ResourceTeam, constant(4))
		r.Register(quota.ResourceGoal, func(context.Context, string) (int64, error) { return 0, boom })

		w := &recordingWriter{result: true}
		rec := meter.NewReconciler(r, w, meter.WithLogger(quiet))
		assert.False(t, rec.Reconcile(context.Background(), "org-1"))

		require.Len(t, w.calls, 1)
		assert.Equal(t, map[quota.ResourceType]int64{quota.ResourceTeam: 4}, w.calls[0])
	})

	t.Run("all meters failing skips the write", func(t *testing.T) {
		t.Parallel()

		r := meter.NewRegistry()
		r.Register(quota.ResourceTeam, func(context.Context, string) (int64, error) { return 0, errors.New("down") })

		w := &recordingWriter{result: true}
		rec := meter.NewReconciler(r, w, meter.WithLogger(quiet))
		assert.False(t, rec.Reconcile(context.Background(), "org-1"))
		assert.Empty(t, w.calls)
	})

	t.Run("write failure", func(t *testing.T) {
		t.Parallel()

		r := meter.NewRegistry()
		r.Register(quota.ResourceTeam, constant(1))

		rec := meter.NewReconciler(r, &recordingWriter{result: false}, meter.WithLogger(quiet))
		assert.False(t, rec.Reconcile(context.Background(), "org-1"))
	})

	t.Run("empty registry", func(t *testing.T) {
		t.Parallel()

		w := &recordingWriter{result: true}
		rec := meter.NewReconciler(meter.NewRegistry(), w, meter.WithLogger(quiet))
		assert.True(t, rec.Reconcile(context.Background(), "org-1"))
		assert.Empty(t, w.calls)
	})
}

func TestReconciler_Measure(t *testing.T) {
	t.Parallel()

	boom := errors.New("count failed")
	r := meter.NewRegistry()
	r.Register(quota.ResourceTeam, constant(2))
	r.Register(quota.ResourceReport, func(context.Context, string) (int64, error) { return 0, boom })

	rec := meter.NewReconciler(r, &recordingWriter{}, meter.WithLogger(quiet))
	values, err := rec.Measure(context.Background(), "org-1")

	assert.ErrorIs(t, err, meter.ErrMeasureFailed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, map[quota.ResourceType]int64{quota.ResourceTeam: 2}, values)
}
