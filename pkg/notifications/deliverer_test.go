package notifications_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/teamarena/quotakit/pkg/notifications"
)

func TestMultiDeliverer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n := notifications.Notification{ID: "1", UserID: "u1"}
	boom := errors.New("boom")

	t.Run("partial failure is swallowed", func(t *testing.T) {
		t.Parallel()

		bad, good := &MockDeliverer{}, &MockDeliverer{}
		bad.On("Deliver", mock.Anything, n).Return(boom)
		good.On("Deliver", mock.Anything, n).Return(nil)
		bad.On("DeliverBatch", mock.Anything, mock.Anything).Return(boom)
		good.On("DeliverBatch", mock.Anything, mock.Anything).Return(nil)

		md := notifications.NewMultiDeliverer([]notifications.Deliverer{bad, good},
			notifications.WithMultiDelivererLogger(quiet))
		assert.NoError(t, md.Deliver(ctx, n))
		assert.NoError(t, md.DeliverBatch(ctx, []notifications.Notification{n}))
		good.AssertExpectations(t)
	})

	t.Run("every channel failing is reported", func(t *testing.T) {
		t.Parallel()

		bad := &MockDeliverer{}
		bad.On("Deliver", mock.Anything, n).Return(boom)
		bad.On("DeliverBatch", mock.Anything, mock.Anything).Return(boom)

		md := notifications.NewMultiDeliverer([]notifications.Deliverer{bad},
			notifications.WithMultiDelivererLogger(quiet))
		assert.ErrorIs(t, md.Deliver(ctx, n), boom)
		assert.ErrorIs(t, md.DeliverBatch(ctx, []notifications.Notification{n}), boom)
	})

	t.Run("no channels", func(t *testing.T) {
		t.Parallel()

		md := notifications.NewMultiDeliverer(nil)
		assert.NoError(t, md.Deliver(ctx, n))
		assert.NoError(t, notifications.NoOpDeliverer{}.DeliverBatch(ctx, nil))
	})
}
