package notifications

import (
	"context"
	"errors"
	"log/slog"

	"github.com/teamarena/quotakit/pkg/logger"
)

// Deliverer handles real-time notification delivery.
type Deliverer interface {
	// Deliver sends notification to user through specific channel.
	Deliver(ctx context.Context, notif Notification) error

	// DeliverBatch sends multiple notifications.
	DeliverBatch(ctx context.Context, notifs []Notification) error
}

// MultiDeliverer fans a notification out to several channels.
// A failing channel is logged and does not stop the others.
type MultiDeliverer struct {
	deliverers []Deliverer
	logger     *slog.Logger
}

// MultiDelivererOption configures a MultiDeliverer.
type MultiDelivererOption func(*MultiDeliverer)

// WithMultiDelivererLogger sets the logger for the MultiDeliverer.
func WithMultiDelivererLogger(l *slog.Logger) MultiDelivererOption {
	return func(m *MultiDeliverer) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMultiDeliverer creates a new multi-channel deliverer.
func NewMultiDeliverer(deliverers []Deliverer, opts ...MultiDelivererOption) *MultiDeliverer {
	m := &MultiDeliverer{
		deliverers: deliverers,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Deliver sends notification through all configured channels.
// It returns the joined errors only when every channel failed.
func (m *MultiDeliverer) Deliver(ctx context.Context, notif Notification) error {
	var errs []error
	for i, d := range m.deliverers {
		if err := d.Deliver(ctx, notif); err != nil {
			m.logger.LogAttrs(ctx, slog.LevelError, "failed to deliver notification",
				slog.String("notification_id", notif.ID),
				logger.UserID(notif.UserID),
				slog.Int("deliverer_index", i),
				logger.Error(err),
			)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 && len(errs) == len(m.deliverers) {
		return errors.Join(errs...)
	}
	return nil
}

// DeliverBatch sends multiple notifications through all channels.
func (m *MultiDeliverer) DeliverBatch(ctx context.Context, notifs []Notification) error {
	var errs []error
	for i, d := range m.deliverers {
		if err := d.DeliverBatch(ctx, notifs); err != nil {
			m.logger.LogAttrs(ctx, slog.LevelError, "failed to deliver notification batch",
				slog.Int("notification_count", len(notifs)),
				slog.Int("deliverer_index", i),
				logger.Error(err),
			)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 && len(errs) == len(m.deliverers) {
		return errors.Join(errs...)
	}
	return nil
}

// NoOpDeliverer is a deliverer that does nothing.
type NoOpDeliverer struct{}

func (NoOpDeliverer) Deliver(context.Context, Notification) error { return nil }

func (NoOpDeliverer) DeliverBatch(context.Context, []Notification) error { return nil }
