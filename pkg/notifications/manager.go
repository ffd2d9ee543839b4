package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/teamarena/quotakit/pkg/logger"
)

// Manager stores notifications and then attempts best-effort delivery.
// A stored notification stays available even when delivery fails.
type Manager struct {
	storage   Storage
	deliverer Deliverer
	logger    *slog.Logger
	now       func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger for the Manager.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithManagerClock overrides time.Now for CreatedAt stamps.
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a new notification manager. A nil deliverer disables delivery.
func NewManager(storage Storage, deliverer Deliverer, opts ...ManagerOption) *Manager {
	if deliverer == nil {
		deliverer = NoOpDeliverer{}
	}

	m := &Manager{
		storage:   storage,
		deliverer: deliverer,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send stores and delivers a single notification.
func (m *Manager) Send(ctx context.Context, notif Notification) error {
	if notif.ID == "" {
		notif.ID = uuid.NewString()
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = m.now()
	}

	if err := m.storage.Create(ctx, notif); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if err := m.deliverer.Deliver(ctx, notif); err != nil {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "failed to deliver notification, but it was stored successfully",
			slog.String("notification_id", notif.ID),
			logger.UserID(notif.UserID),
			logger.Error(err),
		)
	}
	return nil
}

// SendToUsers stores one copy of template per user and delivers them as a batch.
// Storing stops at the first failure; copies stored before it are still delivered.
func (m *Manager) SendToUsers(ctx context.Context, userIDs []string, template Notification) error {
	notifications := make([]Notification, 0, len(userIDs))
	var storeErr error

	for _, userID := range userIDs {
		notif := template
		notif.ID = uuid.NewString()
		notif.UserID = userID
		notif.CreatedAt = m.now()

		if err := m.storage.Create(ctx, notif); err != nil {
			storeErr = fmt.Errorf("failed to store notification for user %s: %w", userID, err)
			break
		}
		notifications = append(notifications, notif)
	}

	if len(notifications) > 0 {
		if err := m.deliverer.DeliverBatch(ctx, notifications); err != nil {
			m.logger.LogAttrs(ctx, slog.LevelWarn, "failed to deliver notification batch, but they were stored successfully",
				slog.Int("notification_count", len(notifications)),
				logger.Error(err),
			)
		}
	}
	return storeErr
}

func (m *Manager) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	return m.storage.List(ctx, userID, opts)
}

func (m *Manager) MarkRead(ctx context.Context, userID string, notifIDs ...string) error {
	return m.storage.MarkRead(ctx, userID, notifIDs...)
}

// MarkAllRead marks all unread notifications of a user as read.
func (m *Manager) MarkAllRead(ctx context.Context, userID string) error {
	unread, err := m.storage.List(ctx, userID, ListOptions{OnlyUnread: true})
	if err != nil {
		return err
	}
	if len(unread) == 0 {
		return nil
	}

	ids := make([]string, len(unread))
	for i, n := range unread {
		ids[i] = n.ID
	}
	return m.storage.MarkRead(ctx, userID, ids...)
}

func (m *Manager) CountUnread(ctx context.Context, userID string) (int, error) {
	return m.storage.CountUnread(ctx, userID)
}
