package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamarena/quotakit/pkg/limits"
	"github.com/teamarena/quotakit/pkg/logger"
	"github.com/teamarena/quotakit/pkg/quota"
)

// Keys of Notification.Data set on limit notifications.
const (
	DataResourceType = "resource_type"
	DataResourceName = "resource_name"
	DataCurrentUsage = "current_usage"
	DataLimit        = "limit"
	DataPercentage   = "usage_percentage"
)

// LimitNotifier turns threshold crossings into user notifications.
// It is fire-and-forget: failures are logged and never returned.
type LimitNotifier struct {
	manager    *Manager
	logger     *slog.Logger
	upgradeURL string
	ttl        time.Duration
	now        func() time.Time
}

// LimitNotifierOption configures a LimitNotifier.
type LimitNotifierOption func(*LimitNotifier)

// WithLimitNotifierLogger sets the logger.
func WithLimitNotifierLogger(l *slog.Logger) LimitNotifierOption {
	return func(n *LimitNotifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithUpgradeURL attaches an "Upgrade plan" action to every limit notification.
func WithUpgradeURL(url string) LimitNotifierOption {
	return func(n *LimitNotifier) { n.upgradeURL = url }
}

// WithExpiry expires limit notifications ttl after they were sent. Zero keeps them.
func WithExpiry(ttl time.Duration) LimitNotifierOption {
	return func(n *LimitNotifier) { n.ttl = ttl }
}

// NewLimitNotifier creates a LimitNotifier on top of manager.
func NewLimitNotifier(manager *Manager, opts ...LimitNotifierOption) *LimitNotifier {
	n := &LimitNotifier{
		manager: manager,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.logger.With(logger.Component("limit_notifier"))
	return n
}

// SendLimitWarning tells recipients that rt is close to its limit.
func (n *LimitNotifier) SendLimitWarning(ctx context.Context, organizationID string, rt quota.ResourceType, currentUsage, limit int64, recipients []string) {
	name := limits.DisplayName(rt)
	pct := quota.UsagePercentage(currentUsage, limit)

	notif := n.base(organizationID, rt, KindLimitWarning)
	notif.Type = TypeWarning
	notif.Priority = PriorityHigh
	notif.Title = "Approaching your plan limit"
	notif.Message = fmt.Sprintf("%s: %d of %d used (%.0f%%).", name, currentUsage, limit, pct)
	notif.Data[DataCurrentUsage] = currentUsage
	notif.Data[DataLimit] = limit
	notif.Data[DataPercentage] = pct

	n.send(ctx, recipients, notif)
}

// SendLimitReached tells recipients that rt reached its limit. Usage may be past
// the limit and is not known here, so the notification carries only the limit.
func (n *LimitNotifier) SendLimitReached(ctx context.Context, organizationID string, rt quota.ResourceType, limit int64, recipients []string) {
	name := limits.DisplayName(rt)

	notif := n.base(organizationID, rt, KindLimitReached)
	notif.Type = TypeError
	notif.Priority = PriorityUrgent
	notif.Title = "Plan limit reached"
	notif.Message = fmt.Sprintf("%s: the limit of %d has been reached.", name, limit)
	notif.Data[DataLimit] = limit

	n.send(ctx, recipients, notif)
}

func (n *LimitNotifier) base(organizationID string, rt quota.ResourceType, kind Kind) Notification {
	notif := Notification{
		OrganizationID: organizationID,
		Kind:           kind,
		Data: map[string]any{
			DataResourceType: rt.String(),
			DataResourceName: limits.DisplayName(rt),
		},
	}
	if n.upgradeURL != "" {
		notif.Actions = []Action{{Label: "Upgrade plan", URL: n.upgradeURL, Style: "primary"}}
	}
	if n.ttl > 0 {
		exp := n.now().Add(n.ttl)
		notif.ExpiresAt = &exp
	}
	return notif
}

func (n *LimitNotifier) send(ctx context.Context, recipients []string, notif Notification) {
	attrs := []any{
		logger.OrganizationID(notif.OrganizationID),
		logger.Event(string(notif.Kind)),
		slog.String("resource_type", notif.Data[DataResourceType].(string)),
		logger.Recipients(len(recipients)),
	}
	if len(recipients) == 0 {
		n.logger.WarnContext(ctx, "no recipients for limit notification", attrs...)
		return
	}

	if err := n.manager.SendToUsers(ctx, recipients, notif); err != nil {
		n.logger.ErrorContext(ctx, "failed to send limit notification", append(attrs, logger.Error(err))...)
		return
	}
	n.logger.InfoContext(ctx, "limit notification sent", attrs...)
}
