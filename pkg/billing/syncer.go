package billing

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/teamarena/quotakit/pkg/logger"
	"github.com/teamarena/quotakit/pkg/quota"
	"github.com/teamarena/quotakit/pkg/usage"
)

// PlanChangeFunc observes a stored plan change.
type PlanChangeFunc func(ctx context.Context, organizationID string, tier quota.PlanTier)

// Syncer keeps subscription plans in step with billing events.
// Paddle does not guarantee delivery order, so an event that occurred before
// the last one applied to the same organization is dropped.
type Syncer struct {
	writer   usage.PlanWriter
	tiers    map[string]quota.PlanTier
	onChange PlanChangeFunc
	logger   *slog.Logger

	mu      sync.Mutex
	applied map[string]time.Time // organization id -> occurred_at of the last applied event
}

// SyncerOption configures a Syncer.
type SyncerOption func(*Syncer)

// WithSyncerLogger sets the syncer logger.
func WithSyncerLogger(l *slog.Logger) SyncerOption {
	return func(s *Syncer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPlanChange registers fn to run after every stored plan change.
func WithPlanChange(fn PlanChangeFunc) SyncerOption {
	return func(s *Syncer) { s.onChange = fn }
}

// NewSyncer creates a Syncer writing through writer. priceTiers maps Paddle
// price ids to the tier they grant.
func NewSyncer(writer usage.PlanWriter, priceTiers map[string]quota.PlanTier, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		writer: writer,
		tiers:   maps.Clone(priceTiers),
		logger:  slog.Default(),
		applied: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("billing_sync"))
	return s
}

// Apply stores the plan tier implied by ev. Events other than subscription
// changes are ignored. Subscriptions that no longer grant a plan fall back to
// quota.DefaultTier.
func (s *Syncer) Apply(ctx context.Context, ev Event) error {
	if !ev.Type.IsSubscription() {
		s.logger.DebugContext(ctx, "billing event ignored", logger.Event(string(ev.Type)))
		return nil
	}
	if ev.OrganizationID == "" {
		return ErrMissingOrganization
	}

	tier, err := s.tierFor(ev)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.applied[ev.OrganizationID]; ok && ev.OccurredAt.Before(last) {
		s.logger.InfoContext(ctx, "stale billing event dropped",
			logger.OrganizationID(ev.OrganizationID),
			logger.Event(string(ev.Type)),
			slog.Time("occurred_at", ev.OccurredAt),
			slog.Time("last_applied_at", last),
		)
		return nil
	}

	if err := s.writer.SetPlan(ctx, ev.OrganizationID, tier); err != nil {
		return errors.Join(ErrPlanUpdateFailed, err)
	}
	if !ev.OccurredAt.IsZero() {
		s.applied[ev.OrganizationID] = ev.OccurredAt
	}

	s.logger.InfoContext(ctx, "subscription plan updated",
		logger.OrganizationID(ev.OrganizationID),
		logger.PlanTier(tier),
		logger.Event(string(ev.Type)),
		slog.String("subscription_id", ev.SubscriptionID),
	)
	if s.onChange != nil {
		s.onChange(ctx, ev.OrganizationID, tier)
	}
	return nil
}

func (s *Syncer) tierFor(ev Event) (quota.PlanTier, error) {
	if ev.Type == EventSubscriptionCanceled || !ev.Status.grantsPlan() {
		return quota.DefaultTier, nil
	}
	tier, ok := s.tiers[ev.PriceID]
	if !ok {
		return "", errors.Join(ErrUnknownPrice, errors.New(ev.PriceID))
	}
	return tier, nil
}
