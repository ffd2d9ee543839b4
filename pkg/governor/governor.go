package governor

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/teamarena/quotakit/pkg/billing"
	"github.com/teamarena/quotakit/pkg/email"
	"github.com/teamarena/quotakit/pkg/limitprovider"
	"github.com/teamarena/quotakit/pkg/limits"
	"github.com/teamarena/quotakit/pkg/logger"
	"github.com/teamarena/quotakit/pkg/meter"
	"github.com/teamarena/quotakit/pkg/notifications"
	"github.com/teamarena/quotakit/pkg/quota"
	"github.com/teamarena/quotakit/pkg/usage"
	"github.com/teamarena/quotakit/pkg/usagecache"
)

// Kit holds the process-wide quota components built from one Config.
// Providers created by NewProvider share its cache, stores and notifier.
type Kit struct {
	Cache         *usagecache.Cache
	Limits        *limits.Factory
	Store         usage.Store
	Plans         usage.PlanStore
	Tracker       *usage.Tracker
	Notifications *notifications.Manager
	Notifier      *notifications.LimitNotifier
	Reconciler    *meter.Reconciler

	// Billing and Webhooks are nil unless a Paddle webhook secret is configured.
	Billing  *billing.Syncer
	Webhooks *billing.PaddleWebhooks

	cfg     Config
	logger  *slog.Logger
	health  func(context.Context) error
	closers []func() error
}

// New builds every component and connects the configured backend.
// On failure everything opened so far is released.
func New(ctx context.Context, cfg Config, opts ...Option) (*Kit, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	k := &Kit{
		cfg:    cfg,
		logger: o.logger.With(logger.Component("governor")),
	}
	if err := k.build(ctx, o); err != nil {
		return nil, errors.Join(err, k.Close())
	}

	k.logger.InfoContext(ctx, "quota kit ready",
		logger.Backend(cfg.Backend),
		logger.Count(len(k.Reconciler.ResourceTypes())),
	)
	return k, nil
}

func (k *Kit) build(ctx context.Context, o *options) error {
	b, err := openBackend(ctx, k.cfg, o, o.logger)
	if b.close != nil {
		k.closers = append(k.closers, b.close)
	}
	if err != nil {
		return err
	}
	k.Store, k.Plans, k.health = b.store, b.plans, b.health

	if k.Limits, err = loadLimits(ctx, k.cfg.LimitsFile); err != nil {
		return err
	}

	cacheOpts := []usagecache.Option{usagecache.WithLogger(o.logger)}
	if o.registerer != nil {
		cacheOpts = append(cacheOpts, usagecache.WithRegisterer(o.registerer))
	}
	if k.Cache, err = usagecache.New(k.cfg.Cache, cacheOpts...); err != nil {
		return errors.Join(ErrCache, err)
	}
	k.Cache.StartPurger(k.cfg.Cache.PurgeInterval)
	k.closers = append(k.closers, k.Cache.Close)

	k.Tracker = usage.NewTracker(k.Store, usage.WithCache(k.Cache), usage.WithLogger(o.logger))

	if err := k.buildNotifications(o); err != nil {
		return err
	}
	if err := k.buildReconciler(ctx, o); err != nil {
		return err
	}
	return k.buildBilling(o)
}

func loadLimits(ctx context.Context, path string) (*limits.Factory, error) {
	if path == "" {
		return limits.NewFactory(limits.DefaultTable()), nil
	}
	src, err := limits.NewYAMLFileSource(path)
	if err != nil {
		return nil, errors.Join(ErrLimits, err)
	}
	f, err := limits.NewFactoryFromSource(ctx, src)
	if err != nil {
		return nil, errors.Join(ErrLimits, err)
	}
	return f, nil
}

func (k *Kit) buildNotifications(o *options) error {
	deliverers := slices.Clone(o.deliverers)
	if o.resolver != nil {
		sender, err := email.NewSender(k.cfg.Email)
		if err != nil {
			return errors.Join(ErrEmail, err)
		}
		deliverers = append(deliverers, notifications.NewEmailDeliverer(sender, o.resolver,
			notifications.WithEmailDelivererLogger(o.logger)))
	}

	var deliverer notifications.Deliverer
	switch len(deliverers) {
	case 0:
		deliverer = notifications.NoOpDeliverer{}
	case 1:
		deliverer = deliverers[0]
	default:
		deliverer = notifications.NewMultiDeliverer(deliverers,
			notifications.WithMultiDelivererLogger(o.logger))
	}

	storage := o.storage
	if storage == nil {
		storage = notifications.NewMemoryStorage()
	}

	k.Notifications = notifications.NewManager(storage, deliverer, notifications.WithManagerLogger(o.logger))

	notifierOpts := []notifications.LimitNotifierOption{notifications.WithLimitNotifierLogger(o.logger)}
	if k.cfg.UpgradeURL != "" {
		notifierOpts = append(notifierOpts, notifications.WithUpgradeURL(k.cfg.UpgradeURL))
	}
	k.Notifier = notifications.NewLimitNotifier(k.Notifications, notifierOpts...)
	return nil
}

func (k *Kit) buildReconciler(ctx context.Context, o *options) error {
	registry := meter.NewRegistry()
	for rt, fn := range o.meters {
		registry.Register(rt, fn)
	}

	if k.cfg.S3.Enabled() {
		m, err := meter.NewS3Meter(ctx, k.cfg.S3, o.s3Options...)
		if err != nil {
			return errors.Join(ErrMeter, err)
		}
		m.Register(registry)
	}

	k.Reconciler = meter.NewReconciler(registry, k.Tracker, meter.WithLogger(o.logger))
	return nil
}

func (k *Kit) buildBilling(o *options) error {
	if !k.cfg.Billing.Enabled() {
		return nil
	}
	writer, ok := k.Plans.(usage.PlanWriter)
	if !ok {
		return errors.Join(ErrBilling, errors.New("plan store is read-only"))
	}
	tiers, err := k.cfg.Billing.Tiers()
	if err != nil {
		return errors.Join(ErrBilling, err)
	}
	if k.Webhooks, err = billing.NewPaddleWebhooks(k.cfg.Billing.WebhookSecret); err != nil {
		return errors.Join(ErrBilling, err)
	}

	// Cached usage rows carry limits of the previous plan.
	k.Billing = billing.NewSyncer(writer, tiers,
		billing.WithSyncerLogger(o.logger),
		billing.WithPlanChange(func(_ context.Context, org string, _ quota.PlanTier) {
			k.Cache.InvalidateUsage(org)
		}),
	)
	return nil
}

// Healthchecks returns the readiness checks of the opened backend keyed by
// name. The in-memory backend has none.
func (k *Kit) Healthchecks() map[string]func(context.Context) error {
	checks := make(map[string]func(context.Context) error, 1)
	if k.health != nil {
		checks[k.cfg.Backend] = k.health
	}
	return checks
}

// NewProvider creates a limit provider for one organization context.
// recipients may be nil, which sends escalations to nobody.
func (k *Kit) NewProvider(recipients limitprovider.RecipientsFunc, opts ...limitprovider.Option) *limitprovider.Provider {
	base := []limitprovider.Option{
		limitprovider.WithCache(k.Cache),
		limitprovider.WithNotifier(k.Notifier),
		limitprovider.WithRecipients(recipients),
		limitprovider.WithLogger(k.logger),
		limitprovider.WithConfig(k.cfg.Provider),
	}
	return limitprovider.New(k.Plans, k.Limits, k.Tracker, append(base, opts...)...)
}

// Close stops the purger and releases connections opened by New, in reverse order.
func (k *Kit) Close() error {
	var errs []error
	for i := len(k.closers) - 1; i >= 0; i-- {
		if err := k.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	k.closers = nil
	return errors.Join(errs...)
}
