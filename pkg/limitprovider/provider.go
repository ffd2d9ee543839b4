package limitprovider

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/teamarena/quotakit/pkg/async"
	"github.com/teamarena/quotakit/pkg/logger"
	"github.com/teamarena/quotakit/pkg/quota"
	"github.com/teamarena/quotakit/pkg/statemachine"
	"github.com/teamarena/quotakit/pkg/usage"
)

// LimitSource resolves the limits of a plan tier. *limits.Factory implements it.
type LimitSource interface {
	LimitsForTier(ctx context.Context, tier quota.PlanTier) ([]quota.ResourceLimit, error)
}

// UsageReader reads raw usage counters. *usage.Tracker implements it.
type UsageReader interface {
	ResourceUsage(ctx context.Context, organizationID string, filter ...quota.ResourceType) ([]quota.CurrentUsage, error)
}

// Cache is the part of the usage cache the provider reads through.
// *usagecache.Cache implements it.
type Cache interface {
	Limits(tier quota.PlanTier) ([]quota.ResourceLimit, bool)
	SetLimits(tier quota.PlanTier, limits []quota.ResourceLimit, ttl time.Duration)
	Usage(organizationID string) ([]quota.ResourceUsage, bool)
	SetUsage(organizationID string, usages []quota.ResourceUsage, ttl time.Duration)
}

// Notifier receives threshold escalations. Implementations log their own
// failures. *notifications.LimitNotifier implements it.
type Notifier interface {
	SendLimitWarning(ctx context.Context, organizationID string, rt quota.ResourceType, currentUsage, limit int64, recipients []string)
	SendLimitReached(ctx context.Context, organizationID string, rt quota.ResourceType, limit int64, recipients []string)
}

// RecipientsFunc returns the user ids notified about an organization's limits.
type RecipientsFunc func(ctx context.Context, organizationID string) []string

// Snapshot is a consistent view of the provider published to subscribers.
type Snapshot struct {
	OrganizationID string
	PlanTier       quota.PlanTier
	State          State
	Usages         []quota.ResourceUsage
	Err            error
}

// Provider aggregates plan, limits and usage of one organization and exposes
// derived views of them. Loads are serialized; queries never perform I/O and
// keep answering from the last good data while a load runs or after it failed.
type Provider struct {
	plans      usage.PlanStore
	source     LimitSource
	reader     UsageReader
	cache      Cache
	notifier   Notifier
	recipients RecipientsFunc
	cfg        Config
	logger     *slog.Logger
	machine    *statemachine.Machine[State, event]

	loadMu sync.Mutex

	mu      sync.RWMutex
	org     string
	tier    quota.PlanTier
	limits  []quota.ResourceLimit
	loaded  bool
	usages  []quota.ResourceUsage
	err     error
	warned  map[quota.ResourceType]struct{}
	reached map[quota.ResourceType]struct{}

	subMu  sync.Mutex
	subs   map[uint64]func(Snapshot)
	nextID uint64
}

// Option configures a Provider.
type Option func(*Provider)

// WithCache reads limits and usage through c before hitting the stores.
func WithCache(c Cache) Option {
	return func(p *Provider) { p.cache = c }
}

// WithNotifier enables threshold escalation.
func WithNotifier(n Notifier) Option {
	return func(p *Provider) { p.notifier = n }
}

// WithRecipients sets who receives escalations.
func WithRecipients(fn RecipientsFunc) Option {
	return func(p *Provider) { p.recipients = fn }
}

// WithLogger sets the provider logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithConfig overrides the default configuration.
func WithConfig(cfg Config) Option {
	return func(p *Provider) { p.cfg = cfg }
}

// New creates a Provider in the uninitialized state. A nil plans store
// resolves every organization to the default tier.
func New(plans usage.PlanStore, source LimitSource, reader UsageReader, opts ...Option) *Provider {
	p := &Provider{
		plans:   plans,
		source:  source,
		reader:  reader,
		cfg:     DefaultConfig(),
		logger:  slog.Default(),
		machine: newMachine(),
		warned:  make(map[quota.ResourceType]struct{}),
		reached: make(map[quota.ResourceType]struct{}),
		subs:    make(map[uint64]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.cfg = p.cfg.withDefaults()
	p.logger = p.logger.With(logger.Component("limit_provider"))
	p.machine.OnTransition(p.onTransition)
	return p
}

// SetOrganization switches the provider to organizationID and runs the full
// load chain. Switching to a different organization drops the previous data
// and escalation flags; setting the same organization again reloads it.
func (p *Provider) SetOrganization(ctx context.Context, organizationID string) error {
	if organizationID == "" {
		return ErrMissingOrganization
	}

	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	p.mu.Lock()
	if p.org != organizationID {
		p.org = organizationID
		p.tier = ""
		p.limits = nil
		p.loaded = false
		p.usages = nil
		p.err = nil
		clear(p.warned)
		clear(p.reached)
	}
	p.mu.Unlock()

	return p.loadAll(logger.WithOrganization(ctx, organizationID), organizationID)
}

// Retry re-runs the full load chain for the current organization.
func (p *Provider) Retry(ctx context.Context) error {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	org := p.OrganizationID()
	if org == "" {
		return ErrNotInitialized
	}
	return p.loadAll(logger.WithOrganization(ctx, org), org)
}

// RefreshUsage reloads usage only, keeping the loaded plan and limits.
func (p *Provider) RefreshUsage(ctx context.Context) error {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	p.mu.RLock()
	org, limits, loaded := p.org, p.limits, p.loaded
	p.mu.RUnlock()
	if !loaded {
		return ErrNotInitialized
	}

	ctx = logger.WithOrganization(ctx, org)
	if err := p.fire(ctx, eventRefresh); err != nil {
		return err
	}
	return p.loadUsage(ctx, org, limits)
}

func (p *Provider) loadAll(ctx context.Context, org string) error {
	if err := p.fire(ctx, eventLoadPlan); err != nil {
		return err
	}

	tier, err := p.loadPlan(ctx, org)
	if err != nil {
		return p.fail(ctx, err)
	}
	p.mu.Lock()
	p.tier = tier
	p.mu.Unlock()
	if err := p.fire(ctx, eventPlanLoaded); err != nil {
		return err
	}

	limits, err := p.loadLimits(ctx, tier)
	if err != nil {
		return p.fail(ctx, err)
	}
	p.mu.Lock()
	p.limits = limits
	p.loaded = true
	p.mu.Unlock()
	if err := p.fire(ctx, eventLimitsLoaded); err != nil {
		return err
	}

	return p.loadUsage(ctx, org, limits)
}

func (p *Provider) loadPlan(ctx context.Context, org string) (quota.PlanTier, error) {
	if p.plans == nil {
		return quota.DefaultTier, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.LoadTimeout)
	defer cancel()

	raw, err := p.plans.SubscriptionPlan(ctx, org)
	switch {
	case errors.Is(err, usage.ErrPlanNotFound):
		p.logger.DebugContext(ctx, "no subscription plan, using default tier",
			logger.OrganizationID(org),
			logger.PlanTier(quota.DefaultTier),
		)
		return quota.DefaultTier, nil
	case err != nil:
		return "", errors.Join(ErrLoadPlan, err)
	}

	tier, ok := quota.ParsePlanTier(string(raw))
	if !ok {
		p.logger.WarnContext(ctx, "unrecognized plan tier, using default tier",
			logger.OrganizationID(org),
			logger.PlanTier(raw),
		)
	}
	return tier, nil
}

func (p *Provider) loadLimits(ctx context.Context, tier quota.PlanTier) ([]quota.ResourceLimit, error) {
	if p.cache != nil {
		if rows, ok := p.cache.Limits(tier); ok {
			return rows, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.LoadTimeout)
	defer cancel()

	rows, err := p.source.LimitsForTier(ctx, tier)
	if err != nil {
		return nil, errors.Join(ErrLoadLimits, err)
	}

	rows = slices.DeleteFunc(slices.Clone(rows), func(l quota.ResourceLimit) bool {
		return !l.ResourceType.IsKnown()
	})
	slices.SortFunc(rows, func(a, b quota.ResourceLimit) int {
		return cmp.Compare(a.ResourceType, b.ResourceType)
	})

	if p.cache != nil {
		p.cache.SetLimits(tier, rows, 0)
	}
	return rows, nil
}

func (p *Provider) loadUsage(ctx context.Context, org string, limits []quota.ResourceLimit) error {
	usages, err := p.fetchUsage(ctx, org, limits)
	if err != nil {
		return p.fail(ctx, err)
	}
	sortForDisplay(usages)

	p.mu.Lock()
	p.usages = usages
	p.err = nil
	warn, reach := p.escalate(usages)
	p.mu.Unlock()

	if err := p.fire(ctx, eventUsageLoaded); err != nil {
		return err
	}
	p.notify(ctx, org, warn, reach)
	return nil
}

// fetchUsage serves usage from the cache when it covers every limit and
// otherwise reads each resource type from the tracker concurrently.
func (p *Provider) fetchUsage(ctx context.Context, org string, limits []quota.ResourceLimit) ([]quota.ResourceUsage, error) {
	if p.cache != nil {
		if cached, ok := p.cache.Usage(org); ok {
			if usages, changed, ok := deriveFromCache(cached, limits); ok {
				if changed {
					p.cache.SetUsage(org, usages, 0)
				}
				return usages, nil
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.LoadTimeout)
	defer cancel()

	futures := async.Each(ctx, limits, func(ctx context.Context, l quota.ResourceLimit) (int64, error) {
		rows, err := p.reader.ResourceUsage(ctx, org, l.ResourceType)
		if err != nil {
			return 0, err
		}
		for _, r := range rows {
			if r.ResourceType == l.ResourceType {
				return r.CurrentUsage, nil
			}
		}
		return 0, nil
	})
	values, errs := async.Settle(futures...)
	if err := errors.Join(errs...); err != nil {
		return nil, errors.Join(ErrLoadUsage, err)
	}

	usages := make([]quota.ResourceUsage, len(limits))
	for i, l := range limits {
		usages[i] = quota.NewResourceUsage(l.ResourceType, values[i], l.LimitValue)
	}
	if p.cache != nil {
		p.cache.SetUsage(org, usages, 0)
	}
	return usages, nil
}

// deriveFromCache rebuilds usage views from cached counters against the
// current limits. It misses when any limit has no cached counter.
func deriveFromCache(cached []quota.ResourceUsage, limits []quota.ResourceLimit) ([]quota.ResourceUsage, bool, bool) {
	byType := make(map[quota.ResourceType]quota.ResourceUsage, len(cached))
	for _, u := range cached {
		byType[u.ResourceType] = u
	}

	changed := len(cached) != len(limits)
	usages := make([]quota.ResourceUsage, len(limits))
	for i, l := range limits {
		c, ok := byType[l.ResourceType]
		if !ok {
			return nil, false, false
		}
		usages[i] = quota.NewResourceUsage(l.ResourceType, c.CurrentUsage, l.LimitValue)
		if c.Limit != l.LimitValue {
			changed = true
		}
	}
	return usages, changed, true
}

func sortForDisplay(usages []quota.ResourceUsage) {
	slices.SortStableFunc(usages, func(a, b quota.ResourceUsage) int {
		if c := cmp.Compare(b.UsagePercentage, a.UsagePercentage); c != 0 {
			return c
		}
		return cmp.Compare(a.ResourceType, b.ResourceType)
	})
}

// escalate marks every resource that newly entered a threshold and returns the
// first of each kind in display order. Flags clear when the condition clears.
// Callers hold p.mu.
func (p *Provider) escalate(usages []quota.ResourceUsage) (warn, reach *quota.ResourceUsage) {
	for i := range usages {
		u := &usages[i]

		if u.LimitReached {
			if _, done := p.reached[u.ResourceType]; !done {
				p.reached[u.ResourceType] = struct{}{}
				if reach == nil {
					reach = u
				}
			}
		} else {
			delete(p.reached, u.ResourceType)
		}

		if u.NearLimit {
			if _, done := p.warned[u.ResourceType]; !done {
				p.warned[u.ResourceType] = struct{}{}
				if warn == nil {
					warn = u
				}
			}
		} else {
			delete(p.warned, u.ResourceType)
		}
	}
	return warn, reach
}

func (p *Provider) notify(ctx context.Context, org string, warn, reach *quota.ResourceUsage) {
	if p.notifier == nil || (warn == nil && reach == nil) {
		return
	}

	var recipients []string
	if p.recipients != nil {
		recipients = p.recipients(ctx, org)
	}

	if reach != nil {
		p.logger.InfoContext(ctx, "resource limit reached",
			logger.OrganizationID(org),
			logger.ResourceType(reach.ResourceType),
			logger.Recipients(len(recipients)),
		)
		p.notifier.SendLimitReached(ctx, org, reach.ResourceType, reach.Limit, recipients)
	}
	if warn != nil {
		p.logger.InfoContext(ctx, "resource near limit",
			logger.OrganizationID(org),
			logger.ResourceType(warn.ResourceType),
			logger.Recipients(len(recipients)),
		)
		p.notifier.SendLimitWarning(ctx, org, warn.ResourceType, warn.CurrentUsage, warn.Limit, recipients)
	}
}

func (p *Provider) fail(ctx context.Context, err error) error {
	p.mu.Lock()
	p.err = err
	org := p.org
	p.mu.Unlock()

	p.logger.ErrorContext(ctx, "limit provider load failed",
		logger.OrganizationID(org),
		logger.State(p.machine.Current()),
		logger.Error(err),
	)
	if ferr := p.fire(ctx, eventFail); ferr != nil {
		return errors.Join(err, ferr)
	}
	return err
}

func (p *Provider) fire(ctx context.Context, ev event) error {
	return p.machine.Fire(ctx, ev, nil)
}

func (p *Provider) onTransition(ctx context.Context, from, to State, ev event) {
	p.logger.DebugContext(ctx, "limit provider state changed",
		slog.String("from", from.String()),
		logger.State(to),
		logger.Event(ev.String()),
	)
	p.publish(to)
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the subscription.
func (p *Provider) Subscribe(fn func(Snapshot)) func() {
	if fn == nil {
		return func() {}
	}

	p.subMu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.subMu.Lock()
			delete(p.subs, id)
			p.subMu.Unlock()
		})
	}
}

func (p *Provider) publish(state State) {
	p.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.subMu.Unlock()
	if len(subs) == 0 {
		return
	}

	snap := p.Snapshot()
	snap.State = state
	for _, fn := range subs {
		fn(snap)
	}
}

// Snapshot returns the current state and data.
func (p *Provider) Snapshot() Snapshot {
	state := p.machine.Current()
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Snapshot{
		OrganizationID: p.org,
		PlanTier:       p.tier,
		State:          state,
		Usages:         slices.Clone(p.usages),
		Err:            p.err,
	}
}

// State returns the loading state.
func (p *Provider) State() State {
	return p.machine.Current()
}

// IsLoading reports whether a load phase is running.
func (p *Provider) IsLoading() bool {
	return p.machine.Is(loadingStates...)
}

// Err returns the error of the last failed load, or nil after a successful one.
func (p *Provider) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}

// OrganizationID returns the active organization.
func (p *Provider) OrganizationID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.org
}

// PlanTier returns the resolved plan tier, or "" before the plan is loaded.
func (p *Provider) PlanTier() quota.PlanTier {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tier
}

// Usages returns the derived usage views sorted by percentage descending,
// then by resource type.
func (p *Provider) Usages() []quota.ResourceUsage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.usages)
}

// GetLimit returns the limit of rt, or 0 when the plan has no entry for it.
func (p *Provider) GetLimit(rt quota.ResourceType) int64 {
	u, _ := p.entry(rt)
	return u.Limit
}

// GetUsage returns the current usage of rt, or 0.
func (p *Provider) GetUsage(rt quota.ResourceType) int64 {
	u, _ := p.entry(rt)
	return u.CurrentUsage
}

// GetUsagePercentage returns the usage percentage of rt, or 0.
func (p *Provider) GetUsagePercentage(rt quota.ResourceType) float64 {
	u, _ := p.entry(rt)
	return u.UsagePercentage
}

// IsLimitReached reports whether rt has reached its limit. Unknown entries report false.
func (p *Provider) IsLimitReached(rt quota.ResourceType) bool {
	u, _ := p.entry(rt)
	return u.LimitReached
}

// IsNearLimit reports whether rt is within the warning band. Unknown entries report false.
func (p *Provider) IsNearLimit(rt quota.ResourceType) bool {
	u, _ := p.entry(rt)
	return u.NearLimit
}

func (p *Provider) entry(rt quota.ResourceType) (quota.ResourceUsage, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, u := range p.usages {
		if u.ResourceType == rt {
			return u, true
		}
	}
	return quota.ResourceUsage{}, false
}
