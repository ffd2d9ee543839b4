package meter

import (
	"context"
	"errors"
	"log/slog"

	"github.com/teamarena/quotakit/pkg/async"
	"github.com/teamarena/quotakit/pkg/logger"
	"github.com/teamarena/quotakit/pkg/quota"
)

// UsageWriter persists measured usage. *usage.Tracker implements it.
type UsageWriter interface {
	UpdateMultipleResourceUsage(ctx context.Context, organizationID string, values map[quota.ResourceType]int64) bool
}

// Reconciler re-measures usage at the source and writes it through the tracker.
// It repairs drift left by partial batch failures or missed increments.
type Reconciler struct {
	registry Registry
	writer   UsageWriter
	logger   *slog.Logger
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithLogger sets the reconciler logger.
func WithLogger(l *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReconciler creates a Reconciler for the meters in registry.
func NewReconciler(registry Registry, writer UsageWriter, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		registry: registry,
		writer:   writer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("usage_reconciler"))
	return r
}

// ResourceTypes returns the metered resource types in order.
func (r *Reconciler) ResourceTypes() []quota.ResourceType {
	return r.registry.ResourceTypes()
}

// Measure runs every registered meter concurrently. Values of failed meters are
// omitted from the result and their errors are joined with ErrMeasureFailed.
func (r *Reconciler) Measure(ctx context.Context, organizationID string) (map[quota.ResourceType]int64, error) {
	types := r.registry.ResourceTypes()
	futures := async.Each(ctx, types, func(ctx context.Context, rt quota.ResourceType) (int64, error) {
		return r.registry[rt](ctx, organizationID)
	})
	values, errs := async.Settle(futures...)

	out := make(map[quota.ResourceType]int64, len(types))
	var failed []error
	for i, rt := range types {
		if errs[i] != nil {
			r.logger.WarnContext(ctx, "failed to measure usage",
				logger.OrganizationID(organizationID),
				logger.ResourceType(rt),
				logger.Error(errs[i]),
			)
			failed = append(failed, errs[i])
			continue
		}
		out[rt] = values[i]
	}
	if len(failed) > 0 {
		return out, errors.Join(append([]error{ErrMeasureFailed}, failed...)...)
	}
	return out, nil
}

// Reconcile measures and writes usage for organizationID. Successful
// measurements are written even when other meters fail. It reports true only
// when every meter and every write succeeded.
func (r *Reconciler) Reconcile(ctx context.Context, organizationID string) bool {
	values, err := r.Measure(ctx, organizationID)
	if len(values) == 0 {
		return err == nil
	}

	ok := r.writer.UpdateMultipleResourceUsage(ctx, organizationID, values)
	if !ok {
		r.logger.WarnContext(ctx, "failed to write reconciled usage",
			logger.OrganizationID(organizationID),
			logger.Count(len(values)),
		)
	}
	return ok && err == nil
}
