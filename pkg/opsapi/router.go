package opsapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teamarena/quotakit/pkg/billing"
	"github.com/teamarena/quotakit/pkg/httpserver"
	"github.com/teamarena/quotakit/pkg/limitprovider"
	"github.com/teamarena/quotakit/pkg/logger"
)

// Reconciler re-measures metered usage of an organization.
type Reconciler interface {
	Reconcile(ctx context.Context, organizationID string) bool
}

// ProviderFactory returns a new, unbound provider. The router calls it once per
// organization and reuses the provider for later requests.
type ProviderFactory func() *limitprovider.Provider

// Option configures the router.
type Option func(*api)

type api struct {
	reconciler    Reconciler
	providers     *providerSet
	logger        *slog.Logger
	checks        map[string]func(context.Context) error
	healthTimeout time.Duration
	gatherer      prometheus.Gatherer
	parser        billing.EventParser
	syncer        *billing.Syncer
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *api) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithHealthchecks adds named readiness checks, each bounded by timeout.
func WithHealthchecks(checks map[string]func(context.Context) error, timeout time.Duration) Option {
	return func(a *api) {
		a.checks = checks
		a.healthTimeout = timeout
	}
}

// WithMetrics serves g at /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(a *api) { a.gatherer = g }
}

// WithWebhooks mounts the Paddle webhook under /webhooks.
func WithWebhooks(parser billing.EventParser, syncer *billing.Syncer) Option {
	return func(a *api) {
		a.parser = parser
		a.syncer = syncer
	}
}

// NewRouter builds the ops router. Endpoints whose dependency is not
// configured are not mounted.
func NewRouter(reconciler Reconciler, providers ProviderFactory, opts ...Option) chi.Router {
	a := &api{
		reconciler: reconciler,
		logger:     slog.Default(),
	}
	if providers != nil {
		a.providers = newProviderSet(providers)
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(logger.Component("opsapi"))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", httpserver.HealthHandler(a.logger, 0, nil))
	r.Get("/readyz", httpserver.HealthHandler(a.logger, a.healthTimeout, a.checks))
	if a.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	}
	if a.parser != nil && a.syncer != nil {
		r.Mount("/webhooks", billing.Routes(a.parser, a.syncer, a.logger))
	}

	r.Route("/v1/organizations/{org}", func(r chi.Router) {
		if a.providers != nil {
			r.Get("/usage", a.usage)
		}
		if a.reconciler != nil {
			r.Post("/reconcile", a.reconcile)
		}
	})
	return r
}
