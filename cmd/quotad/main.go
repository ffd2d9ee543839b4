// Command quotad serves the quota governor over HTTP: health endpoints, metrics, Paddle
// plan sync and the per-organization usage and reconcile endpoints.
//
// Configuration is read from the environment, optionally seeded from the
// .env files given as arguments.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/teamarena/quotakit/pkg/config"
	"github.com/teamarena/quotakit/pkg/governor"
	"github.com/teamarena/quotakit/pkg/httpserver"
	"github.com/teamarena/quotakit/pkg/limitprovider"
	"github.com/teamarena/quotakit/pkg/logger"
	"github.com/teamarena/quotakit/pkg/opsapi"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("quotad stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(envFiles []string) error {
	if len(envFiles) > 0 {
		if err := config.LoadEnv(envFiles...); err != nil {
			return err
		}
	}

	var logCfg logger.Config
	if err := config.Load(&logCfg); err != nil {
		return err
	}
	log := logger.New(logger.FromConfig(logCfg)...)
	logger.SetAsDefault(log)

	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}
	cfg, err := governor.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	kit, err := governor.New(ctx, cfg, governor.WithLogger(log), governor.WithRegisterer(reg))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := kit.Close(); cerr != nil {
			log.Error("failed to release quota kit", logger.Error(cerr))
		}
	}()

	opts := []opsapi.Option{
		opsapi.WithLogger(log),
		opsapi.WithHealthchecks(kit.Healthchecks(), httpCfg.HealthcheckTimeout),
		opsapi.WithMetrics(reg),
	}
	if kit.Billing != nil {
		opts = append(opts, opsapi.WithWebhooks(kit.Webhooks, kit.Billing))
	}
	providers := func() *limitprovider.Provider { return kit.NewProvider(nil) }
	router := opsapi.NewRouter(kit.Reconciler, providers, opts...)

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	if err := srv.Run(ctx, router); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
