// Package httpserver runs the quota ops listener.
//
// Server wraps net/http with graceful shutdown: Run blocks until its context is
// cancelled or the process receives SIGINT or SIGTERM, then shuts down within
// the configured deadline. Start and stop hooks run around that life-cycle.
//
// HealthHandler serves the liveness and readiness endpoints. Without checks it reports liveness; with
// named checks it runs them concurrently and answers with a JSON report:
//
//	r := chi.NewRouter()
//	r.Get("/healthz", httpserver.HealthHandler(log, 0, nil))
//	r.Get("/readyz", httpserver.HealthHandler(log, 2*time.Second, map[string]func(context.Context) error{
//		"redis": redisconn.Healthcheck(client),
//	}))
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	err := srv.Run(ctx, r)
//
// Run wraps listen errors with ErrStart and Shutdown wraps shutdown errors with
// ErrShutdown.
package httpserver
