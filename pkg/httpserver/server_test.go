package httpserver_test

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamarena/quotakit/pkg/httpserver"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

// start runs srv in the background and waits for its start hook.
func start(t *testing.T, ctx context.Context, handler http.Handler, opts ...httpserver.Option) (*httpserver.Server, <-chan error) {
	t.Helper()

	started := make(chan struct{})
	opts = append([]httpserver.Option{
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithShutdownTimeout(100 * time.Millisecond),
		httpserver.WithStartHook(func(*slog.Logger) { close(started) }),
	}, opts...)
	srv := httpserver.New(opts...)

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, handler) }()

	select {
	case <-started:
	case err := <-done:
		require.FailNow(t, "run returned early", "%v", err)
	case <-time.After(time.Second):
		require.FailNow(t, "server did not start")
	}
	return srv, done
}

func waitDone(t *testing.T, done <-chan error) {
	t.Helper()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "run did not finish")
	}
}

func TestServer_ContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv, done := start(t, ctx, okHandler())
	require.NotEmpty(t, srv.Addr())

	resp, err := http.Get("http://" + srv.Addr())
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	waitDone(t, done)
	assert.NoError(t, srv.Shutdown(context.Background()), "shutdown after run is a no-op")
}

func TestServer_Shutdown(t *testing.T) {
	t.Parallel()

	var stopped atomic.Int32
	srv, done := start(t, context.Background(), okHandler(),
		httpserver.WithStopHook(func(*slog.Logger) { stopped.Add(1) }),
	)

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, srv.Shutdown(context.Background()))
	waitDone(t, done)
	assert.Equal(t, int32(1), stopped.Load(), "stop hooks run once")
}

func TestServer_ShutdownBeforeRun(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr("127.0.0.1:0"))
	assert.NoError(t, srv.Shutdown(context.Background()))
	assert.Empty(t, srv.Addr())
}

func TestServer_StartErrors(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr(":invalid"))
	err := srv.Run(context.Background(), okHandler())
	assert.ErrorIs(t, err, httpserver.ErrStart)

	ctx, cancel := context.WithCancel(context.Background())
	running, done := start(t, ctx, okHandler())
	err = running.Run(context.Background(), okHandler())
	assert.ErrorIs(t, err, httpserver.ErrStart, "second Run")
	cancel()
	waitDone(t, done)
}

func TestServer_Timeouts(t *testing.T) {
	t.Parallel()

	hs := &http.Server{ReadTimeout: 7 * time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	_, done := start(t, ctx, nil,
		httpserver.WithServer(hs),
		httpserver.WithReadTimeout(time.Second),
		httpserver.WithWriteTimeout(2*time.Second),
		httpserver.WithIdleTimeout(3*time.Second),
	)

	assert.Equal(t, 7*time.Second, hs.ReadTimeout, "preset field wins")
	assert.Equal(t, 2*time.Second, hs.WriteTimeout)
	assert.Equal(t, 3*time.Second, hs.IdleTimeout)
	assert.Equal(t, "127.0.0.1:0", hs.Addr)
	assert.NotNil(t, hs.Handler)

	cancel()
	waitDone(t, done)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	hs := &http.Server{}
	ctx, cancel := context.WithCancel(context.Background())
	srv := httpserver.NewFromConfig(httpserver.Config{
		Addr:         "127.0.0.1:0",
		WriteTimeout: 5 * time.Second,
	}, httpserver.WithServer(hs))

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, okHandler()) }()
	require.Eventually(t, func() bool { return srv.Addr() != "" }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 5*time.Second, hs.WriteTimeout)
	assert.Zero(t, hs.ReadTimeout, "zero config values are skipped")

	cancel()
	waitDone(t, done)
}

func TestOptionPanics(t *testing.T) {
	t.Parallel()

	tests := map[string]func(){
		"addr":       func() { httpserver.WithAddr("") },
		"read":       func() { httpserver.WithReadTimeout(0) },
		"write":      func() { httpserver.WithWriteTimeout(-time.Second) },
		"idle":       func() { httpserver.WithIdleTimeout(-time.Second) },
		"shutdown":   func() { httpserver.WithShutdownTimeout(0) },
		"server":     func() { httpserver.WithServer(nil) },
		"start hook": func() { httpserver.WithStartHook(nil) },
		"stop hook":  func() { httpserver.WithStopHook(nil) },
	}
	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Panics(t, fn)
		})
	}

	assert.NotPanics(t, func() { httpserver.WithLogger(nil) })
}
