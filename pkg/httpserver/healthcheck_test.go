package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamarena/quotakit/pkg/httpserver"
)

func check(t *testing.T, h http.Handler) (int, httpserver.HealthReport) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report httpserver.HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	return rec.Code, report
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()

		code, report := check(t, httpserver.HealthHandler(nil, 0, nil))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, httpserver.StatusAlive, report.Status)
		assert.Empty(t, report.Checks)
	})

	t.Run("ready", func(t *testing.T) {
		t.Parallel()

		code, report := check(t, httpserver.HealthHandler(nil, time.Second, map[string]func(context.Context) error{
			"redis": ok,
			"store": ok,
		}))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, httpserver.HealthReport{
			Status: httpserver.StatusReady,
			Checks: map[string]string{"redis": "ok", "store": "ok"},
		}, report)
	})

	t.Run("failing check", func(t *testing.T) {
		t.Parallel()

		code, report := check(t, httpserver.HealthHandler(nil, time.Second, map[string]func(context.Context) error{
			"redis": ok,
			"store": func(context.Context) error { return errors.New("connection refused") },
		}))
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, httpserver.StatusNotReady, report.Status)
		assert.Equal(t, "ok", report.Checks["redis"])
		assert.Equal(t, "connection refused", report.Checks["store"])
	})

	t.Run("slow check times out", func(t *testing.T) {
		t.Parallel()

		slow := func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}
		code, report := check(t, httpserver.HealthHandler(nil, 20*time.Millisecond, map[string]func(context.Context) error{"slow": slow}))
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, context.DeadlineExceeded.Error(), report.Checks["slow"])
	})
}
