package opsapi_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamarena/quotakit/pkg/billing"
	"github.com/teamarena/quotakit/pkg/governor"
	"github.com/teamarena/quotakit/pkg/httpserver"
	"github.com/teamarena/quotakit/pkg/limitprovider"
	"github.com/teamarena/quotakit/pkg/opsapi"
	"github.com/teamarena/quotakit/pkg/quota"
	"github.com/teamarena/quotakit/pkg/usage"
)

const webhookSecret = "pdl_ntfset_ops"

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	kit    *governor.Kit
	store  *usage.MemoryStore
	reg    *prometheus.Registry
	server *httptest.Server
}

func newFixture(t *testing.T, meterErr error, checks map[string]func(context.Context) error, providerOpts ...limitprovider.Option) *fixture {
	t.Helper()

	store := usage.NewMemoryStore()
	reg := prometheus.NewRegistry()
	cfg := governor.Config{
		Backend: governor.BackendMemory,
		Billing: billing.Config{
			WebhookSecret: webhookSecret,
			PriceTiers:    map[string]string{"pri_pro": "pro"},
		},
	}
	kit, err := governor.New(context.Background(), cfg,
		governor.WithLogger(quiet()),
		governor.WithStore(store, store),
		governor.WithRegisterer(reg),
		governor.WithMeter(quota.ResourceReport, func(context.Context, string) (int64, error) { return 3, meterErr }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, kit.Close()) })

	owners := func(context.Context, string) []string { return []string{"owner-1"} }
	providers := func() *limitprovider.Provider { return kit.NewProvider(owners, providerOpts...) }
	router := opsapi.NewRouter(kit.Reconciler, providers,
		opsapi.WithLogger(quiet()),
		opsapi.WithHealthchecks(checks, time.Second),
		opsapi.WithMetrics(reg),
		opsapi.WithWebhooks(kit.Webhooks, kit.Billing),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &fixture{kit: kit, store: store, reg: reg, server: srv}
}

func (f *fixture) do(t *testing.T, method, path string, body string, header http.Header) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestUsage(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, nil)
	ctx := context.Background()
	require.True(t, f.kit.Tracker.UpdateResourceUsage(ctx, "org-1", quota.ResourceDashboard, 2))

	resp := f.do(t, http.MethodGet, "/v1/organizations/org-1/usage", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	got := decode[opsapi.UsageResponse](t, resp)
	assert.Equal(t, "org-1", got.OrganizationID)
	assert.Equal(t, quota.TierBasic, got.PlanTier)
	require.NotEmpty(t, got.Usages)

	first := got.Usages[0]
	assert.Equal(t, quota.ResourceDashboard, first.ResourceType, "fullest resource first")
	assert.True(t, first.LimitReached)
	require.NotNil(t, first.UsagePercentage)
	assert.InDelta(t, 100, *first.UsagePercentage, 0.001)
}

type countingNotifier struct {
	mu       sync.Mutex
	warnings map[quota.ResourceType]int
	reached  map[quota.ResourceType]int
}

func newCountingNotifier() *countingNotifier {
	return &countingNotifier{
		warnings: map[quota.ResourceType]int{},
		reached:  map[quota.ResourceType]int{},
	}
}

func (n *countingNotifier) SendLimitWarning(_ context.Context, _ string, rt quota.ResourceType, _, _ int64, _ []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings[rt]++
}

func (n *countingNotifier) SendLimitReached(_ context.Context, _ string, rt quota.ResourceType, _ int64, _ []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reached[rt]++
}

func (n *countingNotifier) counts(rt quota.ResourceType) (warnings, reached int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.warnings[rt], n.reached[rt]
}

func TestUsage_NotifiesOncePerCondition(t *testing.T) {
	t.Parallel()

	notifier := newCountingNotifier()
	f := newFixture(t, nil, nil, limitprovider.WithNotifier(notifier))
	ctx := context.Background()
	require.True(t, f.kit.Tracker.UpdateResourceUsage(ctx, "org-1", quota.ResourceTeam, 4))

	for range 3 {
		resp := f.do(t, http.MethodGet, "/v1/organizations/org-1/usage", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	warnings, reached := notifier.counts(quota.ResourceTeam)
	assert.Equal(t, 1, warnings, "repeat reads with unchanged usage notify once")
	assert.Zero(t, reached)

	require.True(t, f.kit.Tracker.UpdateResourceUsage(ctx, "org-1", quota.ResourceTeam, 5))
	for range 2 {
		resp := f.do(t, http.MethodGet, "/v1/organizations/org-1/usage", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	warnings, reached = notifier.counts(quota.ResourceTeam)
	assert.Equal(t, 1, warnings)
	assert.Equal(t, 1, reached)

	resp := f.do(t, http.MethodGet, "/v1/organizations/org-2/usage", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	warnings, reached = notifier.counts(quota.ResourceTeam)
	assert.Equal(t, 1, warnings, "other organizations have their own provider")
	assert.Equal(t, 1, reached)
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	t.Run("writes measured usage", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, nil, nil)
		resp := f.do(t, http.MethodPost, "/v1/organizations/org-1/reconcile", "", nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		usages := f.kit.Tracker.GetResourceUsage(context.Background(), "org-1", quota.ResourceReport)
		require.Len(t, usages, 1)
		assert.Equal(t, int64(3), usages[0].CurrentUsage)
	})

	t.Run("meter failure", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, errors.New("warehouse offline"), nil)
		resp := f.do(t, http.MethodPost, "/v1/organizations/org-1/reconcile", "", nil)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.NotEmpty(t, decode[opsapi.ErrorResponse](t, resp).Error)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	down := map[string]func(context.Context) error{
		"store": func(context.Context) error { return errors.New("connection refused") },
	}
	f := newFixture(t, nil, down)

	resp := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, httpserver.StatusAlive, decode[httpserver.HealthReport](t, resp).Status)

	resp = f.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "connection refused", decode[httpserver.HealthReport](t, resp).Checks["store"])
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, nil)
	resp := f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}

func sign(body string) string {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(ts + ":" + body))
	return fmt.Sprintf("ts=%s;h1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestPaddleWebhook(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, nil)
	body := `{"event_id":"evt_1","event_type":"subscription.activated","data":{"id":"sub_1","status":"active",` +
		`"custom_data":{"organization_id":"org-9"},"items":[{"price":{"id":"pri_pro"}}]}}`

	resp := f.do(t, http.MethodPost, "/webhooks/paddle", body, http.Header{billing.SignatureHeader: {sign(body)}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tier, err := f.store.SubscriptionPlan(context.Background(), "org-9")
	require.NoError(t, err)
	assert.Equal(t, quota.TierPro, tier)

	resp = f.do(t, http.MethodPost, "/webhooks/paddle", body, http.Header{billing.SignatureHeader: {"ts=1;h1=00"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/v1/organizations/org-9/usage", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, quota.TierPro, decode[opsapi.UsageResponse](t, resp).PlanTier)
}

func TestUnconfiguredRoutes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(opsapi.NewRouter(nil, nil, opsapi.WithLogger(quiet())))
	t.Cleanup(srv.Close)

	for _, path := range []string{"/metrics", "/webhooks/paddle", "/v1/organizations/org-1/usage"} {
		resp, err := srv.Client().Get(srv.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}
