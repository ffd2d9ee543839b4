package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamarena/quotakit/pkg/logger"
)

func TestGroup(t *testing.T) {
	attr := logger.Group("req", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "req", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "n", g[1].Key)
}

func TestErrors(t *testing.T) {
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	empty := logger.Errors(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestOrganizationID(t *testing.T) {
	attr := logger.OrganizationID("org-1")
	require.Equal(t, "organization_id", attr.Key)
	assert.Equal(t, "org-1", attr.Value.String())

	assert.True(t, logger.OrganizationID("").Equal(slog.Attr{}))
}

type stringer string

func (s stringer) String() string { return string(s) }

func TestDomainAttrs(t *testing.T) {
	attr := logger.ResourceType(stringer("team"))
	require.Equal(t, "resource_type", attr.Key)
	assert.Equal(t, "team", attr.Value.String())

	attr = logger.PlanTier("pro")
	require.Equal(t, "plan_tier", attr.Key)
	assert.Equal(t, "pro", attr.Value.Any())

	attr = logger.State(stringer("ready"))
	require.Equal(t, "state", attr.Key)
	assert.Equal(t, "ready", attr.Value.String())

	assert.Equal(t, "bucket", logger.Bucket("usage").Key)
	assert.Equal(t, "backend", logger.Backend("redis").Key)
	assert.Equal(t, int64(3), logger.Count(3).Value.Int64())
	assert.Equal(t, int64(2), logger.Recipients(2).Value.Int64())
}
