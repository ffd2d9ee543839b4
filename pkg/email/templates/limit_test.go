package templates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamarena/quotakit/pkg/email/templates"
)

func TestLimitTemplates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	data := templates.LimitData{
		OrganizationID: "org-1",
		Resource:       "Teams <beta>",
		CurrentUsage:   4,
		Limit:          5,
		Percentage:     80,
		UpgradeURL:     "https://app.example.com/billing",
	}

	warning, err := templates.Render(ctx, templates.LimitWarning(data))
	require.NoError(t, err)
	assert.Contains(t, warning, "Approaching your plan limit")
	assert.Contains(t, warning, "<strong>4 of 5</strong>")
	assert.Contains(t, warning, "(80%)")
	assert.Contains(t, warning, "Teams &lt;beta&gt;")
	assert.NotContains(t, warning, "<beta>")
	assert.Contains(t, warning, `href="https://app.example.com/billing"`)

	data.UpgradeURL = ""
	reached, err := templates.Render(ctx, templates.LimitReached(data))
	require.NoError(t, err)
	assert.Contains(t, reached, "Plan limit reached")
	assert.Contains(t, reached, "limit of <strong>5</strong>")
	assert.NotContains(t, reached, "Upgrade plan")
}
