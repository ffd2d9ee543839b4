package billing

import (
	"errors"
	"fmt"

	"github.com/teamarena/quotakit/pkg/quota"
)

// Config holds the Paddle webhook settings.
// PriceTiers maps Paddle price ids to plan tiers, e.g. "pri_01=pro,pri_02=enterprise".
type Config struct {
	WebhookSecret string            `env:"PADDLE_WEBHOOK_SECRET"`
	PriceTiers    map[string]string `env:"QUOTA_PADDLE_PRICE_TIERS" envSeparator:"," envKeyValSeparator:"="`
}

// Enabled reports whether webhook handling is configured.
func (c Config) Enabled() bool {
	return c.WebhookSecret != ""
}

// Tiers validates PriceTiers and returns them typed.
func (c Config) Tiers() (map[string]quota.PlanTier, error) {
	out := make(map[string]quota.PlanTier, len(c.PriceTiers))
	for price, raw := range c.PriceTiers {
		tier, ok := quota.ParsePlanTier(raw)
		if !ok {
			return nil, errors.Join(ErrInvalidPriceTier, fmt.Errorf("%s=%s", price, raw))
		}
		out[price] = tier
	}
	return out, nil
}
