// Package billing keeps subscription plans in sync with Paddle.
//
// PaddleWebhooks verifies the Paddle-Signature header with the Paddle SDK and
// decodes subscription notifications into Events. A Syncer maps the
// subscription's first price to a plan tier and writes it through a
// usage.PlanWriter; canceled and paused subscriptions fall back to the default
// tier. Routes exposes both as a chi router:
//
//	hooks, err := billing.NewPaddleWebhooks(cfg.WebhookSecret)
//	if err != nil {
//		return err
//	}
//	tiers, err := cfg.Tiers()
//	if err != nil {
//		return err
//	}
//	r.Mount("/webhooks", billing.Routes(hooks, billing.NewSyncer(store, tiers), log))
//
// Checkout links must carry the organization id in custom_data under
// CustomDataOrganizationKey.
package billing
