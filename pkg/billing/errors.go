package billing

import "errors"

var (
	ErrMissingWebhookSecret      = errors.New("billing: webhook secret is required")
	ErrWebhookVerificationFailed = errors.New("billing: webhook signature verification failed")
	ErrInvalidPayload            = errors.New("billing: invalid webhook payload")
	ErrMissingOrganization       = errors.New("billing: organization id missing from subscription custom data")
	ErrUnknownPrice              = errors.New("billing: price is not mapped to a plan tier")
	ErrInvalidPriceTier          = errors.New("billing: price mapped to an unknown plan tier")
	ErrPlanUpdateFailed          = errors.New("billing: failed to update subscription plan")
)
