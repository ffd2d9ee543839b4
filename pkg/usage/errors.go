package usage

import "errors"

var (
	ErrPlanNotFound        = errors.New("usage: subscription plan not found")
	ErrUnknownResource     = errors.New("usage: unknown resource type")
	ErrMissingOrganization = errors.New("usage: organization id is required")
	ErrQueryFailed         = errors.New("usage: failed to query usage")
	ErrWriteFailed         = errors.New("usage: failed to write usage")
)
