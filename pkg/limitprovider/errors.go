package limitprovider

import "errors"

var (
	ErrMissingOrganization = errors.New("limitprovider: organization id is required")
	ErrNotInitialized      = errors.New("limitprovider: no plan loaded")
	ErrLoadPlan            = errors.New("limitprovider: failed to load subscription plan")
	ErrLoadLimits          = errors.New("limitprovider: failed to load limits")
	ErrLoadUsage           = errors.New("limitprovider: failed to load usage")
)
