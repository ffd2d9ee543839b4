package limits

import "errors"

// Domain errors for limits operations
var (
	ErrInvalidLimitTable   = errors.New("limits.errors.invalid_limit_table")
	ErrFailedToLoadLimits  = errors.New("limits.errors.failed_to_load_limits")
	ErrFailedToParseLimits = errors.New("limits.errors.failed_to_parse_limits")
)
