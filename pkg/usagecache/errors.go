package usagecache

import "errors"

// ErrMetricsRegistration is returned by New when the collectors cannot be registered.
var ErrMetricsRegistration = errors.New("usagecache: failed to register metrics")
