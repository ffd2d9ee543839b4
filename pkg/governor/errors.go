package governor

import "errors"

var (
	ErrConfig         = errors.New("governor: invalid configuration")
	ErrUnknownBackend = errors.New("governor: unknown store backend")
	ErrConnect        = errors.New("governor: failed to connect store backend")
	ErrMigrate        = errors.New("governor: failed to prepare store schema")
	ErrLimits         = errors.New("governor: failed to load limit table")
	ErrCache          = errors.New("governor: failed to create usage cache")
	ErrEmail          = errors.New("governor: failed to create email sender")
	ErrMeter          = errors.New("governor: failed to create usage meter")
	ErrBilling        = errors.New("governor: failed to configure billing sync")
)
