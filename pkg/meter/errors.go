package meter

import "errors"

var (
	ErrMeasureFailed   = errors.New("meter: failed to measure usage")
	ErrMissingS3Config = errors.New("meter: bucket and region are required")
	ErrLoadAWSConfig   = errors.New("meter: failed to load AWS config")
)
