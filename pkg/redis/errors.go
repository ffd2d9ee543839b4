package redis

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("redis: failed to parse REDIS_URL")
	ErrRedisNotReady                = errors.New("redis: server not ready")
	ErrEmptyConnectionURL           = errors.New("redis: empty connection URL")
	ErrHealthcheckFailed            = errors.New("redis: healthcheck failed")
)
