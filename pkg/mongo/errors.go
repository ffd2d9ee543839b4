package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("mongo: failed to connect")
	ErrHealthcheckFailed      = errors.New("mongo: healthcheck failed")
	ErrEmptyConnectionURL     = errors.New("mongo: empty connection URL, set MONGODB_URL")
)
