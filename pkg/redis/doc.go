// Package redis connects the Redis usage store: Connect parses REDIS_URL and
// pings until the server answers, Healthcheck returns a readiness check.
package redis
