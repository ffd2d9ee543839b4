// Package opsapi is the operator-facing HTTP surface of quotad: health endpoints,
// Prometheus metrics, billing webhooks and per-organization usage endpoints.
//
//	GET  /healthz                               liveness
//	GET  /readyz                                backend checks
//	GET  /metrics                               Prometheus exposition
//	POST /webhooks/paddle                       subscription plan sync
//	GET  /v1/organizations/{org}/usage          usage against the current plan
//	POST /v1/organizations/{org}/reconcile      re-measure metered resources
package opsapi
