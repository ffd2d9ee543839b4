// Package logger builds the slog loggers used across quotakit and keeps
// attribute names consistent.
//
// New assembles a JSON or text handler from options. WithEnvironment applies
// the level and format preset of development, staging or production and tags
// records with service and env; FromConfig does the same from the APP_ENV,
// SERVICE_NAME and LOG_LEVEL variables.
//
// Context extractors add request-scoped attributes at log time. The
// organization being loaded travels through WithOrganization:
//
//	log := logger.New(logger.FromConfig(cfg)...)
//	ctx := logger.WithOrganization(ctx, "org-42")
//	log.InfoContext(ctx, "usage updated", logger.ResourceType(quota.ResourceTeam))
//
// Attribute helpers (Error, OrganizationID, ResourceType, PlanTier, Component
// and friends) return an empty attribute for empty input, so callers can pass
// a possibly nil error without checking it first.
package logger
