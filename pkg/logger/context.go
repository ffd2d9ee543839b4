package logger

import (
	"context"
	"log/slog"
)

type organizationKey struct{}

// WithOrganization stores the organization id in ctx so that loggers built
// with OrganizationExtractor tag every record with it.
func WithOrganization(ctx context.Context, organizationID string) context.Context {
	return context.WithValue(ctx, organizationKey{}, organizationID)
}

// OrganizationFromContext returns the organization id stored by WithOrganization.
func OrganizationFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(organizationKey{}).(string)
	return id, ok && id != ""
}

// OrganizationExtractor injects "organization_id" from the context.
func OrganizationExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := OrganizationFromContext(ctx); ok {
			return OrganizationID(id), true
		}
		return slog.Attr{}, false
	}
}
