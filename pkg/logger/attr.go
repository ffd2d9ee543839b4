package logger

import (
	"fmt"
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// OrganizationID records the organization identifier under the key "organization_id".
// An empty id returns an empty Attr.
func OrganizationID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("organization_id", id)
}

// UserID records a user identifier under the key "user_id".
func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

// ResourceType records a quota resource type under the key "resource_type".
func ResourceType(rt fmt.Stringer) slog.Attr {
	return slog.String("resource_type", rt.String())
}

// PlanTier records a subscription tier under the key "plan_tier".
func PlanTier(tier any) slog.Attr {
	return slog.Any("plan_tier", tier)
}

// Recipients records the number of notification recipients under the key "recipients".
func Recipients(n int) slog.Attr {
	return slog.Int("recipients", n)
}

// Bucket records a cache bucket name under the key "bucket".
func Bucket(name string) slog.Attr {
	return slog.String("bucket", name)
}

// Backend records a storage backend name under the key "backend".
func Backend(name string) slog.Attr {
	return slog.String("backend", name)
}

// State records a state machine state under the key "state".
func State(s fmt.Stringer) slog.Attr {
	return slog.String("state", s.String())
}

// Count records a count under the key "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}
