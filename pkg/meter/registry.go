package meter

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/teamarena/quotakit/pkg/quota"
)

// MeterFunc measures the live usage of one resource type for an organization.
// It should count at the source of truth: a SQL COUNT, an object store listing.
type MeterFunc func(ctx context.Context, organizationID string) (int64, error)

// Registry maps a resource type to its MeterFunc.
// Not thread-safe: register all meters at startup only.
type Registry map[quota.ResourceType]MeterFunc

// NewRegistry returns a new, empty Registry.
func NewRegistry() Registry {
	return make(Registry)
}

// Register sets or replaces the MeterFunc for rt.
// Panics if fn is nil or rt is not a known resource type.
func (r Registry) Register(rt quota.ResourceType, fn MeterFunc) {
	if fn == nil {
		panic(fmt.Sprintf("meter: MeterFunc for resource %q cannot be nil", rt))
	}
	if !rt.IsKnown() {
		panic(fmt.Sprintf("meter: cannot register unknown resource type %d", rt))
	}
	r[rt] = fn
}

// ResourceTypes returns the registered resource types in declaration order.
func (r Registry) ResourceTypes() []quota.ResourceType {
	return slices.SortedFunc(maps.Keys(r), func(a, b quota.ResourceType) int { return cmp.Compare(a, b) })
}
