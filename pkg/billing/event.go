package billing

import (
	"strings"
	"time"
)

// EventType is the Paddle notification type, e.g. "subscription.updated".
type EventType string

const (
	EventSubscriptionCreated   EventType = "subscription.created"
	EventSubscriptionActivated EventType = "subscription.activated"
	EventSubscriptionUpdated   EventType = "subscription.updated"
	EventSubscriptionTrialing  EventType = "subscription.trialing"
	EventSubscriptionPastDue   EventType = "subscription.past_due"
	EventSubscriptionPaused    EventType = "subscription.paused"
	EventSubscriptionResumed   EventType = "subscription.resumed"
	EventSubscriptionCanceled  EventType = "subscription.canceled"
)

// IsSubscription reports whether t describes a subscription change.
func (t EventType) IsSubscription() bool {
	return strings.HasPrefix(string(t), "subscription.")
}

// Status is the Paddle subscription status.
type Status string

const (
	StatusActive   Status = "active"
	StatusTrialing Status = "trialing"
	StatusPastDue  Status = "past_due"
	StatusPaused   Status = "paused"
	StatusCanceled Status = "canceled"
)

// grantsPlan reports whether a subscription in this status keeps its paid tier.
// Past due subscriptions keep it while Paddle retries the payment.
func (s Status) grantsPlan() bool {
	switch s {
	case StatusActive, StatusTrialing, StatusPastDue:
		return true
	default:
		return false
	}
}

// CustomDataOrganizationKey is the custom_data field carrying the organization id.
// Checkout links must set it.
const CustomDataOrganizationKey = "organization_id"

// Event is a verified billing notification reduced to what plan sync needs.
type Event struct {
	ID             string
	Type           EventType
	OccurredAt     time.Time
	SubscriptionID string
	OrganizationID string
	Status         Status
	PriceID        string // first item's price
}
