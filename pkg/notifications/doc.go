// Package notifications stores user notifications and delivers them over
// pluggable channels.
//
// Manager persists every notification through a Storage before attempting
// delivery, so a failing channel never loses a message. Deliverers include
// MultiDeliverer for fan-out, EmailDeliverer for email and NoOpDeliverer.
//
// LimitNotifier is the collaborator the resource limit provider calls when an
// organization approaches or reaches a plan limit:
//
//	manager := notifications.NewManager(notifications.NewMemoryStorage(),
//		notifications.NewEmailDeliverer(sender, lookupEmail))
//	notifier := notifications.NewLimitNotifier(manager,
//		notifications.WithUpgradeURL("https://app.example.com/billing"))
//
//	notifier.SendLimitReached(ctx, org, quota.ResourceTeam, 5, ownerIDs)
//
// Limit notifications carry the resource and usage under the Data* keys and
// are tagged with KindLimitWarning or KindLimitReached.
package notifications
