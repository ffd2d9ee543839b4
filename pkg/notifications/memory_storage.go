package notifications

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

var (
	ErrMissingNotificationID = errors.New("notification ID is required")
	ErrMissingUserID         = errors.New("user ID is required")
)

// MemoryStorage is an in-memory Storage for development and tests.
type MemoryStorage struct {
	mu            sync.RWMutex
	notifications map[string][]Notification // userID -> notifications
	now           func() time.Time
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[string][]Notification),
		now:           time.Now,
	}
}

func (s *MemoryStorage) Create(ctx context.Context, notif Notification) error {
	if notif.ID == "" {
		return ErrMissingNotificationID
	}
	if notif.UserID == "" {
		return ErrMissingUserID
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[notif.UserID] = append(s.notifications[notif.UserID], notif)
	return nil
}

func (s *MemoryStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	now := s.now()

	s.mu.RLock()
	filtered := make([]Notification, 0, len(s.notifications[userID]))
	for _, n := range s.notifications[userID] {
		if n.IsExpired(now) {
			continue
		}
		if opts.OnlyUnread && n.Read {
			continue
		}
		if len(opts.Kinds) > 0 && !slices.Contains(opts.Kinds, n.Kind) {
			continue
		}
		if opts.OrganizationID != "" && n.OrganizationID != opts.OrganizationID {
			continue
		}
		if opts.Since != nil && n.CreatedAt.Before(*opts.Since) {
			continue
		}
		filtered = append(filtered, n)
	}
	s.mu.RUnlock()

	slices.SortStableFunc(filtered, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	start := min(max(opts.Offset, 0), len(filtered))
	end := len(filtered)
	if opts.Limit > 0 {
		end = min(start+opts.Limit, end)
	}
	return filtered[start:end], nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, userID string, notifIDs ...string) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	notifications := s.notifications[userID]
	for i := range notifications {
		if slices.Contains(notifIDs, notifications[i].ID) && !notifications[i].Read {
			notifications[i].MarkAsRead(now)
		}
	}
	return nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications[userID] {
		if !n.Read && !n.IsExpired(now) {
			count++
		}
	}
	return count, nil
}
