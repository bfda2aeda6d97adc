// Package presence tracks who is currently active in a room via last-seen
// heartbeats. "Active" is anyone whose last heartbeat falls inside a short
// sliding window; rows beyond the retention period are purged by a janitor.
package presence

import (
	"context"
	"log"
	"time"

	"studybuddy/backend/internal/config"
	"studybuddy/backend/internal/storage"
)

type Service struct {
	store storage.Storage
	now   func() time.Time
}

func NewService(store storage.Storage) *Service {
	return &Service{store: store, now: time.Now}
}

// Heartbeat records the user's presence in the room and returns the current
// active-user view in the same call, so clients poll a single endpoint.
func (s *Service) Heartbeat(ctx context.Context, roomID uint, userID string) (int, []string, error) {
	now := s.now()
	if err := s.store.TouchPresence(ctx, roomID, userID, now); err != nil {
		return 0, nil, err
	}
	names, err := s.store.ActiveUsernames(ctx, roomID, now.Add(-config.PresenceWindow))
	if err != nil {
		return 0, nil, err
	}
	return len(names), names, nil
}

// ActiveUsernames returns the users seen in the room within the window.
func (s *Service) ActiveUsernames(ctx context.Context, roomID uint) ([]string, error) {
	return s.store.ActiveUsernames(ctx, roomID, s.now().Add(-config.PresenceWindow))
}

// ActiveCount returns how many users are currently active in the room.
func (s *Service) ActiveCount(ctx context.Context, roomID uint) (int, error) {
	names, err := s.ActiveUsernames(ctx, roomID)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// PurgeStale removes presence rows last touched before olderThan.
func (s *Service) PurgeStale(ctx context.Context, olderThan time.Time) (int64, error) {
	return s.store.PurgeStalePresence(ctx, olderThan)
}

// RunJanitor purges presence rows past the retention period on every tick
// until ctx is done. Started once from main.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := s.PurgeStale(ctx, s.now().Add(-config.PresenceRetention))
			if err != nil {
				log.Printf("ERROR: Presence janitor run failed: %v", err)
				continue
			}
			if purged > 0 {
				log.Printf("INFO: Presence janitor purged %d stale rows", purged)
			}
		}
	}
}
