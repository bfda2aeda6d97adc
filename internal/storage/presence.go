package storage

import (
	"context"
	"log"
	"time"

	"studybuddy/backend/internal/models"

	"gorm.io/gorm/clause"
)

// TouchPresence upserts the (room, user) presence row, moving last_seen
// forward. Heartbeats have no cross-row invariants, so a plain upsert is
// enough.
func (s *Service) TouchPresence(ctx context.Context, roomID uint, userID string, now time.Time) error {
	row := models.RoomPresence{
		RoomID:   roomID,
		UserID:   userID,
		LastSeen: now,
	}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_seen"}),
		}).
		Create(&row).Error
	if err != nil {
		log.Printf("ERROR: Failed to record heartbeat for user %s in room %d: %v", userID, roomID, err)
	}
	return err
}

// ActiveUsernames returns the display names of users whose last heartbeat in
// the room is at or after cutoff.
func (s *Service) ActiveUsernames(ctx context.Context, roomID uint, cutoff time.Time) ([]string, error) {
	var names []string
	err := s.DB.WithContext(ctx).
		Model(&models.RoomPresence{}).
		Joins("JOIN users ON users.id = room_presences.user_id").
		Where("room_presences.room_id = ? AND room_presences.last_seen >= ?", roomID, cutoff).
		Order("users.username asc").
		Pluck("users.username", &names).Error
	if err != nil {
		log.Printf("ERROR: Failed to get active users for room %d: %v", roomID, err)
		return nil, err
	}
	return names, nil
}

// PurgeStalePresence deletes presence rows last touched before olderThan and
// returns how many were removed. Meant for the periodic janitor, not request
// handling.
func (s *Service) PurgeStalePresence(ctx context.Context, olderThan time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("last_seen < ?", olderThan).
		Delete(&models.RoomPresence{})
	if res.Error != nil {
		log.Printf("ERROR: Failed to purge stale presence rows: %v", res.Error)
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
