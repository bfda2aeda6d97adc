package models

import "time"

// RoomPresence records the last heartbeat a user sent while viewing a room.
// One row per (room, user) pair; the row is upserted on every heartbeat and
// purged by a background job once it goes stale.
type RoomPresence struct {
	ID       uint      `gorm:"primaryKey"`
	RoomID   uint      `gorm:"not null;uniqueIndex:idx_room_user"`
	UserID   string    `gorm:"type:text;not null;uniqueIndex:idx_room_user"`
	LastSeen time.Time `gorm:"not null;index"`
}
