package models

import "gorm.io/gorm"

// Message is a single chat message in a room. CreatedAt (from gorm.Model) is
// the server-assigned timestamp clients sort on.
type Message struct {
	gorm.Model

	RoomID  uint   `gorm:"not null;index"`
	UserID  string `gorm:"type:text;not null;index"`
	Content string `gorm:"type:text;not null"`
}
