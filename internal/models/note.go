package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Note is a personal study note. Notes are private to their owner and never
// shared through a room.
type Note struct {
	gorm.Model

	UserID  string         `gorm:"type:text;not null;index"`
	Title   string         `gorm:"type:varchar(200);not null"`
	Content string         `gorm:"type:text"`
	Tags    pq.StringArray `gorm:"type:text[]"`
}
