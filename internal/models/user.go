package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an authenticated account. Everything else in the system refers to
// users only by their opaque ID.
type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	CreatedAt    time.Time
}

// BeforeCreate is a GORM hook that assigns a fresh UUID when the ID is unset.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
