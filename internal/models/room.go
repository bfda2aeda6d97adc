package models

import (
	"time"

	"gorm.io/gorm"
)

// Timer modes. A room's timer alternates between the two whenever a running
// session expires.
const (
	TimerModeWork  = "work"
	TimerModeBreak = "break"
)

// Room is a shared study space: a chat feed plus one server-side Pomodoro
// timer synced across everyone in the room.
//
// The timer never stores "time left" directly. TimerDuration holds the
// allotted (or banked, after a pause) seconds and TimerStartedAt the absolute
// start time; the remaining time is derived on every read. TimerStartedAt is
// non-nil exactly when TimerIsRunning is true.
type Room struct {
	gorm.Model

	Name        string `gorm:"not null"`
	Description string
	// OwnerID is the user who created the room. Only the owner controls the
	// timer and the privacy setting, and only the owner may delete the room.
	OwnerID string `gorm:"type:text;not null;index"`

	// IsPrivate hides the room behind a short access code. Code is set exactly
	// when IsPrivate is true; toggling privacy off clears it.
	IsPrivate bool    `gorm:"not null;default:false"`
	Code      *string `gorm:"index"`

	TimerStartedAt *time.Time
	TimerDuration  int    `gorm:"not null;default:1500"`
	TimerIsRunning bool   `gorm:"not null;default:false"`
	TimerMode      string `gorm:"type:varchar(10);not null;default:'work'"`

	// Messages and Presence rows are owned by the room and go away with it.
	Messages []Message      `gorm:"constraint:OnDelete:CASCADE"`
	Presence []RoomPresence `gorm:"constraint:OnDelete:CASCADE"`
}
