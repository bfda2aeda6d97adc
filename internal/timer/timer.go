package timer

import (
	"time"

	"studybuddy/backend/internal/config"
	"studybuddy/backend/internal/models"
)

// State is the timer snapshot every room member sees. TimeLeft is derived at
// read time from the stored start timestamp, never stored itself, so there is
// no background ticker to drift.
type State struct {
	IsRunning bool   `json:"is_running"`
	TimeLeft  int    `json:"time_left"`
	Mode      string `json:"mode"`
	Duration  int    `json:"duration"`
}

// Evaluate derives the room's current timer state at the given instant.
//
// When a running timer has expired it mutates the room in place: the timer
// stops, the mode flips and the duration resets to the new mode's default.
// The returned bool reports that mutation; callers must persist the room
// before exposing the state. Evaluate itself touches no storage, which keeps
// the transition logic testable without a database.
//
// A start timestamp in the future (clock skew) yields a negative elapsed and
// therefore a TimeLeft above Duration. Only the zero floor is clamped.
func Evaluate(room *models.Room, now time.Time) (State, bool) {
	if !room.TimerIsRunning {
		return State{
			IsRunning: false,
			TimeLeft:  room.TimerDuration,
			Mode:      room.TimerMode,
			Duration:  room.TimerDuration,
		}, false
	}

	elapsed := int(now.Sub(*room.TimerStartedAt).Seconds())
	timeLeft := room.TimerDuration - elapsed

	if timeLeft <= 0 {
		// Session over: stop and flip into the other mode's fresh allotment.
		room.TimerIsRunning = false
		room.TimerStartedAt = nil
		if room.TimerMode == models.TimerModeWork {
			room.TimerMode = models.TimerModeBreak
			room.TimerDuration = config.BreakDuration
		} else {
			room.TimerMode = models.TimerModeWork
			room.TimerDuration = config.WorkDuration
		}
		return State{
			IsRunning: false,
			TimeLeft:  room.TimerDuration,
			Mode:      room.TimerMode,
			Duration:  room.TimerDuration,
		}, true
	}

	return State{
		IsRunning: true,
		TimeLeft:  timeLeft,
		Mode:      room.TimerMode,
		Duration:  room.TimerDuration,
	}, false
}
