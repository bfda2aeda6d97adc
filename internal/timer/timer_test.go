package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"studybuddy/backend/internal/config"
	"studybuddy/backend/internal/models"
)

func TestEvaluateStopped(t *testing.T) {
	room := &models.Room{
		TimerIsRunning: false,
		TimerDuration:  900,
		TimerMode:      models.TimerModeWork,
	}

	st, transitioned := Evaluate(room, time.Now())

	assert.False(t, transitioned)
	assert.False(t, st.IsRunning)
	assert.Equal(t, 900, st.TimeLeft)
	assert.Equal(t, 900, st.Duration)
	assert.Equal(t, models.TimerModeWork, st.Mode)
}

func TestEvaluateRunning(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	room := &models.Room{
		TimerIsRunning: true,
		TimerStartedAt: &started,
		TimerDuration:  config.WorkDuration,
		TimerMode:      models.TimerModeWork,
	}

	st, transitioned := Evaluate(room, started.Add(100*time.Second))

	assert.False(t, transitioned)
	assert.True(t, st.IsRunning)
	assert.Equal(t, 1400, st.TimeLeft)
	assert.Equal(t, config.WorkDuration, st.Duration)
	assert.True(t, room.TimerIsRunning, "a non-expired read must not mutate the room")
}

func TestEvaluateExpiryFlipsWorkToBreak(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	room := &models.Room{
		TimerIsRunning: true,
		TimerStartedAt: &started,
		TimerDuration:  config.WorkDuration,
		TimerMode:      models.TimerModeWork,
	}

	st, transitioned := Evaluate(room, started.Add(1501*time.Second))

	assert.True(t, transitioned)
	assert.False(t, st.IsRunning)
	assert.Equal(t, models.TimerModeBreak, st.Mode)
	assert.Equal(t, config.BreakDuration, st.TimeLeft)
	assert.Equal(t, config.BreakDuration, st.Duration)
	assert.False(t, room.TimerIsRunning)
	assert.Nil(t, room.TimerStartedAt)
	assert.Equal(t, models.TimerModeBreak, room.TimerMode)
}

func TestEvaluateExpiryFlipsBreakToWork(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	room := &models.Room{
		TimerIsRunning: true,
		TimerStartedAt: &started,
		TimerDuration:  config.BreakDuration,
		TimerMode:      models.TimerModeBreak,
	}

	st, transitioned := Evaluate(room, started.Add(300*time.Second))

	assert.True(t, transitioned)
	assert.Equal(t, models.TimerModeWork, st.Mode)
	assert.Equal(t, config.WorkDuration, st.TimeLeft)
}

func TestEvaluateExpiryIsIdempotent(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	room := &models.Room{
		TimerIsRunning: true,
		TimerStartedAt: &started,
		TimerDuration:  config.WorkDuration,
		TimerMode:      models.TimerModeWork,
	}

	now := started.Add(2 * time.Hour)
	first, transitioned := Evaluate(room, now)
	assert.True(t, transitioned)

	second, transitioned := Evaluate(room, now.Add(time.Minute))
	assert.False(t, transitioned)
	assert.Equal(t, first, second)
}

func TestEvaluateFutureStartExceedsDuration(t *testing.T) {
	// Clock skew can put the start timestamp ahead of now. Only the zero
	// floor is clamped, so TimeLeft may exceed Duration.
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	room := &models.Room{
		TimerIsRunning: true,
		TimerStartedAt: &started,
		TimerDuration:  config.WorkDuration,
		TimerMode:      models.TimerModeWork,
	}

	st, transitioned := Evaluate(room, started.Add(-30*time.Second))

	assert.False(t, transitioned)
	assert.True(t, st.IsRunning)
	assert.Equal(t, config.WorkDuration+30, st.TimeLeft)
}
