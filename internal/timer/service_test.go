package timer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"studybuddy/backend/internal/config"
	"studybuddy/backend/internal/models"
	"studybuddy/backend/internal/storage"
	"studybuddy/backend/internal/storage/storagetest"
)

const ownerID = "owner-1"

func newClockedService(store *storagetest.MockStorage, at time.Time) (*Service, *time.Time) {
	current := at
	svc := NewService(store)
	svc.now = func() time.Time { return current }
	return svc, &current
}

func seedWorkRoom(store *storagetest.MockStorage) *models.Room {
	return store.SeedRoom(models.Room{
		Model:         gorm.Model{ID: 1},
		Name:          "Deep Focus",
		OwnerID:       ownerID,
		TimerDuration: config.WorkDuration,
		TimerMode:     models.TimerModeWork,
	})
}

func TestStartThenPauseBanksRemaining(t *testing.T) {
	store := storagetest.New()
	room := seedWorkRoom(store)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, clock := newClockedService(store, start)

	st, err := svc.Start(context.Background(), room.ID, ownerID)
	assert.NoError(t, err)
	assert.True(t, st.IsRunning)
	assert.Equal(t, config.WorkDuration, st.TimeLeft)

	*clock = start.Add(100 * time.Second)
	st, err = svc.Pause(context.Background(), room.ID, ownerID)
	assert.NoError(t, err)
	assert.False(t, st.IsRunning)
	assert.Equal(t, 1400, st.TimeLeft)
	assert.Equal(t, 1400, st.Duration)

	// Resume and pause again: the countdown continues from the banked value.
	*clock = start.Add(200 * time.Second)
	st, err = svc.Start(context.Background(), room.ID, ownerID)
	assert.NoError(t, err)
	assert.Equal(t, 1400, st.TimeLeft)

	*clock = start.Add(250 * time.Second)
	st, err = svc.Pause(context.Background(), room.ID, ownerID)
	assert.NoError(t, err)
	assert.Equal(t, 1350, st.TimeLeft)
}

func TestStartWhileRunningIsNoOp(t *testing.T) {
	store := storagetest.New()
	room := seedWorkRoom(store)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, clock := newClockedService(store, start)

	_, err := svc.Start(context.Background(), room.ID, ownerID)
	assert.NoError(t, err)

	*clock = start.Add(60 * time.Second)
	st, err := svc.Start(context.Background(), room.ID, ownerID)
	assert.NoError(t, err)
	assert.True(t, st.IsRunning)
	assert.Equal(t, config.WorkDuration-60, st.TimeLeft, "second start must not rewind the countdown")

	stored := store.Rooms[room.ID]
	assert.Equal(t, start, stored.TimerStartedAt.UTC())
}

func TestStateReadPersistsExpiry(t *testing.T) {
	store := storagetest.New()
	room := seedWorkRoom(store)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, clock := newClockedService(store, start)

	_, err := svc.Start(context.Background(), room.ID, ownerID)
	assert.NoError(t, err)

	*clock = start.Add(30 * time.Minute)
	st, err := svc.State(context.Background(), room.ID)
	assert.NoError(t, err)
	assert.False(t, st.IsRunning)
	assert.Equal(t, models.TimerModeBreak, st.Mode)
	assert.Equal(t, config.BreakDuration, st.TimeLeft)

	stored := store.Rooms[room.ID]
	assert.False(t, stored.TimerIsRunning)
	assert.Equal(t, models.TimerModeBreak, stored.TimerMode)
	assert.Equal(t, config.BreakDuration, stored.TimerDuration)

	// Any reader may observe the flip; later reads see the settled state.
	st, err = svc.State(context.Background(), room.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TimerModeBreak, st.Mode)
}

func TestStatePublishesExpiryEvent(t *testing.T) {
	store := storagetest.New()
	room := seedWorkRoom(store)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, clock := newClockedService(store, start)

	_, err := svc.Start(context.Background(), room.ID, ownerID)
	assert.NoError(t, err)
	store.Events = nil

	*clock = start.Add(time.Hour)
	_, err = svc.State(context.Background(), room.ID)
	assert.NoError(t, err)

	assert.Len(t, store.Events, 1)
	assert.Equal(t, models.EventTimer, store.Events[0].Type)
	assert.Equal(t, room.ID, store.Events[0].RoomID)
}

func TestResetReturnsToWorkDefaults(t *testing.T) {
	store := storagetest.New()
	room := store.SeedRoom(models.Room{
		OwnerID:       ownerID,
		TimerDuration: 42,
		TimerMode:     models.TimerModeBreak,
	})
	svc, _ := newClockedService(store, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	st, err := svc.Reset(context.Background(), room.ID, ownerID)
	assert.NoError(t, err)
	assert.False(t, st.IsRunning)
	assert.Equal(t, models.TimerModeWork, st.Mode)
	assert.Equal(t, config.WorkDuration, st.TimeLeft)
}

func TestOwnerGating(t *testing.T) {
	store := storagetest.New()
	room := seedWorkRoom(store)
	svc, _ := newClockedService(store, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	_, err := svc.Start(context.Background(), room.ID, "stranger")
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = svc.Pause(context.Background(), room.ID, "stranger")
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = svc.Reset(context.Background(), room.ID, "stranger")
	assert.ErrorIs(t, err, ErrNotOwner)

	assert.False(t, store.Rooms[room.ID].TimerIsRunning)
}

func TestUnknownRoom(t *testing.T) {
	store := storagetest.New()
	svc, _ := newClockedService(store, time.Now())

	_, err := svc.State(context.Background(), 99)
	assert.ErrorIs(t, err, storage.ErrRoomNotFound)
}
