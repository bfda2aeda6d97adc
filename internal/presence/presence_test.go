package presence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"studybuddy/backend/internal/config"
	"studybuddy/backend/internal/storage/storagetest"
)

func TestHeartbeatTouchesAndReportsWindow(t *testing.T) {
	store := storagetest.New()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(store)
	svc.now = func() time.Time { return now }

	store.On("TouchPresence", mock.Anything, uint(7), "user-1", now).Return(nil)
	store.On("ActiveUsernames", mock.Anything, uint(7), now.Add(-config.PresenceWindow)).
		Return([]string{"alice", "bob"}, nil)

	count, names, err := svc.Heartbeat(context.Background(), 7, "user-1")

	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []string{"alice", "bob"}, names)
	store.AssertExpectations(t)
}

func TestHeartbeatPropagatesTouchError(t *testing.T) {
	store := storagetest.New()
	svc := NewService(store)

	store.On("TouchPresence", mock.Anything, uint(7), "user-1", mock.Anything).
		Return(assert.AnError)

	_, _, err := svc.Heartbeat(context.Background(), 7, "user-1")

	assert.ErrorIs(t, err, assert.AnError)
	store.AssertNotCalled(t, "ActiveUsernames", mock.Anything, mock.Anything, mock.Anything)
}

func TestActiveCutoffUsesThirtySecondWindow(t *testing.T) {
	store := storagetest.New()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(store)
	svc.now = func() time.Time { return now }

	// A user last seen 40 seconds ago falls outside the 30-second window, so
	// the storage query must be handed exactly now-30s as the cutoff.
	store.On("ActiveUsernames", mock.Anything, uint(3), now.Add(-30*time.Second)).
		Return([]string{"carol"}, nil)

	count, err := svc.ActiveCount(context.Background(), 3)

	assert.NoError(t, err)
	assert.Equal(t, 1, count)
	store.AssertExpectations(t)
}

func TestRunJanitorPurgesOnTick(t *testing.T) {
	store := storagetest.New()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(store)
	svc.now = func() time.Time { return now }

	store.On("PurgeStalePresence", mock.Anything, now.Add(-config.PresenceRetention)).
		Return(int64(2), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RunJanitor(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	store.AssertCalled(t, "PurgeStalePresence", mock.Anything, now.Add(-config.PresenceRetention))
}
