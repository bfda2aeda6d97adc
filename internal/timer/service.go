package timer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"studybuddy/backend/internal/config"
	"studybuddy/backend/internal/models"
	"studybuddy/backend/internal/storage"
)

var ErrNotOwner = errors.New("only the room owner can control the timer")

// Service runs every timer operation through a row-locked room transaction.
// Even State may write: reading an expired timer persists the mode flip.
type Service struct {
	store storage.Storage
	now   func() time.Time
}

func NewService(store storage.Storage) *Service {
	return &Service{store: store, now: time.Now}
}

// State returns the room's current timer state, persisting the expiry
// transition when one fires. Any authenticated user may call it.
func (s *Service) State(ctx context.Context, roomID uint) (State, error) {
	var st State
	var transitioned bool
	_, err := s.store.MutateRoom(ctx, roomID, func(room *models.Room) (bool, error) {
		st, transitioned = Evaluate(room, s.now())
		return transitioned, nil
	})
	if err != nil {
		return State{}, err
	}
	if transitioned {
		s.publish(ctx, roomID, st)
	}
	return st, nil
}

// Start begins the countdown. Owner only. Starting an already-running timer
// is a no-op that returns the current state without resetting the start time.
func (s *Service) Start(ctx context.Context, roomID uint, actorID string) (State, error) {
	var st State
	_, err := s.store.MutateRoom(ctx, roomID, func(room *models.Room) (bool, error) {
		if room.OwnerID != actorID {
			return false, ErrNotOwner
		}
		if room.TimerIsRunning {
			var transitioned bool
			st, transitioned = Evaluate(room, s.now())
			return transitioned, nil
		}
		now := s.now()
		room.TimerIsRunning = true
		room.TimerStartedAt = &now
		st, _ = Evaluate(room, now)
		return true, nil
	})
	if err != nil {
		return State{}, err
	}
	s.publish(ctx, roomID, st)
	return st, nil
}

// Pause stops the countdown and banks whatever time is left as the new
// duration, so a later Start resumes from there. Owner only. Pausing a
// paused timer is a no-op.
func (s *Service) Pause(ctx context.Context, roomID uint, actorID string) (State, error) {
	var st State
	_, err := s.store.MutateRoom(ctx, roomID, func(room *models.Room) (bool, error) {
		if room.OwnerID != actorID {
			return false, ErrNotOwner
		}
		if !room.TimerIsRunning {
			st, _ = Evaluate(room, s.now())
			return false, nil
		}
		now := s.now()
		elapsed := int(now.Sub(*room.TimerStartedAt).Seconds())
		remaining := room.TimerDuration - elapsed
		if remaining < 0 {
			remaining = 0
		}
		room.TimerDuration = remaining
		room.TimerIsRunning = false
		room.TimerStartedAt = nil
		st, _ = Evaluate(room, now)
		return true, nil
	})
	if err != nil {
		return State{}, err
	}
	s.publish(ctx, roomID, st)
	return st, nil
}

// Reset unconditionally returns the timer to a stopped 25-minute work
// session. Owner only.
func (s *Service) Reset(ctx context.Context, roomID uint, actorID string) (State, error) {
	var st State
	_, err := s.store.MutateRoom(ctx, roomID, func(room *models.Room) (bool, error) {
		if room.OwnerID != actorID {
			return false, ErrNotOwner
		}
		room.TimerIsRunning = false
		room.TimerStartedAt = nil
		room.TimerMode = models.TimerModeWork
		room.TimerDuration = config.WorkDuration
		st, _ = Evaluate(room, s.now())
		return true, nil
	})
	if err != nil {
		return State{}, err
	}
	s.publish(ctx, roomID, st)
	return st, nil
}

// publish pushes the new state onto the room's event channel so connected
// WebSocket clients see timer changes without polling. Best effort: a publish
// failure never fails the operation that caused it.
func (s *Service) publish(ctx context.Context, roomID uint, st State) {
	payload, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := s.store.PublishRoomEvent(ctx, models.RoomEvent{
		RoomID:  roomID,
		Type:    models.EventTimer,
		Payload: payload,
	}); err != nil {
		log.Printf("ERROR: Failed to publish timer state for room %d: %v", roomID, err)
	}
}
