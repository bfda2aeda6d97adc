package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studybuddy/backend/internal/storage"
	"studybuddy/backend/internal/timer"
)

// TimerState returns the room's derived timer state. Any authenticated user
// may poll it; reading may persist an expiry transition.
func (h *Handler) TimerState(c *gin.Context) {
	h.timerOp(c, func(ctx context.Context, roomID uint, _ string) (timer.State, error) {
		return h.Timer.State(ctx, roomID)
	})
}

// TimerStart starts the countdown. Owner only.
func (h *Handler) TimerStart(c *gin.Context) {
	h.timerOp(c, h.Timer.Start)
}

// TimerPause pauses the countdown, banking the remaining time. Owner only.
func (h *Handler) TimerPause(c *gin.Context) {
	h.timerOp(c, h.Timer.Pause)
}

// TimerReset returns the timer to a stopped 25-minute work session. Owner only.
func (h *Handler) TimerReset(c *gin.Context) {
	h.timerOp(c, h.Timer.Reset)
}

func (h *Handler) timerOp(c *gin.Context, op func(ctx context.Context, roomID uint, actorID string) (timer.State, error)) {
	actorID, _, _ := identity(c)

	roomID, ok := roomIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	state, err := op(c.Request.Context(), roomID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		case errors.Is(err, timer.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the room creator can control the timer"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Timer operation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, state)
}
