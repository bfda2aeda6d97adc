package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studybuddy/backend/internal/storage"
)

// RoomPresence records the caller's heartbeat in the room and returns who is
// currently active. Clients poll this while they have the room open.
func (h *Handler) RoomPresence(c *gin.Context) {
	actorID, _, _ := identity(c)
	ctx := c.Request.Context()

	roomID, ok := roomIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	if _, err := h.Store.RoomByID(ctx, roomID); err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record presence"})
		return
	}

	count, users, err := h.Presence.Heartbeat(ctx, roomID, actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record presence"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active_count": count,
		"active_users": users,
	})
}
