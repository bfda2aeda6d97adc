package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"studybuddy/backend/internal/models"
	"studybuddy/backend/internal/roomhub"
	"studybuddy/backend/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeRoomSocket upgrades the connection and subscribes it to the room's
// live event feed (new messages and timer changes). View-gated like every
// other room read.
func (h *Handler) ServeRoomSocket(c *gin.Context) {
	actorID, _, sessionID := identity(c)
	ctx := c.Request.Context()

	roomID, ok := roomIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	room, err := h.Store.RoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room"})
		return
	}

	if !h.requireView(c, room, actorID, sessionID) {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &roomhub.WSClient{
		UserID: actorID,
		RoomID: roomID,
		Conn:   conn,
		Hub:    h.Hub,
		Send:   make(chan models.RoomEvent, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
