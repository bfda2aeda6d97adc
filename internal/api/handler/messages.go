package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studybuddy/backend/internal/chat"
	"studybuddy/backend/internal/storage"
)

// ListMessages returns the room's chat feed for polling clients.
func (h *Handler) ListMessages(c *gin.Context) {
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}

	if !h.requireView(c, room, actorID, sessionID) {
		return
	}

	messages, err := h.Chat.List(ctx, roomID, actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage posts a message to the room's feed.
func (h *Handler) SendMessage(c *gin.Context) {
	actorID, username, sessionID := identity(c)
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	if !h.requireView(c, room, actorID, sessionID) {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		return
	}

	message, err := h.Chat.Send(ctx, roomID, actorID, username, req.Content)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyContent) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// DeleteMessage removes a message. Author only; always answers JSON.
func (h *Handler) DeleteMessage(c *gin.Context) {
	actorID, _, _ := identity(c)

	messageID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	if err := h.Chat.Delete(c.Request.Context(), uint(messageID), actorID); err != nil {
		switch {
		case errors.Is(err, storage.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		case errors.Is(err, chat.ErrNotAuthor):
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to delete this message"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
