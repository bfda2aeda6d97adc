package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studybuddy/backend/internal/access"
	"studybuddy/backend/internal/models"
	"studybuddy/backend/internal/storage"
)

type roomPayload struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   string `json:"created_at"`
	IsCreator   bool   `json:"is_creator"`
	IsPrivate   bool   `json:"is_private"`
}

func toRoomPayload(room *models.Room, ownerName, actorID string) roomPayload {
	return roomPayload{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.Description,
		CreatedBy:   ownerName,
		CreatedAt:   room.CreatedAt.Format(time.RFC3339),
		IsCreator:   room.OwnerID == actorID,
		IsPrivate:   room.IsPrivate,
	}
}

// ListRooms returns the room directory filtered to what the caller's session
// may see: every public room, their own rooms, and private rooms they hold a
// grant for.
func (h *Handler) ListRooms(c *gin.Context) {
	actorID, _, sessionID := identity(c)
	ctx := c.Request.Context()

	rooms, err := h.Store.ListRooms(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rooms"})
		return
	}

	visible, err := h.Access.FilterViewable(ctx, rooms, actorID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rooms"})
		return
	}

	ownerIDs := make([]string, 0, len(visible))
	for _, room := range visible {
		ownerIDs = append(ownerIDs, room.OwnerID)
	}
	names, err := h.Store.UsernamesByIDs(ctx, ownerIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rooms"})
		return
	}

	payloads := make([]roomPayload, 0, len(visible))
	for i := range visible {
		payloads = append(payloads, toRoomPayload(&visible[i], names[visible[i].OwnerID], actorID))
	}
	c.JSON(http.StatusOK, gin.H{"rooms": payloads})
}

type createRoomRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// CreateRoom creates a public room owned by the caller, with the timer in
// its initial stopped work state.
func (h *Handler) CreateRoom(c *gin.Context) {
	actorID, username, _ := identity(c)

	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Room name is required"})
		return
	}

	room := models.Room{
		Name:          req.Name,
		Description:   req.Description,
		OwnerID:       actorID,
		TimerDuration: 1500,
		TimerMode:     models.TimerModeWork,
	}
	if err := h.Store.CreateRoom(c.Request.Context(), &room); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"room": toRoomPayload(&room, username, actorID)})
}

// RoomDetail returns the room, its current timer state and its messages in
// one response. Gated by the view predicate for private rooms.
func (h *Handler) RoomDetail(c *gin.Context) {
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

	state, err := h.Timer.State(ctx, roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load timer state"})
		return
	}

	messages, err := h.Chat.List(ctx, roomID, actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}

	names, err := h.Store.UsernamesByIDs(ctx, []string{room.OwnerID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room":     toRoomPayload(room, names[room.OwnerID], actorID),
		"timer":    state,
		"messages": messages,
	})
}

// DeleteRoom removes the room along with its messages and presence rows.
// Owner only.
func (h *Handler) DeleteRoom(c *gin.Context) {
	actorID, _, _ := identity(c)
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete room"})
		return
	}
	if room.OwnerID != actorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to delete this room"})
		return
	}

	if err := h.Store.DeleteRoom(ctx, roomID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete room"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type setPrivacyRequest struct {
	IsPrivate *bool `json:"is_private" binding:"required"`
}

// SetPrivacy toggles the room's privacy. Making a room private issues a fresh
// access code which is returned to the owner for sharing.
func (h *Handler) SetPrivacy(c *gin.Context) {
	actorID, _, _ := identity(c)

	roomID, ok := roomIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid room ID"})
		return
	}

	var req setPrivacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "is_private is required"})
		return
	}

	room, err := h.Access.SetPrivacy(c.Request.Context(), roomID, actorID, *req.IsPrivate)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Room not found"})
		case errors.Is(err, access.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Only the room owner can change privacy"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update privacy"})
		}
		return
	}

	code := ""
	if room.Code != nil {
		code = *room.Code
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"is_private": room.IsPrivate,
		"code":       code,
	})
}

type joinRoomRequest struct {
	RoomCode string `json:"room_code"`
}

// JoinRoom grants the caller's session access to the private room matching
// the submitted code.
func (h *Handler) JoinRoom(c *gin.Context) {
	_, _, sessionID := identity(c)
	ctx := c.Request.Context()

	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Room code is required"})
		return
	}

	code := access.NormalizeCode(req.RoomCode)
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Room code is required"})
		return
	}

	room, err := h.Store.RoomByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid room code"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to join room"})
		return
	}

	granted, err := h.Access.GrantSessionAccess(ctx, sessionID, room, code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to join room"})
		return
	}
	if !granted {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid room code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "room_id": room.ID})
}

// requireView enforces the view predicate, writing the 403 response itself
// when access is denied. Returns whether the caller may proceed.
func (h *Handler) requireView(c *gin.Context, room *models.Room, actorID, sessionID string) bool {
	canView, err := h.Access.CanView(c.Request.Context(), room, actorID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check room access"})
		return false
	}
	if !canView {
		c.JSON(http.StatusForbidden, gin.H{"error": "This room is private. Enter the room code to join."})
		return false
	}
	return true
}
