package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"studybuddy/backend/internal/access"
	"studybuddy/backend/internal/chat"
	"studybuddy/backend/internal/presence"
	"studybuddy/backend/internal/roomhub"
	"studybuddy/backend/internal/storage"
	"studybuddy/backend/internal/timer"
)

// Handler holds every service the HTTP layer dispatches into.
type Handler struct {
	Store     storage.Storage
	Timer     *timer.Service
	Access    *access.Service
	Presence  *presence.Service
	Chat      *chat.Service
	Hub       *roomhub.Hub
	JWTSecret []byte
}

func NewHandler(store storage.Storage, hub *roomhub.Hub, jwtSecret []byte) *Handler {
	return &Handler{
		Store:     store,
		Timer:     timer.NewService(store),
		Access:    access.NewService(store),
		Presence:  presence.NewService(store),
		Chat:      chat.NewService(store),
		Hub:       hub,
		JWTSecret: jwtSecret,
	}
}

// identity pulls the authenticated caller out of the gin context. The auth
// middleware guarantees the values are present on protected routes.
func identity(c *gin.Context) (userID, username, sessionID string) {
	userID = c.GetString("user_id")
	username = c.GetString("username")
	sessionID = c.GetString("session_id")
	return
}

// roomIDParam parses the :id path segment.
func roomIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
