// Package chat implements the room message feed: send, list and delete with
// authorship checks. Created messages are also published on the room's event
// channel for live WebSocket delivery.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"studybuddy/backend/internal/models"
	"studybuddy/backend/internal/storage"
)

var (
	ErrEmptyContent = errors.New("message content is required")
	ErrNotAuthor    = errors.New("only the author can delete a message")
)

// Payload is the wire form of a message. Timestamp is ISO-8601 so clients can
// convert to their own timezone; IsOwn is computed per requesting user.
type Payload struct {
	ID        uint   `json:"id"`
	User      string `json:"user"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	IsOwn     bool   `json:"is_own"`
}

type Service struct {
	store storage.Storage
}

func NewService(store storage.Storage) *Service {
	return &Service{store: store}
}

// Send creates a message from the actor in the room. Content is trimmed and
// must be non-empty; view access is the caller's responsibility since it owns
// the session. The timestamp is server-assigned on insert.
func (s *Service) Send(ctx context.Context, roomID uint, actorID, actorName, content string) (Payload, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Payload{}, ErrEmptyContent
	}

	msg := models.Message{
		RoomID:  roomID,
		UserID:  actorID,
		Content: trimmed,
	}
	if err := s.store.CreateMessage(ctx, &msg); err != nil {
		return Payload{}, err
	}

	created := Payload{
		ID:        msg.ID,
		User:      actorName,
		Content:   msg.Content,
		Timestamp: msg.CreatedAt.Format(time.RFC3339),
		IsOwn:     true,
	}

	// Broadcast copy carries is_own=false; receivers match on username.
	broadcast := created
	broadcast.IsOwn = false
	if payload, err := json.Marshal(broadcast); err == nil {
		if err := s.store.PublishRoomEvent(ctx, models.RoomEvent{
			RoomID:  roomID,
			Type:    models.EventMessage,
			Payload: payload,
		}); err != nil {
			log.Printf("ERROR: Failed to publish message %d for room %d: %v", msg.ID, roomID, err)
		}
	}

	return created, nil
}

// List returns the room's messages oldest first, flagging the actor's own.
func (s *Service) List(ctx context.Context, roomID uint, actorID string) ([]Payload, error) {
	rows, err := s.store.MessagesByRoomID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	payloads := make([]Payload, 0, len(rows))
	for _, row := range rows {
		payloads = append(payloads, Payload{
			ID:        row.ID,
			User:      row.Username,
			Content:   row.Content,
			Timestamp: row.CreatedAt.Format(time.RFC3339),
			IsOwn:     row.UserID == actorID,
		})
	}
	return payloads, nil
}

// Delete removes the message if the actor wrote it.
func (s *Service) Delete(ctx context.Context, messageID uint, actorID string) error {
	msg, err := s.store.MessageByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.UserID != actorID {
		return ErrNotAuthor
	}
	return s.store.DeleteMessage(ctx, messageID)
}
