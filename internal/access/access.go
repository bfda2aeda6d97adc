// Package access gates private rooms behind short shareable codes and
// session-scoped grants. There are no per-user ACL rows: knowing the code is
// the credential, and a successful join is remembered only for the session
// that presented it.
package access

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"strings"

	"studybuddy/backend/internal/config"
	"studybuddy/backend/internal/models"
	"studybuddy/backend/internal/storage"
)

var ErrNotOwner = errors.New("only the room owner can change privacy")

type Service struct {
	store storage.Storage
}

func NewService(store storage.Storage) *Service {
	return &Service{store: store}
}

// NormalizeCode maps user input onto the stored code form: trimmed and
// uppercased, so codes are case-insensitive on entry.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// randomCode draws length characters from the code alphabet using the crypto
// random source. The alphabet has 32 characters, so the byte modulo is
// unbiased.
func randomCode(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	for i := range b {
		b[i] = config.CodeAlphabet[int(b[i])%len(config.CodeAlphabet)]
	}
	return string(b), nil
}

// GenerateCode produces a 6-character code unique among other private rooms'
// codes, retrying up to the attempt limit. On exhaustion it falls back to a
// longer code whose larger space makes a collision unlikely enough to accept
// without a uniqueness guarantee.
func (s *Service) GenerateCode(ctx context.Context, excludeRoomID uint) (string, error) {
	for attempt := 0; attempt < config.CodeMaxAttempts; attempt++ {
		code, err := randomCode(config.CodeLength)
		if err != nil {
			return "", err
		}
		taken, err := s.store.IsCodeTaken(ctx, code, excludeRoomID)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
		log.Printf("INFO: Generated room code already exists, retrying (attempt %d)", attempt+1)
	}

	log.Printf("INFO: Room code attempts exhausted, falling back to a long code")
	return randomCode(config.CodeMaxLength)
}

// SetPrivacy flips the room's privacy flag. Making a room private always
// issues a fresh code; making it public clears the code. Flag and code change
// together inside the room's row lock so no reader sees them disagree.
func (s *Service) SetPrivacy(ctx context.Context, roomID uint, actorID string, makePrivate bool) (*models.Room, error) {
	room, err := s.store.RoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.OwnerID != actorID {
		return nil, ErrNotOwner
	}

	var code *string
	if makePrivate {
		generated, err := s.GenerateCode(ctx, roomID)
		if err != nil {
			return nil, err
		}
		code = &generated
	}

	return s.store.MutateRoom(ctx, roomID, func(room *models.Room) (bool, error) {
		if room.OwnerID != actorID {
			return false, ErrNotOwner
		}
		room.IsPrivate = makePrivate
		room.Code = code
		return true, nil
	})
}

// GrantSessionAccess checks the submitted code against the room's and, on a
// match, records a grant for the calling session. Idempotent. Returns whether
// access was granted.
func (s *Service) GrantSessionAccess(ctx context.Context, sessionID string, room *models.Room, submittedCode string) (bool, error) {
	if !room.IsPrivate || room.Code == nil {
		return false, nil
	}
	if NormalizeCode(submittedCode) != *room.Code {
		return false, nil
	}
	if err := s.store.GrantRoomAccess(ctx, sessionID, room.ID); err != nil {
		return false, err
	}
	return true, nil
}

// CanView is the single visibility predicate for room content: public rooms
// are open to everyone, private rooms to their owner and to sessions holding
// a grant. It gates room detail, messages, sending and the room directory.
func (s *Service) CanView(ctx context.Context, room *models.Room, actorID, sessionID string) (bool, error) {
	if !room.IsPrivate || room.OwnerID == actorID {
		return true, nil
	}
	return s.store.HasRoomAccess(ctx, sessionID, room.ID)
}

// FilterViewable keeps the rooms the actor's session may see, resolving the
// session's grant set once. The owner always sees their own private rooms.
func (s *Service) FilterViewable(ctx context.Context, rooms []models.Room, actorID, sessionID string) ([]models.Room, error) {
	granted, err := s.store.GrantedRoomIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Room, 0, len(rooms))
	for _, room := range rooms {
		if !room.IsPrivate || room.OwnerID == actorID || granted[room.ID] {
			visible = append(visible, room)
		}
	}
	return visible, nil
}
