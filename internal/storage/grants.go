package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"studybuddy/backend/internal/config"
	"studybuddy/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// Session grants live in Redis as one set of room ids per session. The set
// expires with the session token, so a grant never outlives the login that
// earned it.

func grantKey(sessionID string) string {
	return "grants:" + sessionID
}

func roomEventChannel(roomID uint) string {
	return fmt.Sprintf("room:%d:events", roomID)
}

// GrantRoomAccess records that the session may view the private room.
// Idempotent: re-granting the same room is a no-op.
func (s *Service) GrantRoomAccess(ctx context.Context, sessionID string, roomID uint) error {
	key := grantKey(sessionID)
	pipe := s.Redis.TxPipeline()
	pipe.SAdd(ctx, key, roomID)
	pipe.Expire(ctx, key, config.SessionLifetime)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("ERROR: Failed to store access grant for session %s: %v", sessionID, err)
		return err
	}
	return nil
}

// HasRoomAccess reports whether the session holds a grant for the room.
func (s *Service) HasRoomAccess(ctx context.Context, sessionID string, roomID uint) (bool, error) {
	ok, err := s.Redis.SIsMember(ctx, grantKey(sessionID), roomID).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// GrantedRoomIDs returns every room id the session holds a grant for, as a
// set. Used by room listing to avoid one membership check per room.
func (s *Service) GrantedRoomIDs(ctx context.Context, sessionID string) (map[uint]bool, error) {
	members, err := s.Redis.SMembers(ctx, grantKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	ids := make(map[uint]bool, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 32)
		if err != nil {
			continue
		}
		ids[uint(id)] = true
	}
	return ids, nil
}

// PublishRoomEvent pushes an event onto the room's Redis channel for fan-out
// to every server holding WebSocket clients in that room.
func (s *Service) PublishRoomEvent(ctx context.Context, event models.RoomEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := s.Redis.Publish(ctx, roomEventChannel(event.RoomID), payload).Err(); err != nil {
		log.Printf("ERROR: Failed to publish event for room %d: %v", event.RoomID, err)
		return err
	}
	return nil
}

// SubscribeRoomEvents subscribes to every room's event channel.
func (s *Service) SubscribeRoomEvents(ctx context.Context) *redis.PubSub {
	return s.Redis.PSubscribe(ctx, "room:*:events")
}
