package models

import "encoding/json"

// Room event types pushed to connected WebSocket clients.
const (
	EventMessage = "message"
	EventTimer   = "timer"
)

// RoomEvent is the envelope published on a room's Redis channel and fanned
// out to every live WebSocket client in that room. Payload carries the
// already-serialized message or timer state.
type RoomEvent struct {
	RoomID  uint            `json:"room_id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}
