package roomhub

import "studybuddy/backend/internal/models"

// Client is the interface for a live connection subscribed to one room's
// event feed. It abstracts the transport so the hub can manage client types
// uniformly.
type Client interface {
	// GetUserID returns the unique identifier for the user behind the client.
	GetUserID() string
	// GetRoomID returns the room whose events the client receives.
	GetRoomID() uint

	// GetSendChannel returns the channel the hub pushes room events into.
	// It is a send-only channel.
	GetSendChannel() chan<- models.RoomEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection and associated channels.
	Close()
}
