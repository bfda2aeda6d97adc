package roomhub

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"studybuddy/backend/internal/models"
)

// fakeClient is an in-memory Client with a buffered send channel.
type fakeClient struct {
	userID string
	roomID uint
	send   chan models.RoomEvent
	closed bool
}

func newFakeClient(userID string, roomID uint, buffer int) *fakeClient {
	return &fakeClient{userID: userID, roomID: roomID, send: make(chan models.RoomEvent, buffer)}
}

func (c *fakeClient) GetUserID() string                       { return c.userID }
func (c *fakeClient) GetRoomID() uint                         { return c.roomID }
func (c *fakeClient) GetSendChannel() chan<- models.RoomEvent { return c.send }
func (c *fakeClient) Run()                                    {}
func (c *fakeClient) Close()                                  { c.closed = true }

func TestBroadcastReachesOnlyTheEventRoom(t *testing.T) {
	hub := NewHub(nil)
	inRoom := newFakeClient("u1", 1, 1)
	alsoInRoom := newFakeClient("u2", 1, 1)
	elsewhere := newFakeClient("u3", 2, 1)
	hub.addClient(inRoom)
	hub.addClient(alsoInRoom)
	hub.addClient(elsewhere)

	hub.broadcast(models.RoomEvent{RoomID: 1, Type: models.EventMessage})

	assert.Len(t, inRoom.send, 1)
	assert.Len(t, alsoInRoom.send, 1)
	assert.Empty(t, elsewhere.send)
}

func TestBroadcastDropsSlowClients(t *testing.T) {
	hub := NewHub(nil)
	slow := newFakeClient("u1", 1, 1)
	hub.addClient(slow)

	hub.broadcast(models.RoomEvent{RoomID: 1, Type: models.EventTimer})
	// The buffer is full now, so the next event evicts the client instead of
	// blocking the room.
	hub.broadcast(models.RoomEvent{RoomID: 1, Type: models.EventTimer})

	assert.True(t, slow.closed)
	assert.Empty(t, hub.rooms)
}

func TestRemoveClientIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	client := newFakeClient("u1", 1, 1)
	hub.addClient(client)

	hub.removeClient(client)
	hub.removeClient(client)

	assert.True(t, client.closed)
	assert.Empty(t, hub.rooms)
}

func TestEmptyRoomsAreForgotten(t *testing.T) {
	hub := NewHub(nil)
	a := newFakeClient("u1", 1, 1)
	b := newFakeClient("u2", 1, 1)
	hub.addClient(a)
	hub.addClient(b)

	hub.removeClient(a)
	assert.Len(t, hub.rooms[1], 1)

	hub.removeClient(b)
	assert.NotContains(t, hub.rooms, uint(1))
}
