package roomhub

import (
	"context"
	"encoding/json"
	"log"

	"studybuddy/backend/internal/models"
	"studybuddy/backend/internal/storage"
)

// Hub fans room events out to every live client in the event's room. Events
// arrive over Redis pub/sub, so it does not matter which server instance
// handled the HTTP request that produced them.
//
// All registry state is owned by the Run goroutine; handlers talk to it only
// through the channels.
type Hub struct {
	// rooms indexes connected clients by room id.
	rooms map[uint]map[Client]bool

	RegisterCh   chan Client
	UnregisterCh chan Client

	storage *storage.Service
	events  chan models.RoomEvent
}

func NewHub(s *storage.Service) *Hub {
	return &Hub{
		rooms:        make(map[uint]map[Client]bool),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		storage:      s,
		events:       make(chan models.RoomEvent),
	}
}

// startEventListener subscribes to every room's Redis channel and feeds the
// decoded events into the hub's main loop.
func (h *Hub) startEventListener(ctx context.Context) {
	go func() {
		pubsub := h.storage.SubscribeRoomEvents(ctx)
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var event models.RoomEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("ERROR: Failed to decode room event: %v", err)
				continue
			}
			h.events <- event
		}
	}()
}

// Run is the hub's main dispatcher. Started once from main.
func (h *Hub) Run(ctx context.Context) {
	h.startEventListener(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.RegisterCh:
			h.addClient(client)

		case client := <-h.UnregisterCh:
			h.removeClient(client)

		case event := <-h.events:
			h.broadcast(event)
		}
	}
}

func (h *Hub) addClient(client Client) {
	clients, ok := h.rooms[client.GetRoomID()]
	if !ok {
		clients = make(map[Client]bool)
		h.rooms[client.GetRoomID()] = clients
	}
	clients[client] = true
	log.Printf("INFO: User %s connected to room %d feed", client.GetUserID(), client.GetRoomID())
}

func (h *Hub) broadcast(event models.RoomEvent) {
	for client := range h.rooms[event.RoomID] {
		select {
		case client.GetSendChannel() <- event:
		default:
			// Slow client: drop it rather than block the room.
			h.removeClient(client)
		}
	}
}

func (h *Hub) removeClient(client Client) {
	clients, ok := h.rooms[client.GetRoomID()]
	if !ok {
		return
	}
	if !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.rooms, client.GetRoomID())
	}
	client.Close()
	log.Printf("INFO: User %s disconnected from room %d feed", client.GetUserID(), client.GetRoomID())
}
