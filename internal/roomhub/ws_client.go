package roomhub

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"studybuddy/backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WSClient implements the roomhub.Client interface over a WebSocket. The
// feed is one-way: events flow out, and the read pump exists only to service
// pongs and notice the peer going away (messages and timer commands travel
// over the REST endpoints).
type WSClient struct {
	UserID string
	RoomID uint
	Conn   *websocket.Conn
	Hub    *Hub
	Send   chan models.RoomEvent
}

func (c *WSClient) GetUserID() string                       { return c.UserID }
func (c *WSClient) GetRoomID() uint                         { return c.RoomID }
func (c *WSClient) GetSendChannel() chan<- models.RoomEvent { return c.Send }

// Run starts the pumps for the WebSocket.
func (c *WSClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump. The read pump
// stops on its own once the connection is torn down.
func (c *WSClient) Close() {
	close(c.Send)
}

func (c *WSClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Inbound payloads are ignored; this read exists to detect close.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}
	}
}

// writePump reads events from the Send channel and writes them to the
// WebSocket, batching whatever is already queued into one frame.
func (c *WSClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed by the hub; close the WS connection.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("Error encoding JSON for client %s: %v", c.UserID, err)
				continue
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(data)

			// Drain anything else already queued into the same frame.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				next := <-c.Send
				extra, _ := json.Marshal(next)
				w.Write(extra)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			// Ping keeps the connection alive through idle periods.
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
