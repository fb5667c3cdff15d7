package ws

import (
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/quizdefense/quizdefense/internal/protocol"
)

// Client is one accepted connection. Its ID is the transport-assigned member
// identity: minted here, never taken from a payload, gone when the
// connection closes.
type Client struct {
	ID   string
	conn *connWrapper

	// Outbound frames. Buffered so one slow reader cannot stall the hub;
	// when the buffer fills, frames are dropped (the periodic full snapshot
	// heals whatever a gameplay frame loss left behind).
	send chan *protocol.OutEnvelope
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		conn: newConnWrapper(conn),
		send: make(chan *protocol.OutEnvelope, 64),
	}
}

// ReadPump forwards raw inbound frames to the hub until the connection
// drops, then reports the disconnect.
func (c *Client) ReadPump(hub *Hub) {
	defer func() {
		hub.Unregister() <- c
		_ = c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				hub.logger.Debugw("ws read error", "client", c.ID, "error", err)
			}
			return
		}

		hub.Inbound() <- Frame{Sender: c, Raw: raw}
	}
}

// WritePump drains the outbound buffer onto the socket.
func (c *Client) WritePump(hub *Hub) {
	defer func() {
		_ = c.conn.Close()
	}()

	for env := range c.send {
		if err := c.conn.WriteJSON(env); err != nil {
			hub.logger.Debugw("ws write error", "client", c.ID, "error", err)
			return
		}
	}
}
