package ws

import (
	"go.uber.org/zap"

	"github.com/quizdefense/quizdefense/internal/protocol"
)

// Frame is one raw inbound message paired with the connection it arrived on.
type Frame struct {
	Sender *Client
	Raw    []byte
}

// SessionHandler receives decoded messages and disconnects. Both callbacks
// run on the hub goroutine, one at a time. A handler mutation is never
// interleaved with another, which is what gives the registry its per-room
// mutual exclusion without locking per operation.
type SessionHandler interface {
	HandleMessage(senderID string, msg *protocol.Message)
	HandleDisconnect(senderID string)
}

// Hub owns every live connection and runs the single dispatch loop.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	inbound    chan Frame

	clients map[string]*Client // client ID → client
	handler SessionHandler
	logger  *zap.SugaredLogger
}

func NewHub(handler SessionHandler, logger *zap.SugaredLogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan Frame, 256),
		clients:    make(map[string]*Client),
		handler:    handler,
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case cl := <-h.register:
			h.clients[cl.ID] = cl
			h.SendTo(cl.ID, protocol.NewConnected(cl.ID))
			h.logger.Infow("client connected", "client", cl.ID)

		case cl := <-h.unregister:
			if _, ok := h.clients[cl.ID]; !ok {
				continue
			}
			delete(h.clients, cl.ID)
			close(cl.send)
			h.handler.HandleDisconnect(cl.ID)
			h.logger.Infow("client disconnected", "client", cl.ID)

		case frame := <-h.inbound:
			msg, err := protocol.Decode(frame.Raw)
			if err != nil {
				h.logger.Warnw("rejected frame", "client", frame.Sender.ID, "error", err)
				h.SendTo(frame.Sender.ID, protocol.NewRoomError("Invalid message"))
				continue
			}
			h.handler.HandleMessage(frame.Sender.ID, msg)
		}
	}
}

func (h *Hub) Register() chan<- *Client {
	return h.register
}

func (h *Hub) Unregister() chan<- *Client {
	return h.unregister
}

func (h *Hub) Inbound() chan<- Frame {
	return h.inbound
}

// SendTo queues a frame for one client. Safe only on the hub goroutine (the
// registry calls it from inside HandleMessage/HandleDisconnect).
func (h *Hub) SendTo(clientID string, env *protocol.OutEnvelope) {
	cl, ok := h.clients[clientID]
	if !ok {
		return
	}

	select {
	case cl.send <- env:
	default:
		// Client is too slow – drop the frame
		h.logger.Warnw("client buffer full, dropping frame", "client", cl.ID, "type", env.Type)
	}
}
