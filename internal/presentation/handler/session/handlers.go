package session

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/quizdefense/quizdefense/internal/infrastructure/ws"
)

type Handler struct {
	hub      *ws.Hub
	upgrader *websocket.Upgrader
	logger   *zap.SugaredLogger
}

func NewHandler(hub *ws.Hub, upgrader *websocket.Upgrader, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		hub:      hub,
		upgrader: upgrader,
		logger:   logger,
	}
}

// ConnectHandler upgrades the request and hands the connection to the hub.
// Everything after the upgrade (identity assignment, room membership,
// relaying) happens over the socket.
func (h *Handler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := ws.NewClient(conn)
	h.hub.Register() <- client

	go client.WritePump(h.hub)
	go client.ReadPump(h.hub)
}
