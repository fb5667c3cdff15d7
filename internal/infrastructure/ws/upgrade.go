package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// NewUpgrader builds the HTTP→websocket upgrader. A "*" entry in the
// allowed origins opens the endpoint to any origin.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			return allowed[r.Header.Get("Origin")]
		},
	}
}
