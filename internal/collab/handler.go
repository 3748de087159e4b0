package collab

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler owns the websocket entry point into the hub.
type Handler struct {
	hub *Hub
}

func NewHandler(h *Hub) *Handler {
	return &Handler{hub: h}
}

// ServeWS upgrades the request and hands the connection to the hub. The
// connection starts in the Connected state; room membership happens via a
// join event on the socket.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return nil
	}

	cl := newClient(conn)
	h.hub.register <- cl

	go cl.keepAlive()
	go cl.writePump()
	go cl.readPump(h.hub)
	return nil
}

// Rooms lists the active rooms for the diagnostics endpoint.
func (h *Handler) Rooms() []RoomInfo {
	return h.hub.Rooms()
}
