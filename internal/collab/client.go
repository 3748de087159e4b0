package collab

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one websocket connection. The conn/send/done fields belong to
// the pump goroutines; room and participant are touched only by the hub's
// Run goroutine.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan Envelope
	done chan struct{}

	mu       sync.Mutex
	isClosed bool

	room        *Room
	participant *Participant
	sendClosed  bool
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan Envelope, 32),
		done: make(chan struct{}),
	}
}

func (cl *Client) keepAlive() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.conn.WriteMessage(websocket.PingMessage, nil)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("Ping error for client %s: %v", cl.ID, err)
				return
			}
		}
	}
}

func (cl *Client) writePump() {
	defer func() {
		cl.mu.Lock()
		cl.isClosed = true
		cl.conn.Close()
		cl.mu.Unlock()
	}()

	for {
		select {
		case <-cl.done:
			return
		case env, ok := <-cl.send:
			if !ok {
				return
			}

			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.conn.WriteJSON(env)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("Error sending event to client %s: %v", cl.ID, err)
				return
			}
		}
	}
}

func (cl *Client) readPump(hub *Hub) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in readPump: %v", r)
		}

		if cl.done != nil {
			close(cl.done)
		}

		// Any disconnect, clean or abrupt, is treated as a leave.
		hub.unregister <- cl
		log.Printf("Client %s disconnected", cl.ID)
	}()

	cl.conn.SetReadLimit(4 * 1024 * 1024)

	for {
		_, message, err := cl.conn.ReadMessage()
		if err != nil {
			if closeErr, ok := err.(*websocket.CloseError); ok {
				if closeErr.Code == websocket.CloseNormalClosure ||
					closeErr.Code == websocket.CloseGoingAway ||
					closeErr.Code == websocket.CloseNoStatusReceived {
					break
				}
			}
			log.Printf("Error reading event from client %s: %v", cl.ID, err)
			break
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil || env.Event == "" {
			// Malformed frames are ignored, not errored.
			continue
		}

		hub.events <- inbound{client: cl, env: env}
	}
}
