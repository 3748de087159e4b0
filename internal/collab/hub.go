package collab

import (
	"encoding/json"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

// palette participants are colored from. Selection is random and collisions
// are allowed; two participants in the same room may share a color.
var palette = []string{
	"#e06c75", "#61afef", "#98c379", "#c678dd", "#d19a66", "#56b6c2",
	"#be5046", "#528bff", "#7a9f60", "#b267e6", "#cc7832", "#2bbac5",
}

// Mirror receives a copy of room events. It is publish-only: nothing a
// mirror does can feed back into room state.
type Mirror interface {
	Publish(roomID, event string, payload any)
}

type inbound struct {
	client *Client
	env    Envelope
}

// Hub owns every room. All room and participant mutation happens on the
// single goroutine running Run, so handlers never need a lock.
type Hub struct {
	rooms   map[string]*Room
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	events     chan inbound
	queries    chan chan []RoomInfo
	stopc      chan struct{}

	rng    *rand.Rand
	now    func() time.Time
	mirror Mirror
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan inbound),
		queries:    make(chan chan []RoomInfo),
		stopc:      make(chan struct{}),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		now:        time.Now,
	}
}

// SetMirror must be called before Run.
func (h *Hub) SetMirror(m Mirror) {
	h.mirror = m
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.stopc:
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			incConnections()

		case c := <-h.unregister:
			h.drop(c)

		case in := <-h.events:
			h.handleEvent(in)

		case q := <-h.queries:
			q <- h.snapshotRooms()
		}
	}
}

func (h *Hub) Stop() {
	close(h.stopc)
}

// Rooms returns a point-in-time view of active rooms. Requires Run to be
// running.
func (h *Hub) Rooms() []RoomInfo {
	q := make(chan []RoomInfo, 1)
	select {
	case h.queries <- q:
		return <-q
	case <-h.stopc:
		return nil
	}
}

func (h *Hub) handleEvent(in inbound) {
	c := in.client
	if _, ok := h.clients[c]; !ok {
		return
	}

	switch in.env.Event {
	case EventJoin:
		var p JoinPayload
		if err := json.Unmarshal(in.env.Data, &p); err != nil {
			return
		}
		if strings.TrimSpace(p.RoomID) == "" {
			return
		}
		h.joinRoom(c, p)

	case EventLeave:
		h.leaveRoom(c, true)

	case EventCursorMove:
		if c.room == nil {
			return
		}
		var p CursorMovePayload
		if err := json.Unmarshal(in.env.Data, &p); err != nil {
			return
		}
		c.participant.Cursor = &Cursor{Line: p.Line, Column: p.Column}
		h.broadcast(c.room, c.ID, EventCursorMove, CursorBroadcast{
			ParticipantID: c.ID,
			Line:          p.Line,
			Column:        p.Column,
		})

	case EventContentChange:
		if c.room == nil {
			return
		}
		var p ContentChangePayload
		if err := json.Unmarshal(in.env.Data, &p); err != nil {
			return
		}
		// Last write wins: the stored text is replaced unconditionally.
		c.room.Text = p.Text
		broadcast := ContentBroadcast{
			Text:            p.Text,
			ParticipantID:   c.ID,
			ServerTimestamp: h.now().UnixMilli(),
		}
		h.broadcast(c.room, c.ID, EventContentChange, broadcast)
		h.mirrorEvent(c.room.ID, EventContentChange, broadcast)

	case EventSyncRequest:
		if c.room == nil {
			return
		}
		h.sendTo(c, EventSync, SyncPayload{
			Text:         c.room.Text,
			Participants: h.participants(c.room),
		})
	}
}

func (h *Hub) joinRoom(c *Client, p JoinPayload) {
	if c.room != nil {
		if c.room.ID == p.RoomID {
			// Re-join of the current room refreshes the display name and
			// resyncs; membership and room text are untouched.
			c.participant.Name = displayName(p.DisplayName)
			h.sendTo(c, EventSync, SyncPayload{
				Text:         c.room.Text,
				Participants: h.participants(c.room),
			})
			return
		}
		// One room per connection: switching rooms leaves the old one first.
		h.leaveRoom(c, true)
	}

	room, ok := h.rooms[p.RoomID]
	if !ok {
		room = &Room{
			ID:           p.RoomID,
			DocumentID:   p.DocumentID,
			Participants: make(map[string]*Client),
		}
		h.rooms[p.RoomID] = room
		setRooms(len(h.rooms))
	}

	c.participant = &Participant{
		ID:    c.ID,
		Name:  displayName(p.DisplayName),
		Color: palette[h.rng.Intn(len(palette))],
	}
	c.room = room
	room.Participants[c.ID] = c

	list := h.participants(room)
	h.broadcast(room, c.ID, EventParticipantJoined, ParticipantJoinedPayload{
		Participant:  *c.participant,
		Participants: list,
	})
	h.mirrorEvent(room.ID, EventParticipantJoined, *c.participant)
	// Last: the sync itself may drop c if its buffer is already full.
	h.sendTo(c, EventSync, SyncPayload{Text: room.Text, Participants: list})
}

// leaveRoom removes c from its room, tells the remaining participants, and
// deletes the room when it empties. Both explicit leave and transport
// disconnect land here.
func (h *Hub) leaveRoom(c *Client, notify bool) {
	room := c.room
	if room == nil {
		return
	}
	delete(room.Participants, c.ID)
	c.room = nil
	c.participant = nil

	if len(room.Participants) == 0 {
		delete(h.rooms, room.ID)
		setRooms(len(h.rooms))
		h.mirrorEvent(room.ID, EventParticipantLeft, c.ID)
		return
	}
	if notify {
		h.broadcast(room, c.ID, EventParticipantLeft, ParticipantLeftPayload{
			ParticipantID: c.ID,
			Participants:  h.participants(room),
		})
	}
	h.mirrorEvent(room.ID, EventParticipantLeft, c.ID)
}

// broadcast delivers an event to every participant of the room except the
// sender. A participant whose send buffer is full is dropped so one stalled
// connection cannot block the rest.
func (h *Hub) broadcast(room *Room, exceptID string, event string, payload any) {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return
	}
	delivered := 0
	for id, cl := range room.Participants {
		if id == exceptID || cl.sendClosed {
			continue
		}
		select {
		case cl.send <- env:
			delivered++
		default:
			h.drop(cl)
		}
	}
	if delivered > 0 {
		addDelivered(delivered)
	}
}

// sendTo delivers an event to a single connection, applying the same
// full-buffer policy as broadcast.
func (h *Hub) sendTo(c *Client, event string, payload any) {
	if c.sendClosed {
		return
	}
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return
	}
	select {
	case c.send <- env:
		addDelivered(1)
	default:
		h.drop(c)
	}
}

// drop fully disconnects a client: transport unregister and slow-consumer
// eviction both land here. The send channel is marked closed before the room
// is notified so the departure broadcast never targets it, and later events
// from the connection are ignored because it is gone from h.clients.
func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	h.closeSend(c)
	h.leaveRoom(c, true)
	decConnections()
}

func (h *Hub) closeSend(c *Client) {
	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.send)
}

func (h *Hub) participants(room *Room) []Participant {
	list := lo.MapToSlice(room.Participants, func(_ string, cl *Client) Participant {
		return *cl.participant
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (h *Hub) snapshotRooms() []RoomInfo {
	infos := lo.MapToSlice(h.rooms, func(_ string, r *Room) RoomInfo {
		return RoomInfo{ID: r.ID, DocumentID: r.DocumentID, ParticipantCount: len(r.Participants)}
	})
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

func (h *Hub) mirrorEvent(roomID, event string, payload any) {
	if h.mirror == nil {
		return
	}
	// Mirrors do network I/O; keep it off the event loop.
	go h.mirror.Publish(roomID, event, payload)
}

func displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Anonymous"
	}
	return name
}
