package collab

import (
	"encoding/json"
	"fmt"
)

// Event names shared with the IDE client. Every websocket frame is an
// Envelope tagged with one of these.
const (
	EventJoin              = "join"
	EventLeave             = "leave"
	EventCursorMove        = "cursorMove"
	EventContentChange     = "contentChange"
	EventSyncRequest       = "syncRequest"
	EventSync              = "sync"
	EventParticipantJoined = "participantJoined"
	EventParticipantLeft   = "participantLeft"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func NewEnvelope(event string, payload any) (Envelope, error) {
	if payload == nil {
		return Envelope{Event: event}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("collab: marshal %s payload: %w", event, err)
	}
	return Envelope{Event: event, Data: data}, nil
}

func unmarshalData(env Envelope, out any) error {
	return json.Unmarshal(env.Data, out)
}

type Cursor struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Participant struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Cursor *Cursor `json:"cursor,omitempty"`
}

// Room holds the authoritative document text and the set of connections
// currently editing it. Rooms live only in the hub's memory: created on the
// first join, deleted when the last participant leaves.
type Room struct {
	ID           string
	DocumentID   string
	Text         string
	Participants map[string]*Client
}

type JoinPayload struct {
	RoomID      string `json:"roomId"`
	DocumentID  string `json:"documentId"`
	DisplayName string `json:"displayName"`
}

type CursorMovePayload struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type ContentChangePayload struct {
	Text string `json:"text"`
}

type SyncPayload struct {
	Text         string        `json:"text"`
	Participants []Participant `json:"participants"`
}

type ParticipantJoinedPayload struct {
	Participant  Participant   `json:"participant"`
	Participants []Participant `json:"participants"`
}

type ParticipantLeftPayload struct {
	ParticipantID string        `json:"participantId"`
	Participants  []Participant `json:"participants"`
}

type CursorBroadcast struct {
	ParticipantID string `json:"participantId"`
	Line          int    `json:"line"`
	Column        int    `json:"column"`
}

type ContentBroadcast struct {
	Text            string `json:"text"`
	ParticipantID   string `json:"participantId"`
	ServerTimestamp int64  `json:"serverTimestamp"`
}

type RoomInfo struct {
	ID               string `json:"id"`
	DocumentID       string `json:"documentId"`
	ParticipantCount int    `json:"participantCount"`
}
