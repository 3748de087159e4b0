package endpoints

import (
	"net/http"

	"codestudio-backend/internal/collab"
)

type CollabEndpoints interface {
	Websocket(http.ResponseWriter, *http.Request) error
	Rooms(http.ResponseWriter, *http.Request) error
}

type collabEndpoints struct {
	handler *collab.Handler
}

func NewCollabEndpoints(handler *collab.Handler) CollabEndpoints {
	return &collabEndpoints{handler: handler}
}

func (h *collabEndpoints) Websocket(w http.ResponseWriter, r *http.Request) error {
	return h.handler.ServeWS(w, r)
}

type roomsResponse struct {
	Rooms []collab.RoomInfo `json:"rooms"`
}

func (h *collabEndpoints) Rooms(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) error {
			return WriteJSON(w, http.StatusOK, roomsResponse{Rooms: h.handler.Rooms()})
		},
	})
}
