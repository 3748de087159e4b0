package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"codestudio-backend/internal/workspace"

	"github.com/gorilla/websocket"
)

type FilesEndpoints interface {
	Tree(http.ResponseWriter, *http.Request) error
	File(http.ResponseWriter, *http.Request) error
	Folder(http.ResponseWriter, *http.Request) error
	EventsWebsocket(http.ResponseWriter, *http.Request) error
}

type filesEndpoints struct {
	svc     *workspace.Service
	watcher *workspace.Watcher
}

func NewFilesEndpoints(svc *workspace.Service, watcher *workspace.Watcher) FilesEndpoints {
	return &filesEndpoints{svc: svc, watcher: watcher}
}

func (h *filesEndpoints) Tree(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleTree,
	})
}

func (h *filesEndpoints) File(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:    h.handleRead,
		http.MethodPost:   h.handleWrite,
		http.MethodPut:    h.handleWrite,
		http.MethodDelete: h.handleDelete,
	})
}

func (h *filesEndpoints) Folder(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleMkdir,
	})
}

func (h *filesEndpoints) handleTree(w http.ResponseWriter, r *http.Request) error {
	node, err := h.svc.List(r.URL.Query().Get("path"))
	if err != nil {
		return fsError(err)
	}
	return WriteJSON(w, http.StatusOK, node)
}

type fileContentResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (h *filesEndpoints) handleRead(w http.ResponseWriter, r *http.Request) error {
	rel := r.URL.Query().Get("path")
	if rel == "" {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Missing path parameter",
			ErrorLog:   fmt.Errorf("file read without path"),
		}
	}
	content, err := h.svc.Read(rel)
	if err != nil {
		return fsError(err)
	}
	return WriteJSON(w, http.StatusOK, fileContentResponse{Path: rel, Content: content})
}

type writeFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (h *filesEndpoints) handleWrite(w http.ResponseWriter, r *http.Request) error {
	var req writeFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request body",
			ErrorLog:   fmt.Errorf("decode write request: %w", err),
		}
	}
	if strings.TrimSpace(req.Path) == "" {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Missing path",
			ErrorLog:   fmt.Errorf("file write without path"),
		}
	}
	if err := h.svc.Write(req.Path, req.Content); err != nil {
		return fsError(err)
	}
	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "Saved"})
}

func (h *filesEndpoints) handleDelete(w http.ResponseWriter, r *http.Request) error {
	rel := r.URL.Query().Get("path")
	if rel == "" {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Missing path parameter",
			ErrorLog:   fmt.Errorf("file delete without path"),
		}
	}
	if err := h.svc.Delete(rel); err != nil {
		return fsError(err)
	}
	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "Deleted"})
}

type mkdirRequest struct {
	Path string `json:"path"`
}

func (h *filesEndpoints) handleMkdir(w http.ResponseWriter, r *http.Request) error {
	var req mkdirRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request body",
			ErrorLog:   fmt.Errorf("decode mkdir request: %w", err),
		}
	}
	if strings.TrimSpace(req.Path) == "" {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Missing path",
			ErrorLog:   fmt.Errorf("mkdir without path"),
		}
	}
	if err := h.svc.Mkdir(req.Path); err != nil {
		return fsError(err)
	}
	return WriteJSON(w, http.StatusCreated, ApiMessageResponse{Message: "Created"})
}

var filesUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventsWebsocket streams filesystem change events to the explorer.
func (h *filesEndpoints) EventsWebsocket(w http.ResponseWriter, r *http.Request) error {
	if h.watcher == nil {
		return &HTTPError{
			StatusCode: http.StatusServiceUnavailable,
			Message:    "File watching is not available",
			ErrorLog:   fmt.Errorf("events websocket without watcher"),
		}
	}

	conn, err := filesUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return nil
	}

	events, cancel := h.watcher.Subscribe()

	go func() {
		defer conn.Close()
		for ev := range events {
			if err := conn.WriteJSON(ev); err != nil {
				cancel()
				return
			}
		}
	}()

	// Drain the read side so close frames are noticed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return nil
}

func fsError(err error) error {
	switch {
	case errors.Is(err, workspace.ErrOutsideRoot):
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: "Path is outside the workspace", ErrorLog: err}
	case errors.Is(err, workspace.ErrNotFound):
		return &HTTPError{StatusCode: http.StatusNotFound, Message: "Path not found", ErrorLog: err}
	default:
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Filesystem error", ErrorLog: err}
	}
}
