package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"codestudio-backend/internal/config"
	internaljwt "codestudio-backend/internal/jwt"
)

type SessionEndpoints interface {
	Token(http.ResponseWriter, *http.Request) error
}

type sessionEndpoints struct {
	cfg *config.Config
}

func NewSessionEndpoints(cfg *config.Config) SessionEndpoints {
	return &sessionEndpoints{cfg: cfg}
}

func (h *sessionEndpoints) Token(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleToken,
	})
}

type tokenRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// handleToken exchanges the shared collaboration password for a session
// token. Only meaningful when collab auth is configured.
func (h *sessionEndpoints) handleToken(w http.ResponseWriter, r *http.Request) error {
	if !h.cfg.CollabAuthEnabled() {
		return &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Collaboration auth is not configured",
			ErrorLog:   fmt.Errorf("token request without collab auth"),
		}
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request body",
			ErrorLog:   fmt.Errorf("decode token request: %w", err),
		}
	}

	if !internaljwt.ValidatePassword(h.cfg.CollabPasswordHash, req.Password) {
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Invalid password",
			ErrorLog:   fmt.Errorf("collab password mismatch"),
		}
	}

	token, err := internaljwt.CreateToken(h.cfg.CollabTokenSecret, req.Name, internaljwt.DefaultSessionTTL)
	if err != nil {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Failed to create session token",
			ErrorLog:   err,
		}
	}

	return WriteJSON(w, http.StatusOK, token)
}
