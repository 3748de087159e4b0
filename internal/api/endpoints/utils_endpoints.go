package endpoints

import (
	"net/http"

	"codestudio-backend/internal/config"
	"codestudio-backend/internal/exec"
)

type UtilsEndpoints interface {
	Health(http.ResponseWriter, *http.Request) error
	Info(http.ResponseWriter, *http.Request) error
}

type utilsEndpoints struct {
	cfg *config.Config
}

func NewUtilsEndpoints(cfg *config.Config) UtilsEndpoints {
	return &utilsEndpoints{cfg: cfg}
}

func (h *utilsEndpoints) Health(w http.ResponseWriter, r *http.Request) error {
	return WriteJSON(w, http.StatusOK, struct{}{})
}

type infoResponse struct {
	Languages []string        `json:"languages"`
	Features  map[string]bool `json:"features"`
}

// Info tells the frontend which optional features this install has enabled.
func (h *utilsEndpoints) Info(w http.ResponseWriter, r *http.Request) error {
	return WriteJSON(w, http.StatusOK, infoResponse{
		Languages: exec.Languages(),
		Features: map[string]bool{
			"history":     h.cfg.HistoryEnabled(),
			"collabAuth":  h.cfg.CollabAuthEnabled(),
			"eventMirror": h.cfg.MirrorEnabled(),
		},
	})
}
