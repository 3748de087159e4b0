package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"codestudio-backend/internal/exec"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type ExecEndpoints interface {
	Run(http.ResponseWriter, *http.Request) error
	Languages(http.ResponseWriter, *http.Request) error
}

type execEndpoints struct {
	runner *exec.Runner
}

func NewExecEndpoints(runner *exec.Runner) ExecEndpoints {
	return &execEndpoints{runner: runner}
}

func (h *execEndpoints) Run(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleRun,
	})
}

func (h *execEndpoints) Languages(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleLanguages,
	})
}

type runRequest struct {
	SourceCode string `json:"sourceCode" validate:"required"`
	LanguageID string `json:"languageId" validate:"required"`
	TimeoutMs  int    `json:"timeoutMs" validate:"gte=0"`
}

func (h *execEndpoints) handleRun(w http.ResponseWriter, r *http.Request) error {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request body",
			ErrorLog:   fmt.Errorf("decode run request: %w", err),
		}
	}
	if err := validate.Struct(req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "sourceCode and languageId are required",
			ErrorLog:   fmt.Errorf("validate run request: %w", err),
		}
	}

	result, err := h.runner.Run(r.Context(), exec.Request{
		SourceCode: req.SourceCode,
		LanguageID: req.LanguageID,
		TimeoutMs:  req.TimeoutMs,
	})
	if err != nil {
		if errors.Is(err, exec.ErrUnknownLanguage) {
			return &HTTPError{
				StatusCode: http.StatusBadRequest,
				Message:    "Unsupported language",
				ErrorLog:   err,
			}
		}
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Execution failed to start",
			ErrorLog:   err,
		}
	}

	return WriteJSON(w, http.StatusOK, result)
}

type languagesResponse struct {
	Languages []string `json:"languages"`
}

func (h *execEndpoints) handleLanguages(w http.ResponseWriter, r *http.Request) error {
	return WriteJSON(w, http.StatusOK, languagesResponse{Languages: exec.Languages()})
}
