package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"codestudio-backend/internal/ai"
	"codestudio-backend/internal/model"
	historyservice "codestudio-backend/internal/service/history"
)

type AIEndpoints interface {
	Generate(http.ResponseWriter, *http.Request) error
	Models(http.ResponseWriter, *http.Request) error
	Status(http.ResponseWriter, *http.Request) error
	Conversations(http.ResponseWriter, *http.Request) error
	Conversation(http.ResponseWriter, *http.Request) error
}

type aiEndpoints struct {
	client *ai.Client
	// history is nil when no store is configured.
	history            *historyservice.Service
	conversationPrefix string
}

func NewAIEndpoints(client *ai.Client, history *historyservice.Service, conversationPrefix string) AIEndpoints {
	return &aiEndpoints{
		client:             client,
		history:            history,
		conversationPrefix: conversationPrefix,
	}
}

type generateRequest struct {
	Prompt         string `json:"prompt"`
	Model          string `json:"model"`
	System         string `json:"system,omitempty"`
	Workspace      string `json:"workspace,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
}

func (h *aiEndpoints) Generate(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleGenerate,
	})
}

// handleGenerate streams completion fragments as newline-delimited JSON. When
// a conversation id is supplied and the history store is configured, both the
// prompt and the full completion are persisted.
func (h *aiEndpoints) handleGenerate(w http.ResponseWriter, r *http.Request) error {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request body",
			ErrorLog:   fmt.Errorf("decode generate request: %w", err),
		}
	}
	if strings.TrimSpace(req.Prompt) == "" || strings.TrimSpace(req.Model) == "" {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "prompt and model are required",
			ErrorLog:   fmt.Errorf("generate request missing prompt or model"),
		}
	}

	// Canceling on return releases the stream goroutine when the response
	// writer fails mid-stream and we bail before draining.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	fragments, err := h.client.Generate(ctx, ai.GenerateRequest{
		Prompt: req.Prompt,
		Model:  req.Model,
		System: req.System,
	})
	if err != nil {
		return aiError(err)
	}

	h.recordMessage(r, req, model.RoleUser, req.Prompt)

	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	encoder := json.NewEncoder(w)
	var full strings.Builder

	for fragment := range fragments {
		if fragment.Err != nil {
			// The stream already started; all we can do is stop.
			return nil
		}
		if fragment.Content != "" {
			full.WriteString(fragment.Content)
		}
		if err := encoder.Encode(fragment); err != nil {
			return nil
		}
		if flusher != nil {
			flusher.Flush()
		}
		if fragment.Done {
			break
		}
	}

	h.recordMessage(r, req, model.RoleAssistant, full.String())
	return nil
}

func (h *aiEndpoints) recordMessage(r *http.Request, req generateRequest, role, content string) {
	if h.history == nil || req.ConversationID == "" || content == "" {
		return
	}
	_, _ = h.history.AppendMessage(r.Context(), historyservice.AppendMessageParams{
		Workspace:      req.Workspace,
		ConversationID: req.ConversationID,
		Role:           role,
		Content:        content,
		Model:          req.Model,
	})
}

func (h *aiEndpoints) Models(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleModels,
	})
}

type modelsResponse struct {
	Models []ai.Model `json:"models"`
}

func (h *aiEndpoints) handleModels(w http.ResponseWriter, r *http.Request) error {
	models, err := h.client.ListModels(r.Context())
	if err != nil {
		return aiError(err)
	}
	if len(models) == 0 {
		return &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "No models are installed in the runtime",
			Code:       "no_models",
			ErrorLog:   ai.ErrNoModels,
		}
	}
	return WriteJSON(w, http.StatusOK, modelsResponse{Models: models})
}

func (h *aiEndpoints) Status(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleStatus,
	})
}

type statusResponse struct {
	Reachable bool   `json:"reachable"`
	Detail    string `json:"detail,omitempty"`
}

func (h *aiEndpoints) handleStatus(w http.ResponseWriter, r *http.Request) error {
	if err := h.client.Ping(r.Context()); err != nil {
		return WriteJSON(w, http.StatusOK, statusResponse{Reachable: false, Detail: err.Error()})
	}
	return WriteJSON(w, http.StatusOK, statusResponse{Reachable: true})
}

func (h *aiEndpoints) Conversations(w http.ResponseWriter, r *http.Request) error {
	if err := h.requireHistory(); err != nil {
		return err
	}
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:  h.handleListConversations,
		http.MethodPost: h.handleStartConversation,
	})
}

func (h *aiEndpoints) Conversation(w http.ResponseWriter, r *http.Request) error {
	if err := h.requireHistory(); err != nil {
		return err
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, h.conversationPrefix), "/")
	if rest == "" {
		return &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Conversation not found",
			ErrorLog:   fmt.Errorf("conversation id missing from path"),
		}
	}

	if strings.HasSuffix(rest, "/messages") {
		conversationID := strings.TrimSuffix(rest, "/messages")
		conversationID = strings.Trim(conversationID, "/")
		return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
			http.MethodPost: func(w http.ResponseWriter, r *http.Request) error {
				return h.handleAppendMessage(w, r, conversationID)
			},
		})
	}

	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) error {
			return h.handleGetTranscript(w, r, rest)
		},
		http.MethodDelete: func(w http.ResponseWriter, r *http.Request) error {
			return h.handleDeleteConversation(w, r, rest)
		},
	})
}

type startConversationRequest struct {
	Workspace string `json:"workspace"`
	Title     string `json:"title,omitempty"`
	Model     string `json:"model,omitempty"`
}

func (h *aiEndpoints) handleStartConversation(w http.ResponseWriter, r *http.Request) error {
	var req startConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request body",
			ErrorLog:   fmt.Errorf("decode start conversation request: %w", err),
		}
	}

	conversation, err := h.history.StartConversation(r.Context(), historyservice.StartConversationParams{
		Workspace: req.Workspace,
		Title:     req.Title,
		Model:     req.Model,
	})
	if err != nil {
		return historyError(err)
	}
	return WriteJSON(w, http.StatusCreated, conversation)
}

func (h *aiEndpoints) handleListConversations(w http.ResponseWriter, r *http.Request) error {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	conversations, err := h.history.ListConversations(r.Context(), r.URL.Query().Get("workspace"), limit)
	if err != nil {
		return historyError(err)
	}
	return WriteJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

func (h *aiEndpoints) handleGetTranscript(w http.ResponseWriter, r *http.Request, conversationID string) error {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	transcript, err := h.history.GetTranscript(r.Context(), r.URL.Query().Get("workspace"), conversationID, limit)
	if err != nil {
		return historyError(err)
	}
	return WriteJSON(w, http.StatusOK, transcript)
}

type appendMessageRequest struct {
	Workspace string `json:"workspace"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Model     string `json:"model,omitempty"`
}

func (h *aiEndpoints) handleAppendMessage(w http.ResponseWriter, r *http.Request, conversationID string) error {
	var req appendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request body",
			ErrorLog:   fmt.Errorf("decode append message request: %w", err),
		}
	}

	message, err := h.history.AppendMessage(r.Context(), historyservice.AppendMessageParams{
		Workspace:      req.Workspace,
		ConversationID: conversationID,
		Role:           req.Role,
		Content:        req.Content,
		Model:          req.Model,
	})
	if err != nil {
		return historyError(err)
	}
	return WriteJSON(w, http.StatusCreated, message)
}

func (h *aiEndpoints) handleDeleteConversation(w http.ResponseWriter, r *http.Request, conversationID string) error {
	if err := h.history.DeleteConversation(r.Context(), r.URL.Query().Get("workspace"), conversationID); err != nil {
		return historyError(err)
	}
	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "Deleted"})
}

func (h *aiEndpoints) requireHistory() error {
	if h.history != nil {
		return nil
	}
	return &HTTPError{
		StatusCode: http.StatusServiceUnavailable,
		Message:    "Conversation history is not configured",
		Code:       "history_disabled",
		ErrorLog:   fmt.Errorf("history endpoint hit without store"),
	}
}

// aiError maps runtime client failures onto distinct HTTP answers so the
// frontend can tell "runtime down" from "runtime rejected the request".
func aiError(err error) error {
	var apiErr *ai.APIError
	switch {
	case errors.Is(err, ai.ErrUnreachable):
		return &HTTPError{
			StatusCode: http.StatusServiceUnavailable,
			Message:    "Model runtime is unreachable",
			Code:       "runtime_unreachable",
			ErrorLog:   err,
		}
	case errors.As(err, &apiErr):
		return &HTTPError{
			StatusCode: http.StatusBadGateway,
			Message:    apiErr.Message,
			Code:       "runtime_error",
			ErrorLog:   err,
		}
	default:
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Model request failed",
			ErrorLog:   err,
		}
	}
}

func historyError(err error) error {
	if err == nil {
		return nil
	}

	svcErr, ok := err.(*historyservice.Error)
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("history service: %w", err),
		}
	}

	var logErr error
	if svcErr.Err != nil {
		logErr = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		logErr = svcErr
	}

	switch svcErr.Code {
	case historyservice.ErrorCodeValidation:
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: svcErr.Message, ErrorLog: logErr}
	case historyservice.ErrorCodeNotFound:
		return &HTTPError{StatusCode: http.StatusNotFound, Message: svcErr.Message, ErrorLog: logErr}
	default:
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: svcErr.Message, ErrorLog: logErr}
	}
}
