package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"codestudio-backend/internal/database"
	"codestudio-backend/internal/model"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorCodeValidation ErrorCode = "validation_error"
	ErrorCodeNotFound   ErrorCode = "not_found"
	ErrorCodeInternal   ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

type StartConversationParams struct {
	Workspace string
	Title     string
	Model     string
}

type AppendMessageParams struct {
	Workspace      string
	ConversationID string
	Role           string
	Content        string
	Model          string
}

type TranscriptResult struct {
	Conversation model.ConversationItem
	Messages     []model.ChatMessageItem
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func New(db *database.Database) *Service {
	return &Service{
		repo: NewDynamoRepository(db),
		now:  time.Now,
	}
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo: repo,
		now:  now,
	}
}

func (s *Service) StartConversation(ctx context.Context, params StartConversationParams) (model.ConversationItem, error) {
	workspace := strings.TrimSpace(params.Workspace)
	if workspace == "" {
		return model.ConversationItem{}, newError(ErrorCodeValidation, "workspace is required", nil)
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		title = "Untitled conversation"
	}

	nowStr := s.now().UTC().Format(time.RFC3339)
	conversationID := uuid.NewString()

	conversation := model.ConversationItem{
		PK:             model.ConversationPK(workspace, conversationID),
		ConversationID: conversationID,
		Workspace:      workspace,
		Title:          title,
		Model:          strings.TrimSpace(params.Model),
		CreatedAt:      nowStr,
		UpdatedAt:      nowStr,
	}

	if err := s.repo.CreateConversation(ctx, conversation); err != nil {
		return model.ConversationItem{}, newError(ErrorCodeInternal, "failed to create conversation", err)
	}

	return conversation, nil
}

func (s *Service) AppendMessage(ctx context.Context, params AppendMessageParams) (model.ChatMessageItem, error) {
	workspace := strings.TrimSpace(params.Workspace)
	conversationID := strings.TrimSpace(params.ConversationID)
	content := strings.TrimSpace(params.Content)

	if workspace == "" {
		return model.ChatMessageItem{}, newError(ErrorCodeValidation, "workspace is required", nil)
	}
	if conversationID == "" {
		return model.ChatMessageItem{}, newError(ErrorCodeValidation, "conversationId is required", nil)
	}
	if content == "" {
		return model.ChatMessageItem{}, newError(ErrorCodeValidation, "message content is required", nil)
	}
	if params.Role != model.RoleUser && params.Role != model.RoleAssistant {
		return model.ChatMessageItem{}, newError(ErrorCodeValidation, "role must be user or assistant", nil)
	}

	if _, err := s.repo.GetConversation(ctx, workspace, conversationID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.ChatMessageItem{}, newError(ErrorCodeNotFound, "conversation not found", err)
		}
		return model.ChatMessageItem{}, newError(ErrorCodeInternal, "failed to fetch conversation", err)
	}

	nowStr := s.now().UTC().Format(time.RFC3339)
	messageID := uuid.NewString()

	message := model.ChatMessageItem{
		PK:             model.MessagePK(conversationID, messageID),
		ConversationID: conversationID,
		MessageID:      messageID,
		Role:           params.Role,
		Content:        content,
		Model:          strings.TrimSpace(params.Model),
		CreatedAt:      nowStr,
	}

	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return model.ChatMessageItem{}, newError(ErrorCodeInternal, "failed to store message", err)
	}

	if err := s.repo.TouchConversation(ctx, workspace, conversationID, nowStr); err != nil {
		return model.ChatMessageItem{}, newError(ErrorCodeInternal, "failed to update conversation", err)
	}

	return message, nil
}

func (s *Service) ListConversations(ctx context.Context, workspace string, limit int) ([]model.ConversationItem, error) {
	workspace = strings.TrimSpace(workspace)
	if workspace == "" {
		return nil, newError(ErrorCodeValidation, "workspace is required", nil)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	conversations, err := s.repo.ListConversations(ctx, workspace, limit)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list conversations", err)
	}
	return conversations, nil
}

func (s *Service) GetTranscript(ctx context.Context, workspace, conversationID string, limit int) (TranscriptResult, error) {
	workspace = strings.TrimSpace(workspace)
	conversationID = strings.TrimSpace(conversationID)

	if workspace == "" {
		return TranscriptResult{}, newError(ErrorCodeValidation, "workspace is required", nil)
	}
	if conversationID == "" {
		return TranscriptResult{}, newError(ErrorCodeValidation, "conversationId is required", nil)
	}
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	conversation, err := s.repo.GetConversation(ctx, workspace, conversationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TranscriptResult{}, newError(ErrorCodeNotFound, "conversation not found", err)
		}
		return TranscriptResult{}, newError(ErrorCodeInternal, "failed to fetch conversation", err)
	}

	messages, err := s.repo.ListMessages(ctx, conversationID, limit)
	if err != nil {
		return TranscriptResult{}, newError(ErrorCodeInternal, "failed to list messages", err)
	}

	return TranscriptResult{
		Conversation: conversation,
		Messages:     messages,
	}, nil
}

func (s *Service) DeleteConversation(ctx context.Context, workspace, conversationID string) error {
	workspace = strings.TrimSpace(workspace)
	conversationID = strings.TrimSpace(conversationID)

	if workspace == "" {
		return newError(ErrorCodeValidation, "workspace is required", nil)
	}
	if conversationID == "" {
		return newError(ErrorCodeValidation, "conversationId is required", nil)
	}

	if _, err := s.repo.GetConversation(ctx, workspace, conversationID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return newError(ErrorCodeNotFound, "conversation not found", err)
		}
		return newError(ErrorCodeInternal, "failed to fetch conversation", err)
	}

	if err := s.repo.DeleteConversation(ctx, workspace, conversationID); err != nil {
		return newError(ErrorCodeInternal, "failed to delete conversation", err)
	}
	return nil
}
