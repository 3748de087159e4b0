package history

import (
	"context"
	"errors"
	"sort"
	"strings"

	"codestudio-backend/internal/database"
	"codestudio-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("history repository: not found")

type Repository interface {
	CreateConversation(ctx context.Context, conversation model.ConversationItem) error
	GetConversation(ctx context.Context, workspace, conversationID string) (model.ConversationItem, error)
	TouchConversation(ctx context.Context, workspace, conversationID, updatedAt string) error
	ListConversations(ctx context.Context, workspace string, limit int) ([]model.ConversationItem, error)
	DeleteConversation(ctx context.Context, workspace, conversationID string) error
	CreateMessage(ctx context.Context, message model.ChatMessageItem) error
	ListMessages(ctx context.Context, conversationID string, limit int) ([]model.ChatMessageItem, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) CreateConversation(ctx context.Context, conversation model.ConversationItem) error {
	return r.db.Client.PutItem(ctx, model.ConversationsTable, conversation)
}

func (r *DynamoRepository) GetConversation(ctx context.Context, workspace, conversationID string) (model.ConversationItem, error) {
	var conversation model.ConversationItem
	err := r.db.Client.GetItem(
		ctx,
		model.ConversationsTable,
		map[string]types.AttributeValue{
			"pk": database.AttrString(model.ConversationPK(workspace, conversationID)),
		},
		&conversation,
	)
	if err != nil {
		if isNotFound(err) {
			return model.ConversationItem{}, ErrNotFound
		}
		return model.ConversationItem{}, err
	}
	return conversation, nil
}

func (r *DynamoRepository) TouchConversation(ctx context.Context, workspace, conversationID, updatedAt string) error {
	err := r.db.Client.UpdateItem(
		ctx,
		model.ConversationsTable,
		map[string]types.AttributeValue{
			"pk": database.AttrString(model.ConversationPK(workspace, conversationID)),
		},
		"SET #u = :u",
		map[string]types.AttributeValue{
			":u": database.AttrString(updatedAt),
		},
		map[string]string{
			"#u": "updatedAt",
		},
		nil,
	)
	if err != nil && isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *DynamoRepository) ListConversations(ctx context.Context, workspace string, limit int) ([]model.ConversationItem, error) {
	items, err := r.db.Client.QueryItems(
		ctx,
		model.ConversationsTable,
		aws.String(model.ConversationsByWorkspaceIndex),
		"#w = :w",
		map[string]types.AttributeValue{
			":w": database.AttrString(workspace),
		},
		map[string]string{
			"#w": "workspace",
		},
		nil,
	)
	if err != nil {
		return nil, err
	}

	conversations := make([]model.ConversationItem, 0, len(items))
	for _, item := range items {
		var conversation model.ConversationItem
		if err := attributevalue.UnmarshalMap(item, &conversation); err != nil {
			return nil, err
		}
		conversations = append(conversations, conversation)
	}

	// Most recently updated first.
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt > conversations[j].UpdatedAt
	})
	if limit > 0 && len(conversations) > limit {
		conversations = conversations[:limit]
	}
	return conversations, nil
}

func (r *DynamoRepository) DeleteConversation(ctx context.Context, workspace, conversationID string) error {
	messages, err := r.ListMessages(ctx, conversationID, 0)
	if err != nil {
		return err
	}
	for _, message := range messages {
		err := r.db.Client.DeleteItem(ctx, model.MessagesTable, map[string]types.AttributeValue{
			"pk": database.AttrString(message.PK),
		})
		if err != nil {
			return err
		}
	}

	return r.db.Client.DeleteItem(ctx, model.ConversationsTable, map[string]types.AttributeValue{
		"pk": database.AttrString(model.ConversationPK(workspace, conversationID)),
	})
}

func (r *DynamoRepository) CreateMessage(ctx context.Context, message model.ChatMessageItem) error {
	return r.db.Client.PutItem(ctx, model.MessagesTable, message)
}

func (r *DynamoRepository) ListMessages(ctx context.Context, conversationID string, limit int) ([]model.ChatMessageItem, error) {
	items, err := r.db.Client.QueryItems(
		ctx,
		model.MessagesTable,
		aws.String(model.MessagesByConversationIndex),
		"#c = :c",
		map[string]types.AttributeValue{
			":c": database.AttrString(conversationID),
		},
		map[string]string{
			"#c": "conversationId",
		},
		nil,
	)
	if err != nil {
		return nil, err
	}

	messages := make([]model.ChatMessageItem, 0, len(items))
	for _, item := range items {
		var message model.ChatMessageItem
		if err := attributevalue.UnmarshalMap(item, &message); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt < messages[j].CreatedAt
	})
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return true
	}
	// The generic client reports a missing item as a plain error.
	return strings.Contains(err.Error(), "item not found")
}
