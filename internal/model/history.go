package model

import "fmt"

const (
	ConversationsTable = "StudioConversations"
	MessagesTable      = "StudioMessages"

	// GSI on ConversationsTable keyed by workspace.
	ConversationsByWorkspaceIndex = "workspace-index"

	// GSI on MessagesTable keyed by conversationId.
	MessagesByConversationIndex = "byConversation"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationItem is one AI chat transcript, scoped to a workspace.
type ConversationItem struct {
	PK             string `dynamodbav:"pk" json:"-"`
	ConversationID string `dynamodbav:"conversationId" json:"conversationId"`
	Workspace      string `dynamodbav:"workspace" json:"workspace"`
	Title          string `dynamodbav:"title" json:"title"`
	Model          string `dynamodbav:"model" json:"model"`
	CreatedAt      string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt      string `dynamodbav:"updatedAt" json:"updatedAt"`
}

// ChatMessageItem is one prompt or completion inside a conversation.
type ChatMessageItem struct {
	PK             string `dynamodbav:"pk" json:"-"`
	ConversationID string `dynamodbav:"conversationId" json:"conversationId"`
	MessageID      string `dynamodbav:"messageId" json:"messageId"`
	Role           string `dynamodbav:"role" json:"role"`
	Content        string `dynamodbav:"content" json:"content"`
	Model          string `dynamodbav:"model" json:"model,omitempty"`
	CreatedAt      string `dynamodbav:"createdAt" json:"createdAt"`
}

func ConversationPK(workspace, conversationID string) string {
	return fmt.Sprintf("%s#%s", workspace, conversationID)
}

func MessagePK(conversationID, messageID string) string {
	return fmt.Sprintf("%s#%s", conversationID, messageID)
}
