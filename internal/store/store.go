// Package store persists conversations and their transcript messages
// behind the REST plumbing. Two implementations: in-memory for tests and
// single-binary runs, Postgres for deployments.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a conversation does not exist.
var ErrNotFound = errors.New("store: not found")

// Conversation groups the messages of one realtime session.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Mode      string    `json:"mode"`
	Language  string    `json:"language"`
	PersonaID string    `json:"persona_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one transcript entry: what the user said or what the
// assistant replied, voice and text alike.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store is the persistence surface for conversations and messages.
type Store interface {
	CreateConversation(ctx context.Context, c Conversation) error
	GetConversation(ctx context.Context, id string) (Conversation, error)
	ListConversations(ctx context.Context, limit int) ([]Conversation, error)
	DeleteConversation(ctx context.Context, id string) error

	AppendMessage(ctx context.Context, m Message) error
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)

	Close()
}
