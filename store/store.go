// Package store defines the persistence collaborators of the chat core:
// chats, messages, documents and message embeddings.
package store

import (
	"context"
	"errors"

	"github.com/viant/projectlens/schema"
)

// ErrNotFound is returned when a record id does not resolve.
var ErrNotFound = errors.New("store: not found")

// Chats persists chat records and their ordered message lists.
type Chats interface {
	CreateChat(ctx context.Context, chat *schema.Chat) error
	GetChat(ctx context.Context, id string) (*schema.Chat, error)
	ListChats(ctx context.Context, userID string) ([]*schema.Chat, error)
	UpdateChatName(ctx context.Context, id, name string) error
	// RenameChatIfDefault sets name only while the chat still carries the
	// default name and reports whether it did.
	RenameChatIfDefault(ctx context.Context, id, name string) (bool, error)
	DeleteChat(ctx context.Context, id string) error
	AttachFile(ctx context.Context, chatID, documentID string) error
	DetachFile(ctx context.Context, chatID, documentID string) error
}

// Messages persists conversation messages.
type Messages interface {
	// AppendMessage creates msg and appends its id to the chat's message list.
	AppendMessage(ctx context.Context, msg *schema.Message) error
	// GetMessagesByIDs returns the messages that exist, in ids order.
	GetMessagesByIDs(ctx context.Context, ids []string) ([]*schema.Message, error)
}

// Documents persists uploaded documents.
type Documents interface {
	CreateDocument(ctx context.Context, doc *schema.Document) error
	GetDocument(ctx context.Context, id string) (*schema.Document, error)
	// GetDocumentsByIDs returns the documents that exist, in ids order. Stale
	// ids are skipped.
	GetDocumentsByIDs(ctx context.Context, ids []string) ([]*schema.Document, error)
	ListDocuments(ctx context.Context) ([]*schema.Document, error)
	ListEmbeddedDocuments(ctx context.Context) ([]*schema.Document, error)
	UpdateDocumentName(ctx context.Context, id, name string) error
	DeleteDocument(ctx context.Context, id string) error
}

// MessageEmbeddings persists message vectors scoped by author.
type MessageEmbeddings interface {
	CreateMessageEmbedding(ctx context.Context, rec *schema.MessageEmbedding) error
	ListMessageEmbeddings(ctx context.Context, userID string) ([]*schema.MessageEmbedding, error)
	DeleteMessageEmbeddings(ctx context.Context, messageID string) error
}

// Store is the full persistence surface.
type Store interface {
	Chats
	Messages
	Documents
	MessageEmbeddings
	Close() error
}
