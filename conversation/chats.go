package conversation

import (
	"context"
	"errors"
	"strings"

	"github.com/viant/projectlens/schema"
	"github.com/viant/projectlens/store"
)

// CreateChat creates a chat with the default name for the session user.
func (c *Controller) CreateChat(ctx context.Context) (*schema.Chat, error) {
	userID, ok := c.session.CurrentUserID(ctx)
	if !ok {
		return nil, newFailure(KindAuthorization, "create chat", "user not authenticated", nil)
	}
	chat := &schema.Chat{UserID: userID, Name: schema.DefaultChatName}
	if err := c.store.CreateChat(ctx, chat); err != nil {
		return nil, newFailure(KindPersistence, "create chat", "failed to create chat", err)
	}
	return chat, nil
}

// ListChats returns the session user's chats, most recently updated first.
func (c *Controller) ListChats(ctx context.Context) ([]*schema.Chat, error) {
	userID, ok := c.session.CurrentUserID(ctx)
	if !ok {
		return nil, newFailure(KindAuthorization, "list chats", "user not authenticated", nil)
	}
	chats, err := c.store.ListChats(ctx, userID)
	if err != nil {
		return nil, newFailure(KindPersistence, "list chats", "failed to list chats", err)
	}
	return chats, nil
}

// GetChat returns a chat owned by the session user.
func (c *Controller) GetChat(ctx context.Context, chatID string) (*schema.Chat, error) {
	chat, failure := c.authorizedChat(ctx, "get chat", chatID)
	if failure != nil {
		return nil, failure
	}
	return chat, nil
}

// Messages returns the chat's messages in order.
func (c *Controller) Messages(ctx context.Context, chatID string) ([]*schema.Message, error) {
	chat, failure := c.authorizedChat(ctx, "messages", chatID)
	if failure != nil {
		return nil, failure
	}
	msgs, err := c.store.GetMessagesByIDs(ctx, chat.MessageIDs)
	if err != nil {
		return nil, newFailure(KindPersistence, "messages", "failed to load messages", err)
	}
	return msgs, nil
}

// Rename sets the chat name explicitly; it is independent of auto-naming.
func (c *Controller) Rename(ctx context.Context, chatID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return newFailure(KindInvalidInput, "rename", "name is empty", nil)
	}
	if _, failure := c.authorizedChat(ctx, "rename", chatID); failure != nil {
		return failure
	}
	if err := c.store.UpdateChatName(ctx, chatID, name); err != nil {
		return persistenceFailure("rename", "failed to rename chat", err)
	}
	return nil
}

// DeleteChat removes a chat, its messages and their embeddings.
func (c *Controller) DeleteChat(ctx context.Context, chatID string) error {
	chat, failure := c.authorizedChat(ctx, "delete chat", chatID)
	if failure != nil {
		return failure
	}
	for _, id := range chat.MessageIDs {
		if err := c.store.DeleteMessageEmbeddings(ctx, id); err != nil {
			c.logger.Printf("delete message embeddings failed: message=%s err=%v", id, err)
		}
	}
	if err := c.store.DeleteChat(ctx, chatID); err != nil {
		return persistenceFailure("delete chat", "failed to delete chat", err)
	}
	return nil
}

// Attach adds a document to the chat's attached files.
func (c *Controller) Attach(ctx context.Context, chatID, documentID string) error {
	if _, failure := c.authorizedChat(ctx, "attach", chatID); failure != nil {
		return failure
	}
	if err := c.store.AttachFile(ctx, chatID, documentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newFailure(KindNotFound, "attach", "document "+documentID+" not found", err)
		}
		return newFailure(KindPersistence, "attach", "failed to attach document", err)
	}
	return nil
}

// Detach removes a document from the chat's attached files.
func (c *Controller) Detach(ctx context.Context, chatID, documentID string) error {
	if _, failure := c.authorizedChat(ctx, "detach", chatID); failure != nil {
		return failure
	}
	if err := c.store.DetachFile(ctx, chatID, documentID); err != nil {
		return persistenceFailure("detach", "failed to detach document", err)
	}
	return nil
}
