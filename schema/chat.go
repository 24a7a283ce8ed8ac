package schema

import "time"

// DefaultChatName is assigned at creation and replaced once by auto-naming.
const DefaultChatName = "New Chat"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Label returns the prefix used when rendering a transcript line.
func (r Role) Label() string {
	if r == RoleAssistant {
		return "Assistant"
	}
	return "User"
}

// Chat is an ordered conversation owned by a single user.
type Chat struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UserID     string    `json:"userId"`
	MessageIDs []string  `json:"messageIds"`
	FileIDs    []string  `json:"fileIds"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// IsEmpty reports whether the chat has no messages yet.
func (c *Chat) IsEmpty() bool {
	return c == nil || len(c.MessageIDs) == 0
}

// HasDefaultName reports whether the chat still carries an unset name.
func (c *Chat) HasDefaultName() bool {
	return c.Name == "" || c.Name == DefaultChatName
}

// Message is a single persisted conversation turn.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageEmbedding stores the vector of a message, scoped to its author.
type MessageEmbedding struct {
	ID        string    `json:"id"`
	MessageID string    `json:"messageId"`
	UserID    string    `json:"userId"`
	ChatID    string    `json:"chatId,omitempty"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
	CreatedAt time.Time `json:"createdAt"`
}
