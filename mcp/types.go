package mcp

import (
	"github.com/viant/projectlens/assembler"
	"github.com/viant/projectlens/schema"
	"github.com/viant/projectlens/service"
)

// Every input carries UserID, the caller identity in place of a session.

type CreateChatInput struct {
	UserID string `json:"userId"`
}

type ChatOutput struct {
	Chat *schema.Chat `json:"chat"`
}

type ListChatsInput struct {
	UserID string `json:"userId"`
}

type ListChatsOutput struct {
	Chats []*schema.Chat `json:"chats"`
}

type RenameChatInput struct {
	UserID string `json:"userId"`
	ChatID string `json:"chatId"`
	Name   string `json:"name"`
}

type AttachDocumentInput struct {
	UserID     string `json:"userId"`
	ChatID     string `json:"chatId"`
	DocumentID string `json:"documentId"`
	Detach     bool   `json:"detach,omitempty"`
}

type StatusOutput struct {
	Success bool `json:"success"`
}

type UploadDocumentInput struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType,omitempty"`
	// Content is plain text; ContentBase64 carries binary files.
	Content       string `json:"content,omitempty"`
	ContentBase64 string `json:"contentBase64,omitempty"`
	ChatID        string `json:"chatId,omitempty"`
}

type DocumentInfo struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Path      string              `json:"path"`
	Format    schema.SourceFormat `json:"format"`
	TextChars int                 `json:"textChars"`
	Embedded  bool                `json:"embedded"`
}

type UploadDocumentOutput struct {
	Document DocumentInfo `json:"document"`
}

type SendMessageInput struct {
	UserID string `json:"userId"`
	ChatID string `json:"chatId"`
	Text   string `json:"text"`
}

type SendMessageOutput struct {
	UserMessageID   string                     `json:"userMessageId"`
	AIMessageID     string                     `json:"aiMessageId"`
	Reply           string                     `json:"reply"`
	ChatName        string                     `json:"chatName,omitempty"`
	Renamed         bool                       `json:"renamed,omitempty"`
	Documents       []assembler.DocumentRef    `json:"documents,omitempty"`
	SimilarMessages []assembler.SimilarMessage `json:"similarMessages,omitempty"`
	FromFallback    bool                       `json:"documentsFromFallback,omitempty"`
}

type SearchInput struct {
	UserID string `json:"userId,omitempty"`
	Query  string `json:"query"`
	Limit  int    `json:"limit,omitempty"`
}

type SearchDocumentsOutput struct {
	Results []service.DocumentHit `json:"results"`
}

type SearchMessagesOutput struct {
	Results []service.MessageHit `json:"results"`
}
