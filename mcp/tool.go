package mcp

import (
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"

	"github.com/viant/projectlens/auth"
	"github.com/viant/projectlens/conversation"
	"github.com/viant/projectlens/ingest"
)

//go:embed tools/createChat.md
var descCreateChat string

//go:embed tools/listChats.md
var descListChats string

//go:embed tools/renameChat.md
var descRenameChat string

//go:embed tools/attachDocument.md
var descAttachDocument string

//go:embed tools/uploadDocument.md
var descUploadDocument string

//go:embed tools/sendMessage.md
var descSendMessage string

//go:embed tools/searchDocuments.md
var descSearchDocuments string

//go:embed tools/searchMessages.md
var descSearchMessages string

func registerTools(registry *protoserver.Registry, h *Handler) error {
	if err := protoserver.RegisterTool[*CreateChatInput, *ChatOutput](registry, "createChat", descCreateChat, func(ctx context.Context, in *CreateChatInput) (*schema.CallToolResult, *jsonrpc.Error) {
		return result(h.createChat(ctx, in))
	}); err != nil {
		return err
	}
	if err := protoserver.RegisterTool[*ListChatsInput, *ListChatsOutput](registry, "listChats", descListChats, func(ctx context.Context, in *ListChatsInput) (*schema.CallToolResult, *jsonrpc.Error) {
		return result(h.listChats(ctx, in))
	}); err != nil {
		return err
	}
	if err := protoserver.RegisterTool[*RenameChatInput, *StatusOutput](registry, "renameChat", descRenameChat, func(ctx context.Context, in *RenameChatInput) (*schema.CallToolResult, *jsonrpc.Error) {
		return result(h.renameChat(ctx, in))
	}); err != nil {
		return err
	}
	if err := protoserver.RegisterTool[*AttachDocumentInput, *StatusOutput](registry, "attachDocument", descAttachDocument, func(ctx context.Context, in *AttachDocumentInput) (*schema.CallToolResult, *jsonrpc.Error) {
		return result(h.attachDocument(ctx, in))
	}); err != nil {
		return err
	}
	if err := protoserver.RegisterTool[*UploadDocumentInput, *UploadDocumentOutput](registry, "uploadDocument", descUploadDocument, func(ctx context.Context, in *UploadDocumentInput) (*schema.CallToolResult, *jsonrpc.Error) {
		return result(h.uploadDocument(ctx, in))
	}); err != nil {
		return err
	}
	if err := protoserver.RegisterTool[*SendMessageInput, *SendMessageOutput](registry, "sendMessage", descSendMessage, func(ctx context.Context, in *SendMessageInput) (*schema.CallToolResult, *jsonrpc.Error) {
		return result(h.sendMessage(ctx, in))
	}); err != nil {
		return err
	}
	if err := protoserver.RegisterTool[*SearchInput, *SearchDocumentsOutput](registry, "searchDocuments", descSearchDocuments, func(ctx context.Context, in *SearchInput) (*schema.CallToolResult, *jsonrpc.Error) {
		return result(h.searchDocuments(ctx, in))
	}); err != nil {
		return err
	}
	if err := protoserver.RegisterTool[*SearchInput, *SearchMessagesOutput](registry, "searchMessages", descSearchMessages, func(ctx context.Context, in *SearchInput) (*schema.CallToolResult, *jsonrpc.Error) {
		return result(h.searchMessages(ctx, in))
	}); err != nil {
		return err
	}
	return nil
}

func result[T any](out T, err error) (*schema.CallToolResult, *jsonrpc.Error) {
	if err != nil {
		return buildErrorResult(err.Error())
	}
	return buildSuccessResult(out)
}

func buildErrorResult(message string) (*schema.CallToolResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewError(jsonrpc.InvalidParams, message, nil)
}

func buildSuccessResult(payload any) (*schema.CallToolResult, *jsonrpc.Error) {
	b, _ := json.Marshal(payload)
	return &schema.CallToolResult{
		Content: []schema.CallToolResultContentElem{
			schema.TextContent{Type: "text", Text: string(b)},
		},
		StructuredContent: map[string]any{"result": payload},
	}, nil
}

// userContext places the tool caller into ctx.
func (h *Handler) userContext(ctx context.Context, userID string) (context.Context, error) {
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("mcp: missing userId")
	}
	return auth.WithUserID(ctx, userID), nil
}

func (h *Handler) metric(op string, start time.Time, format string, args ...any) {
	if h.metricsLog {
		log.Printf("mcp metric op=%s dur=%s "+format, append([]any{op, time.Since(start)}, args...)...)
	}
}

func (h *Handler) createChat(ctx context.Context, in *CreateChatInput) (*ChatOutput, error) {
	if in == nil {
		in = &CreateChatInput{}
	}
	ctx, err := h.userContext(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	chat, err := h.service.Conversation().CreateChat(ctx)
	if err != nil {
		return nil, err
	}
	return &ChatOutput{Chat: chat}, nil
}

func (h *Handler) listChats(ctx context.Context, in *ListChatsInput) (*ListChatsOutput, error) {
	if in == nil {
		in = &ListChatsInput{}
	}
	ctx, err := h.userContext(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	chats, err := h.service.Conversation().ListChats(ctx)
	if err != nil {
		return nil, err
	}
	return &ListChatsOutput{Chats: chats}, nil
}

func (h *Handler) renameChat(ctx context.Context, in *RenameChatInput) (*StatusOutput, error) {
	if in == nil {
		in = &RenameChatInput{}
	}
	ctx, err := h.userContext(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := h.service.Conversation().Rename(ctx, in.ChatID, in.Name); err != nil {
		return nil, err
	}
	return &StatusOutput{Success: true}, nil
}

func (h *Handler) attachDocument(ctx context.Context, in *AttachDocumentInput) (*StatusOutput, error) {
	if in == nil {
		in = &AttachDocumentInput{}
	}
	ctx, err := h.userContext(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	ctrl := h.service.Conversation()
	if in.Detach {
		err = ctrl.Detach(ctx, in.ChatID, in.DocumentID)
	} else {
		err = ctrl.Attach(ctx, in.ChatID, in.DocumentID)
	}
	if err != nil {
		return nil, err
	}
	return &StatusOutput{Success: true}, nil
}

func (h *Handler) uploadDocument(ctx context.Context, in *UploadDocumentInput) (*UploadDocumentOutput, error) {
	start := time.Now()
	if in == nil {
		in = &UploadDocumentInput{}
	}
	ctx, err := h.userContext(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, fmt.Errorf("mcp: missing name")
	}
	data := []byte(in.Content)
	if in.ContentBase64 != "" {
		if data, err = base64.StdEncoding.DecodeString(in.ContentBase64); err != nil {
			return nil, fmt.Errorf("mcp: invalid contentBase64: %w", err)
		}
	}
	if in.ChatID != "" {
		if _, err := h.service.Conversation().GetChat(ctx, in.ChatID); err != nil {
			return nil, err
		}
	}
	userID, _ := auth.UserID(ctx)
	doc, err := h.service.Ingest().Ingest(ctx, &ingest.Request{
		Data:     data,
		Name:     in.Name,
		MimeType: in.MimeType,
		UserID:   userID,
		ChatID:   in.ChatID,
	})
	if err != nil {
		return nil, err
	}
	h.metric("uploadDocument", start, "name=%q chars=%d embedded=%t", doc.Name, len(doc.ExtractedText), doc.HasEmbedding())
	return &UploadDocumentOutput{Document: DocumentInfo{
		ID:        doc.ID,
		Name:      doc.Name,
		Path:      doc.Path,
		Format:    doc.Format,
		TextChars: len(doc.ExtractedText),
		Embedded:  doc.HasEmbedding(),
	}}, nil
}

func (h *Handler) sendMessage(ctx context.Context, in *SendMessageInput) (*SendMessageOutput, error) {
	start := time.Now()
	if in == nil {
		in = &SendMessageInput{}
	}
	ctx, err := h.userContext(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	res := h.service.Conversation().Send(ctx, &conversation.SendRequest{ChatID: in.ChatID, Text: in.Text})
	if !res.Success {
		if res.Error != nil {
			return nil, res.Error
		}
		return nil, fmt.Errorf("mcp: sendMessage failed")
	}
	out := &SendMessageOutput{
		UserMessageID: res.UserMessageID,
		AIMessageID:   res.AIMessageID,
		Reply:         res.Reply,
		ChatName:      res.ChatName,
		Renamed:       res.Renamed,
	}
	if res.Context != nil {
		out.Documents = res.Context.Documents
		out.SimilarMessages = res.Context.SimilarMessages
		out.FromFallback = res.Context.DocumentsFromFallback
	}
	h.metric("sendMessage", start, "chat=%s documents=%d similar=%d", in.ChatID, len(out.Documents), len(out.SimilarMessages))
	return out, nil
}

func (h *Handler) searchDocuments(ctx context.Context, in *SearchInput) (*SearchDocumentsOutput, error) {
	start := time.Now()
	if in == nil {
		in = &SearchInput{}
	}
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	if strings.TrimSpace(in.Query) == "" {
		return nil, fmt.Errorf("mcp: missing query")
	}
	hits, err := h.service.SearchDocuments(ctx, in.Query, in.Limit)
	if err != nil {
		return nil, err
	}
	h.metric("searchDocuments", start, "matches=%d", len(hits))
	return &SearchDocumentsOutput{Results: hits}, nil
}

func (h *Handler) searchMessages(ctx context.Context, in *SearchInput) (*SearchMessagesOutput, error) {
	start := time.Now()
	if in == nil {
		in = &SearchInput{}
	}
	ctx, err := h.userContext(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Query) == "" {
		return nil, fmt.Errorf("mcp: missing query")
	}
	hits, err := h.service.SearchMessages(ctx, in.Query, in.Limit)
	if err != nil {
		return nil, err
	}
	h.metric("searchMessages", start, "matches=%d", len(hits))
	return &SearchMessagesOutput{Results: hits}, nil
}
