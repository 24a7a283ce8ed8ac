package mcp

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"

	"github.com/viant/projectlens/generation"
	"github.com/viant/projectlens/schema"
	"github.com/viant/projectlens/service"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	dir := t.TempDir()
	cfg := &service.Config{
		Store:    service.StoreConfig{Driver: service.DriverMemory},
		Blob:     service.BlobConfig{URL: "file://" + filepath.ToSlash(dir) + "/blob"},
		Embedder: service.EmbedderConfig{Provider: service.ProviderHashing},
		Memory:   service.MemoryConfig{Provider: service.ProviderInMemory},
	}
	model := generation.Func(func(_ context.Context, system, prompt string) (string, error) {
		if strings.Contains(system, "titles") {
			return "Budget Questions", nil
		}
		return "The budget is attached.", nil
	})
	svc, err := service.New(context.Background(), cfg, service.WithGenerator(model))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return &Handler{service: svc}
}

func TestHandler_ChatFlow(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()
	user := "u1"

	created, err := h.createChat(ctx, &CreateChatInput{UserID: user})
	if err != nil {
		t.Fatalf("createChat: %v", err)
	}
	if created.Chat.Name != schema.DefaultChatName {
		t.Fatalf("unexpected name %q", created.Chat.Name)
	}
	chatID := created.Chat.ID

	uploaded, err := h.uploadDocument(ctx, &UploadDocumentInput{
		UserID:        user,
		Name:          "budget notes.txt",
		ContentBase64: base64.StdEncoding.EncodeToString([]byte("marketing budget 40k")),
		ChatID:        chatID,
	})
	if err != nil {
		t.Fatalf("uploadDocument: %v", err)
	}
	if !uploaded.Document.Embedded || uploaded.Document.TextChars == 0 {
		t.Fatalf("expected embedded text document: %+v", uploaded.Document)
	}

	sent, err := h.sendMessage(ctx, &SendMessageInput{UserID: user, ChatID: chatID, Text: "what is the marketing budget"})
	if err != nil {
		t.Fatalf("sendMessage: %v", err)
	}
	if sent.Reply != "The budget is attached." || sent.ChatName != "Budget Questions" || !sent.Renamed {
		t.Fatalf("unexpected reply: %+v", sent)
	}

	listed, err := h.listChats(ctx, &ListChatsInput{UserID: user})
	if err != nil {
		t.Fatalf("listChats: %v", err)
	}
	if len(listed.Chats) != 1 || len(listed.Chats[0].MessageIDs) != 2 || len(listed.Chats[0].FileIDs) != 1 {
		t.Fatalf("unexpected chats: %+v", listed.Chats)
	}

	docs, err := h.searchDocuments(ctx, &SearchInput{Query: "marketing budget"})
	if err != nil {
		t.Fatalf("searchDocuments: %v", err)
	}
	if len(docs.Results) == 0 || docs.Results[0].ID != uploaded.Document.ID {
		t.Fatalf("unexpected documents: %+v", docs.Results)
	}

	if _, err := h.renameChat(ctx, &RenameChatInput{UserID: user, ChatID: chatID, Name: "Budget"}); err != nil {
		t.Fatalf("renameChat: %v", err)
	}
	if _, err := h.attachDocument(ctx, &AttachDocumentInput{UserID: user, ChatID: chatID, DocumentID: uploaded.Document.ID, Detach: true}); err != nil {
		t.Fatalf("detach: %v", err)
	}
}

func TestHandler_RejectsInvalidInput(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()
	if _, err := h.createChat(ctx, &CreateChatInput{}); err == nil {
		t.Fatalf("expected missing userId error")
	}
	if _, err := h.uploadDocument(ctx, &UploadDocumentInput{UserID: "u1", Name: "a.bin", ContentBase64: "%%%"}); err == nil {
		t.Fatalf("expected base64 error")
	}
	if _, err := h.searchMessages(ctx, &SearchInput{UserID: "u1"}); err == nil {
		t.Fatalf("expected missing query error")
	}

	created, err := h.createChat(ctx, &CreateChatInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("createChat: %v", err)
	}
	if _, err := h.sendMessage(ctx, &SendMessageInput{UserID: "intruder", ChatID: created.Chat.ID, Text: "hi"}); err == nil {
		t.Fatalf("expected authorization failure")
	}
}

func TestBuildResults(t *testing.T) {
	res, rpcErr := buildSuccessResult(&StatusOutput{Success: true})
	if rpcErr != nil || len(res.Content) != 1 {
		t.Fatalf("unexpected result: %+v %v", res, rpcErr)
	}
	if _, rpcErr := buildErrorResult("bad"); rpcErr == nil {
		t.Fatalf("unexpected error: %+v", rpcErr)
	}
}
