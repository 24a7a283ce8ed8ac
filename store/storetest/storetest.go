// Package storetest holds behaviour tests shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/viant/projectlens/schema"
	"github.com/viant/projectlens/store"
)

// Run exercises s against the store.Store contract.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("chat lifecycle", func(t *testing.T) { testChatLifecycle(t, newStore(t)) })
	t.Run("messages", func(t *testing.T) { testMessages(t, newStore(t)) })
	t.Run("rename if default", func(t *testing.T) { testRenameIfDefault(t, newStore(t)) })
	t.Run("documents", func(t *testing.T) { testDocuments(t, newStore(t)) })
	t.Run("message embeddings", func(t *testing.T) { testMessageEmbeddings(t, newStore(t)) })
}

func testChatLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	chat := &schema.Chat{UserID: "u1"}
	if err := s.CreateChat(ctx, chat); err != nil {
		t.Fatalf("create chat: %v", err)
	}
	if chat.ID == "" || chat.Name != schema.DefaultChatName {
		t.Fatalf("expected id and default name: %+v", chat)
	}
	other := &schema.Chat{UserID: "u2", Name: "Other"}
	if err := s.CreateChat(ctx, other); err != nil {
		t.Fatalf("create chat: %v", err)
	}
	chats, err := s.ListChats(ctx, "u1")
	if err != nil || len(chats) != 1 || chats[0].ID != chat.ID {
		t.Fatalf("list chats: %v %v", chats, err)
	}
	if err := s.UpdateChatName(ctx, chat.ID, "Budget review"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, err := s.GetChat(ctx, chat.ID)
	if err != nil || got.Name != "Budget review" {
		t.Fatalf("get chat: %+v %v", got, err)
	}
	if _, err := s.GetChat(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateChatName(ctx, "missing", "x"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	doc := &schema.Document{Name: "report.pdf", Path: "mem://uploads/1-report.pdf", Format: schema.FormatPDF}
	if err := s.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("create document: %v", err)
	}
	if err := s.AttachFile(ctx, chat.ID, doc.ID); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := s.AttachFile(ctx, chat.ID, doc.ID); err != nil {
		t.Fatalf("attach twice: %v", err)
	}
	if err := s.AttachFile(ctx, chat.ID, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound attaching unknown document, got %v", err)
	}
	got, _ = s.GetChat(ctx, chat.ID)
	if len(got.FileIDs) != 1 || got.FileIDs[0] != doc.ID {
		t.Fatalf("unexpected file ids: %v", got.FileIDs)
	}
	if err := s.DetachFile(ctx, chat.ID, doc.ID); err != nil {
		t.Fatalf("detach: %v", err)
	}
	got, _ = s.GetChat(ctx, chat.ID)
	if len(got.FileIDs) != 0 {
		t.Fatalf("expected no files, got %v", got.FileIDs)
	}
	if err := s.DeleteChat(ctx, chat.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetChat(ctx, chat.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected deleted chat to be gone, got %v", err)
	}
}

func testMessages(t *testing.T, s store.Store) {
	ctx := context.Background()
	chat := &schema.Chat{UserID: "u1"}
	if err := s.CreateChat(ctx, chat); err != nil {
		t.Fatalf("create chat: %v", err)
	}
	var ids []string
	for i := 0; i < 23; i++ {
		role := schema.RoleUser
		if i%2 == 1 {
			role = schema.RoleAssistant
		}
		msg := &schema.Message{ChatID: chat.ID, Role: role, Text: fmt.Sprintf("message %d", i)}
		if err := s.AppendMessage(ctx, msg); err != nil {
			t.Fatalf("append: %v", err)
		}
		ids = append(ids, msg.ID)
	}
	got, _ := s.GetChat(ctx, chat.ID)
	if len(got.MessageIDs) != 23 {
		t.Fatalf("expected 23 message ids, got %d", len(got.MessageIDs))
	}
	for i, id := range got.MessageIDs {
		if id != ids[i] {
			t.Fatalf("message order not preserved at %d", i)
		}
	}
	msgs, err := s.GetMessagesByIDs(ctx, append([]string{"stale"}, ids...))
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(msgs) != 23 || msgs[0].Text != "message 0" || msgs[22].Text != "message 22" || msgs[1].Role != schema.RoleAssistant {
		t.Fatalf("unexpected messages: %d", len(msgs))
	}
	if err := s.AppendMessage(ctx, &schema.Message{ChatID: "missing", Role: schema.RoleUser, Text: "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testRenameIfDefault(t *testing.T, s store.Store) {
	ctx := context.Background()
	chat := &schema.Chat{UserID: "u1"}
	if err := s.CreateChat(ctx, chat); err != nil {
		t.Fatalf("create chat: %v", err)
	}
	var wg sync.WaitGroup
	var mu sync.Mutex
	renamed := 0
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := s.RenameChatIfDefault(ctx, chat.ID, fmt.Sprintf("Title %d", i))
			if err != nil {
				t.Errorf("rename: %v", err)
				return
			}
			if ok {
				mu.Lock()
				renamed++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if renamed != 1 {
		t.Fatalf("expected exactly one rename, got %d", renamed)
	}
	if ok, _ := s.RenameChatIfDefault(ctx, chat.ID, "Late"); ok {
		t.Fatalf("rename must not apply to a named chat")
	}
	if _, err := s.RenameChatIfDefault(ctx, "missing", "x"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testDocuments(t *testing.T, s store.Store) {
	ctx := context.Background()
	withText := &schema.Document{Name: "q4.pdf", Format: schema.FormatPDF, ExtractedText: "revenue grew 12%", Embedding: []float32{0.1, 0.2}, ContentHash: 0xabc}
	noText := &schema.Document{Name: "photo.png", Format: schema.FormatOther, Embedding: []float32{1}}
	for _, d := range []*schema.Document{withText, noText} {
		if err := s.CreateDocument(ctx, d); err != nil {
			t.Fatalf("create document: %v", err)
		}
	}
	if noText.Embedding != nil {
		t.Fatalf("a document without text must not keep an embedding")
	}
	got, err := s.GetDocument(ctx, withText.ID)
	if err != nil || got.ContentHash != 0xabc || len(got.Embedding) != 2 || got.Embedding[1] != 0.2 {
		t.Fatalf("get document: %+v %v", got, err)
	}
	embedded, err := s.ListEmbeddedDocuments(ctx)
	if err != nil || len(embedded) != 1 || embedded[0].ID != withText.ID {
		t.Fatalf("list embedded: %v %v", embedded, err)
	}
	all, _ := s.ListDocuments(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(all))
	}
	docs, err := s.GetDocumentsByIDs(ctx, []string{noText.ID, "stale", withText.ID})
	if err != nil || len(docs) != 2 || docs[0].ID != noText.ID {
		t.Fatalf("get by ids: %v %v", docs, err)
	}
	if err := s.UpdateDocumentName(ctx, withText.ID, "Q4 Report"); err != nil {
		t.Fatalf("rename document: %v", err)
	}
	if got, _ := s.GetDocument(ctx, withText.ID); got.Name != "Q4 Report" {
		t.Fatalf("rename not applied: %s", got.Name)
	}
	if err := s.DeleteDocument(ctx, withText.ID); err != nil {
		t.Fatalf("delete document: %v", err)
	}
	if err := s.DeleteDocument(ctx, withText.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testMessageEmbeddings(t *testing.T, s store.Store) {
	ctx := context.Background()
	recs := []*schema.MessageEmbedding{
		{MessageID: "m1", UserID: "u1", ChatID: "c1", Text: "hello", Embedding: []float32{1, 0}},
		{MessageID: "m2", UserID: "u1", ChatID: "c2", Text: "world", Embedding: []float32{0, 1}},
		{MessageID: "m3", UserID: "u2", ChatID: "c3", Text: "other", Embedding: []float32{1, 1}},
	}
	for _, rec := range recs {
		if err := s.CreateMessageEmbedding(ctx, rec); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	list, err := s.ListMessageEmbeddings(ctx, "u1")
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %v %v", list, err)
	}
	if err := s.DeleteMessageEmbeddings(ctx, "m1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ = s.ListMessageEmbeddings(ctx, "u1")
	if len(list) != 1 || list[0].MessageID != "m2" || list[0].Embedding[1] != 1 {
		t.Fatalf("unexpected after delete: %+v", list)
	}
}
