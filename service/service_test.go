package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/viant/projectlens/auth"
	"github.com/viant/projectlens/conversation"
	"github.com/viant/projectlens/generation"
	"github.com/viant/projectlens/ingest"
)

func newTestService(t *testing.T, driver string) *Service {
	t.Helper()
	dir := t.TempDir()
	cfg := &Config{
		Store:    StoreConfig{Driver: driver, DSN: "file:" + filepath.Join(dir, "db", "lens.db")},
		Blob:     BlobConfig{URL: "file://" + filepath.ToSlash(dir) + "/blob"},
		Embedder: EmbedderConfig{Provider: ProviderHashing},
		Memory:   MemoryConfig{Provider: ProviderInMemory},
	}
	model := generation.Func(func(_ context.Context, system, prompt string) (string, error) {
		if strings.Contains(system, "titles") {
			return "Revenue Review", nil
		}
		return "Revenue grew 12% in Q4.", nil
	})
	svc, err := New(context.Background(), cfg, WithGenerator(model))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestService_EndToEnd(t *testing.T) {
	for _, driver := range []string{DriverMemory, "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			svc := newTestService(t, driver)
			ctx := auth.WithUserID(context.Background(), "u1")
			chat, err := svc.Conversation().CreateChat(ctx)
			if err != nil {
				t.Fatalf("create chat: %v", err)
			}
			q4, err := svc.Ingest().Ingest(ctx, &ingest.Request{Data: []byte("revenue grew 12% this quarter"), Name: "Q4 Report.txt", MimeType: "text/plain", UserID: "u1", ChatID: chat.ID})
			if err != nil {
				t.Fatalf("ingest: %v", err)
			}
			if _, err := svc.Ingest().Ingest(ctx, &ingest.Request{Data: []byte("Jane Doe is VP of Engineering"), Name: "Org Chart.txt", UserID: "u1"}); err != nil {
				t.Fatalf("ingest: %v", err)
			}
			if !strings.Contains(q4.Path, "/uploads/") || !strings.HasSuffix(q4.Path, "-Q4_Report.txt") {
				t.Fatalf("unexpected stored path %s", q4.Path)
			}
			hits, err := svc.SearchDocuments(ctx, "revenue quarter", 0)
			if err != nil {
				t.Fatalf("search documents: %v", err)
			}
			if len(hits) == 0 || hits[0].ID != q4.ID {
				t.Fatalf("expected Q4 report first: %+v", hits)
			}

			res := svc.Conversation().Send(ctx, &conversation.SendRequest{ChatID: chat.ID, Text: "what was the revenue this quarter"})
			if !res.Success {
				t.Fatalf("send failed: %v", res.Error)
			}
			if res.ChatName != "Revenue Review" || !strings.Contains(res.Context.Prompt, "==== DOCUMENT 1: Q4 Report.txt ====") {
				t.Fatalf("unexpected result: name=%q prompt:\n%s", res.ChatName, res.Context.Prompt)
			}
			messages, err := svc.SearchMessages(ctx, "revenue quarter", 5)
			if err != nil {
				t.Fatalf("search messages: %v", err)
			}
			if len(messages) == 0 {
				t.Fatalf("expected embedded messages to be searchable")
			}
			if _, err := svc.SearchMessages(context.Background(), "revenue", 5); err == nil {
				t.Fatalf("expected unauthenticated search to fail")
			}
		})
	}
}
