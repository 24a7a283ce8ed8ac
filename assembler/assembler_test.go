package assembler

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/viant/projectlens/memory"
	"github.com/viant/projectlens/schema"
	"github.com/viant/projectlens/store/memstore"
)

// topicEmbedder maps keywords onto fixed axes: finance, people, travel.
type topicEmbedder struct {
	err   error
	calls int
}

func (e *topicEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	text = strings.ToLower(text)
	vec := []float32{0.05, 0.05, 0.05}
	if strings.Contains(text, "revenue") {
		vec[0] = 1
	}
	if strings.Contains(text, "jane") || strings.Contains(text, "vp") {
		vec[1] = 1
	}
	if strings.Contains(text, "trip") {
		vec[2] = 1
	}
	return vec, nil
}

type stubMemory struct{ facts []memory.Fact }

func (m *stubMemory) Search(context.Context, string, string) []memory.Fact { return m.facts }

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func seedDocuments(t *testing.T, st *memstore.Store, emb *topicEmbedder) (q4, org *schema.Document) {
	t.Helper()
	ctx := context.Background()
	q4 = &schema.Document{Name: "Q4 Report", MimeType: "application/pdf", ExtractedText: "revenue grew 12% this quarter"}
	org = &schema.Document{Name: "Org Chart", MimeType: "text/plain", ExtractedText: "Jane Doe is VP of Engineering"}
	for _, doc := range []*schema.Document{q4, org} {
		doc.Embedding, _ = emb.Embed(ctx, doc.ExtractedText)
		if err := st.CreateDocument(ctx, doc); err != nil {
			t.Fatalf("create document: %v", err)
		}
	}
	return q4, org
}

func TestBuild_RanksRelevantDocument(t *testing.T) {
	st := memstore.New()
	emb := &topicEmbedder{}
	q4, org := seedDocuments(t, st, emb)
	a := New(st, emb, WithLogger(quietLogger()))
	emb.calls = 0
	got := a.Build(context.Background(), &Request{
		UserID:  "u1",
		ChatID:  "c1",
		Message: schema.Message{ID: "m1", Role: schema.RoleUser, Text: "what was the revenue growth"},
	})
	if emb.calls != 1 {
		t.Fatalf("query must be embedded once, got %d", emb.calls)
	}
	if got.DocumentsFromFallback {
		t.Fatalf("unexpected fallback")
	}
	if len(got.Documents) == 0 || got.Documents[0].ID != q4.ID {
		t.Fatalf("expected Q4 Report first, got %+v", got.Documents)
	}
	for i, ref := range got.Documents {
		if ref.ID == org.ID && i == 0 {
			t.Fatalf("org chart ranked above the Q4 report")
		}
	}
	if !strings.Contains(got.Prompt, "==== DOCUMENT 1: Q4 Report ====") || !strings.Contains(got.Prompt, "Similarity: 100%") {
		t.Fatalf("missing document block:\n%s", got.Prompt)
	}
	if strings.Contains(got.Prompt, "Org Chart") {
		t.Fatalf("org chart should be below threshold:\n%s", got.Prompt)
	}
}

func TestBuild_SectionOrder(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	emb := &topicEmbedder{}
	q4, _ := seedDocuments(t, st, emb)
	past := &schema.MessageEmbedding{MessageID: "old", UserID: "u1", ChatID: "c0", Text: "revenue last year"}
	past.Embedding, _ = emb.Embed(ctx, past.Text)
	current := &schema.MessageEmbedding{MessageID: "m2", UserID: "u1", ChatID: "c1", Text: "revenue now"}
	current.Embedding, _ = emb.Embed(ctx, current.Text)
	foreign := &schema.MessageEmbedding{MessageID: "x", UserID: "u2", Text: "revenue secret"}
	foreign.Embedding, _ = emb.Embed(ctx, foreign.Text)
	for _, rec := range []*schema.MessageEmbedding{past, current, foreign} {
		if err := st.CreateMessageEmbedding(ctx, rec); err != nil {
			t.Fatalf("create embedding: %v", err)
		}
	}
	mem := &stubMemory{facts: []memory.Fact{{Memory: "Prefers bullet points"}}}
	a := New(st, emb, WithMemory(mem), WithLogger(quietLogger()))
	got := a.Build(ctx, &Request{
		UserID:          "u1",
		ChatID:          "c1",
		Message:         schema.Message{ID: "m2", Role: schema.RoleUser, Text: "revenue update please"},
		History:         []schema.Message{{ID: "m0", Role: schema.RoleUser, Text: "hi"}, {ID: "m1", Role: schema.RoleAssistant, Text: "hello"}},
		AttachedFileIDs: []string{q4.ID},
	})
	order := []string{
		"Previous conversation:\nUser: hi\nAssistant: hello",
		"Current user message: revenue update please",
		"ANALYSIS INSTRUCTIONS:",
		"==== DOCUMENT 1: Q4 Report ====",
		"SIMILAR PAST MESSAGES:",
		`"revenue last year" (100% similar)`,
		"RELEVANT MEMORIES:",
		"- Prefers bullet points",
	}
	pos := -1
	for _, part := range order {
		i := strings.Index(got.Prompt, part)
		if i < 0 {
			t.Fatalf("missing %q in:\n%s", part, got.Prompt)
		}
		if i < pos {
			t.Fatalf("%q out of order in:\n%s", part, got.Prompt)
		}
		pos = i
	}
	if len(got.SimilarMessages) != 1 || got.SimilarMessages[0].MessageID != "old" {
		t.Fatalf("expected only the other message of the same user, got %+v", got.SimilarMessages)
	}
	if len(got.Omitted) != 0 {
		t.Fatalf("unexpected omitted sections: %v", got.Omitted)
	}
}

func TestBuild_FallbackToAttached(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	notes := &schema.Document{Name: "notes.txt", ExtractedText: "meeting notes"}
	scan := &schema.Document{Name: "scan.png", MimeType: "image/png"}
	for _, doc := range []*schema.Document{notes, scan} {
		if err := st.CreateDocument(ctx, doc); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	a := New(st, &topicEmbedder{err: errors.New("model down")}, WithLogger(quietLogger()))
	got := a.Build(ctx, &Request{
		UserID:          "u1",
		Message:         schema.Message{Text: "summarize"},
		AttachedFileIDs: []string{notes.ID, scan.ID, "deleted"},
	})
	if !got.DocumentsFromFallback || len(got.Documents) != 1 || got.Documents[0].ID != notes.ID {
		t.Fatalf("expected fallback to attached text document: %+v", got)
	}
	if !strings.Contains(got.Prompt, fallbackHeader) || strings.Contains(got.Prompt, "Similarity:") {
		t.Fatalf("unexpected fallback rendering:\n%s", got.Prompt)
	}
	if !strings.Contains(got.Prompt, "FILES WITHOUT TEXT CONTENT (1 files):\n1. scan.png (image/png) - No extractable text") {
		t.Fatalf("missing files without text:\n%s", got.Prompt)
	}
	if len(got.Omitted) != 2 {
		t.Fatalf("expected messages and memories omitted, got %v", got.Omitted)
	}
}

func TestBuild_NoDocuments(t *testing.T) {
	a := New(memstore.New(), nil, WithLogger(quietLogger()))
	got := a.Build(context.Background(), &Request{Message: schema.Message{Text: "hello"}})
	if got.Prompt != "Current user message: hello" {
		t.Fatalf("unexpected prompt %q", got.Prompt)
	}
	if len(got.Omitted) != 3 {
		t.Fatalf("expected all sections omitted, got %v", got.Omitted)
	}
}

func TestBuild_AttachedScopeAndClip(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	emb := &topicEmbedder{}
	q4, _ := seedDocuments(t, st, emb)
	other := &schema.Document{Name: "Revenue 2023", ExtractedText: "revenue flat"}
	other.Embedding, _ = emb.Embed(ctx, other.ExtractedText)
	if err := st.CreateDocument(ctx, other); err != nil {
		t.Fatalf("create: %v", err)
	}
	a := New(st, emb, WithConfig(Config{Scope: ScopeAttached, MaxDocumentChars: 7}), WithLogger(quietLogger()))
	got := a.Build(ctx, &Request{Message: schema.Message{Text: "revenue"}, AttachedFileIDs: []string{q4.ID}})
	if len(got.Documents) != 1 || got.Documents[0].ID != q4.ID {
		t.Fatalf("attached scope must ignore other documents: %+v", got.Documents)
	}
	if !strings.Contains(got.Prompt, "Content:\nrevenue"+truncatedMark) {
		t.Fatalf("expected clipped content:\n%s", got.Prompt)
	}
	if cfg := a.Config(); cfg.DocumentMinSimilarity() != DefaultDocumentThreshold || cfg.MessageLimit != DefaultLimit {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}
