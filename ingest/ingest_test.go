package ingest

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/viant/projectlens/schema"
	"github.com/viant/projectlens/store"
	"github.com/viant/projectlens/store/memstore"
)

type stubUploader struct {
	err  error
	name string
}

func (u *stubUploader) Upload(_ context.Context, _ []byte, name, _ string) (string, error) {
	u.name = name
	if u.err != nil {
		return "", u.err
	}
	return "mem://localhost/uploads/1700000000000-" + name, nil
}

type stubEmbedder struct {
	calls int
	err   error
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestIngest_TextDocument(t *testing.T) {
	st := memstore.New()
	emb := &stubEmbedder{}
	svc := New(st, &stubUploader{}, WithEmbedder(emb), WithLogger(quietLogger()))
	doc, err := svc.Ingest(context.Background(), &Request{Data: []byte("revenue grew 12% this quarter"), Name: "q4.txt", MimeType: "text/plain", UserID: "u1"})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if doc.ID == "" || doc.Format != schema.FormatText || doc.UploadedBy != "u1" || doc.ContentHash == 0 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if !doc.HasEmbedding() || emb.calls != 1 {
		t.Fatalf("expected one embedding call, got %d", emb.calls)
	}
	stored, err := st.GetDocument(context.Background(), doc.ID)
	if err != nil || stored.ExtractedText != "revenue grew 12% this quarter" {
		t.Fatalf("stored: %+v %v", stored, err)
	}
}

func TestIngest_NoTextSkipsEmbedding(t *testing.T) {
	st := memstore.New()
	emb := &stubEmbedder{}
	svc := New(st, &stubUploader{}, WithEmbedder(emb), WithLogger(quietLogger()))
	doc, err := svc.Ingest(context.Background(), &Request{Data: []byte{0, 1, 2, 3, 4, 5, 6, 7}, Name: "photo.png"})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if doc.HasText() || doc.HasEmbedding() || emb.calls != 0 {
		t.Fatalf("expected no text and no embedding: %+v calls=%d", doc, emb.calls)
	}
}

func TestIngest_EmbeddingFailureIsNotFatal(t *testing.T) {
	st := memstore.New()
	svc := New(st, &stubUploader{}, WithEmbedder(&stubEmbedder{err: errors.New("model down")}), WithLogger(quietLogger()))
	doc, err := svc.Ingest(context.Background(), &Request{Data: []byte("some notes"), Name: "notes.md"})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !doc.HasText() || doc.HasEmbedding() {
		t.Fatalf("expected text without embedding: %+v", doc)
	}
}

func TestIngest_Failures(t *testing.T) {
	st := memstore.New()
	svc := New(st, &stubUploader{err: errors.New("bucket gone")}, WithLogger(quietLogger()))
	if _, err := svc.Ingest(context.Background(), &Request{Data: []byte("x"), Name: "a.txt"}); err == nil {
		t.Fatalf("expected upload failure")
	}
	if _, err := svc.Ingest(context.Background(), &Request{Name: "a.txt"}); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
	docs, _ := st.ListDocuments(context.Background())
	if len(docs) != 0 {
		t.Fatalf("nothing should be stored, got %d", len(docs))
	}
}

func TestIngest_AttachToChat(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	chat := &schema.Chat{UserID: "u1"}
	if err := st.CreateChat(ctx, chat); err != nil {
		t.Fatalf("create chat: %v", err)
	}
	svc := New(st, &stubUploader{}, WithLogger(quietLogger()))
	doc, err := svc.Ingest(ctx, &Request{Data: []byte("a,b\n1,2"), Name: "data.csv", ChatID: chat.ID})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	got, _ := st.GetChat(ctx, chat.ID)
	if len(got.FileIDs) != 1 || got.FileIDs[0] != doc.ID {
		t.Fatalf("expected attached file, got %v", got.FileIDs)
	}
	doc, err = svc.Ingest(ctx, &Request{Data: []byte("x"), Name: "b.txt", ChatID: "missing"})
	if !errors.Is(err, store.ErrNotFound) || doc == nil {
		t.Fatalf("expected created document with not found attach error, got %v %v", doc, err)
	}
}
