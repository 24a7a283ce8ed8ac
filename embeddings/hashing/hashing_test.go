package hashing

import (
	"context"
	"testing"

	"github.com/viant/projectlens/vectordb"
)

func TestEmbedder_Deterministic(t *testing.T) {
	e := New(64)
	a, _ := e.EmbedQuery(context.Background(), "Revenue grew 12% this quarter")
	b, _ := e.EmbedQuery(context.Background(), "revenue GREW 12% this quarter")
	if len(a) != 64 {
		t.Fatalf("unexpected dims: %d", len(a))
	}
	if s := vectordb.Cosine(a, b); s < 0.999 {
		t.Fatalf("case must not matter, similarity %v", s)
	}
}

func TestEmbedder_SharedWordsScoreHigher(t *testing.T) {
	e := New(0)
	vecs, err := e.EmbedDocuments(context.Background(), []string{
		"what was the revenue growth this quarter",
		"quarterly revenue growth was strong",
		"Jane Doe is VP of Engineering",
	})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	related := vectordb.Cosine(vecs[0], vecs[1])
	unrelated := vectordb.Cosine(vecs[0], vecs[2])
	if related <= unrelated {
		t.Fatalf("expected related %v > unrelated %v", related, unrelated)
	}
}

func TestEmbedder_EmptyText(t *testing.T) {
	v, _ := New(8).EmbedQuery(context.Background(), "the of")
	for _, x := range v {
		if x != 0 {
			t.Fatalf("expected zero vector, got %v", v)
		}
	}
}
