package mem0

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/viant/projectlens/memory"
)

func TestClient_AddAndSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token secret" {
			t.Fatalf("unexpected auth: %q", got)
		}
		switch r.URL.Path {
		case addPath:
			var req addRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if req.UserID != "u1" || len(req.Messages) != 2 {
				t.Fatalf("unexpected add: %+v", req)
			}
			_, _ = w.Write([]byte(`[{"id":"m1","event":"ADD"}]`))
		case searchPath:
			var req searchRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Query != "deploy" || req.UserID != "u1" {
				t.Fatalf("unexpected search: %+v", req)
			}
			_, _ = w.Write([]byte(`[{"id":"m1","memory":"Prefers Vercel","score":0.8}]`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New("secret", WithBaseURL(srv.URL))
	turns := []memory.Turn{{Role: "user", Content: "deploy"}, {Role: "assistant", Content: "ok"}}
	if err := c.Add(context.Background(), turns, "u1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	facts, err := c.Search(context.Background(), "deploy", "u1")
	if err != nil || len(facts) != 1 || facts[0].Memory != "Prefers Vercel" {
		t.Fatalf("unexpected facts: %v %v", facts, err)
	}
}

func TestDecodeFacts_Envelope(t *testing.T) {
	facts, err := decodeFacts([]byte(`{"results":[{"memory":"a"},{"memory":"b"}]}`))
	if err != nil || len(facts) != 2 {
		t.Fatalf("unexpected: %v %v", facts, err)
	}
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	if _, err := New("k", WithBaseURL(srv.URL)).Search(context.Background(), "q", "u"); err == nil {
		t.Fatalf("expected error")
	}
}
