package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerator_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Stream || len(req.Messages) != 1 {
			t.Fatalf("unexpected request: %+v", req)
		}
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":" local answer "}}`))
	}))
	defer srv.Close()

	got, err := New("", WithBaseURL(srv.URL)).Complete(context.Background(), "", "q")
	if err != nil || got != "local answer" {
		t.Fatalf("unexpected: %q %v", got, err)
	}
}
