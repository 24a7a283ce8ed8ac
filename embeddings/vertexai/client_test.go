package vertexai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

func TestEmbedder_EmbedDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("unexpected auth: %q", got)
		}
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(req.Instances) != 1 || req.Instances[0].TaskType != "RETRIEVAL_QUERY" {
			t.Fatalf("unexpected request: %+v", req)
		}
		_, _ = w.Write([]byte(`{"predictions":[{"embeddings":{"values":[0.5,0.5]}}]}`))
	}))
	defer srv.Close()

	e := New("proj", "",
		WithEndpoint(srv.URL),
		WithTaskType("RETRIEVAL_QUERY"),
		WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok", TokenType: "Bearer"})),
	)
	vec, err := e.EmbedQuery(context.Background(), "hello")
	if err != nil || len(vec) != 2 {
		t.Fatalf("unexpected result: %v %v", vec, err)
	}
}

func TestEmbedder_PredictURL(t *testing.T) {
	e := New("proj", "", WithLocation("europe-west1"))
	want := "https://europe-west1-aiplatform.googleapis.com/v1/projects/proj/locations/europe-west1/publishers/google/models/text-embedding-004:predict"
	if got := e.predictURL(); got != want {
		t.Fatalf("got %s", got)
	}
}
