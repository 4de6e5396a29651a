package reqllm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ferro-labs/reqllm-go/llmerr"
)

func TestEmbedExtractsASingleVectorForAStringInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.1,0.2,0.3]}],"usage":{"prompt_tokens":5,"total_tokens":5}}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := c.Embed(context.Background(), "openai:text-embedding-3-small", "hello world", EmbedOptions{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	vec, ok := resp.Embedding.([]float64)
	if !ok || len(vec) != 3 {
		t.Fatalf("expected a single 3-element vector, got %#v", resp.Embedding)
	}
	if resp.Usage == nil || resp.Usage.Total != 5 {
		t.Fatalf("expected usage total 5, got %+v", resp.Usage)
	}
}

func TestEmbedExtractsOrderedVectorsForAListInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[1,1]},{"index":0,"embedding":[0,0]}]}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := c.Embed(context.Background(), "openai:text-embedding-3-small", []string{"a", "b"}, EmbedOptions{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	vecs, ok := resp.Embedding.([][]float64)
	if !ok || len(vecs) != 2 {
		t.Fatalf("expected 2 vectors, got %#v", resp.Embedding)
	}
	if vecs[0][0] != 0 || vecs[1][0] != 1 {
		t.Fatalf("expected vectors reordered by index, got %v", vecs)
	}
}

func TestEmbedRejectsEmptyInput(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Embed(context.Background(), "openai:text-embedding-3-small", "", EmbedOptions{APIKey: "test-key"})
	if !llmerr.Is(err, llmerr.InvalidParameter) {
		t.Fatalf("expected an InvalidParameter error for empty input, got %v", err)
	}
}

func TestEmbedRejectsTextModels(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Embed(context.Background(), "openai:gpt-4o-mini", "hello", EmbedOptions{APIKey: "test-key"})
	if !llmerr.Is(err, llmerr.InvalidCapability) {
		t.Fatalf("expected an InvalidCapability error when embedding against a chat model, got %v", err)
	}
}

func TestEmbedSurfacesNon2xxAsAPIRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down"}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Embed(context.Background(), "openai:text-embedding-3-small", "hello", EmbedOptions{APIKey: "test-key", BaseURL: srv.URL})
	if !llmerr.Is(err, llmerr.APIRequest) {
		t.Fatalf("expected an APIRequest error, got %v", err)
	}
}
