package reqllm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ferro-labs/reqllm-go/options"
)

func sseServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestStreamTextDrivesThePipelineAgainstAFakeServer(t *testing.T) {
	srv := sseServer(t, "data: {\"choices\":[{\"delta\":{\"content\":\"hel\"}}]}\n\n"+
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n"+
		"data: [DONE]\n\n")

	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	opts := options.Options{APIKey: "test-key", BaseURL: srv.URL, ReceiveTimeout: 2 * time.Second}
	resp, err := c.StreamText(context.Background(), "openai:gpt-4o-mini", "hi", opts)
	if err != nil {
		t.Fatalf("StreamText: %v", err)
	}

	var text string
	for ch := range resp.Chunks() {
		if ch.Kind == "text" {
			text += ch.Text
		}
	}
	if text != "hello" {
		t.Fatalf("expected concatenated text %q, got %q", "hello", text)
	}
	if resp.Err() != nil {
		t.Fatalf("expected no stream error, got %v", resp.Err())
	}
}

func TestGenerateTextJoinsTheStreamIntoAResponse(t *testing.T) {
	srv := sseServer(t, "data: {\"choices\":[{\"delta\":{\"content\":\"hello\"}}]}\n\n"+
		"data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n"+
		"data: [DONE]\n\n")

	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	opts := options.Options{APIKey: "test-key", BaseURL: srv.URL, ReceiveTimeout: 2 * time.Second}
	resp, err := c.GenerateText(context.Background(), "openai:gpt-4o-mini", "hi", opts)
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if resp.Text != "hello" {
		t.Fatalf("expected Text %q, got %q", "hello", resp.Text)
	}
	if resp.FinishReason != FinishStop {
		t.Fatalf("expected FinishStop, got %v", resp.FinishReason)
	}
	if len(resp.Context.Messages) != 2 {
		t.Fatalf("expected the evolved context to carry the user + assistant turns, got %d messages", len(resp.Context.Messages))
	}
}

func TestStreamTextRejectsUnknownModel(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.StreamText(context.Background(), "openai:does-not-exist", "hi", options.Options{}); err == nil {
		t.Fatal("expected an error for an unknown model spec")
	}
}

func TestStreamTextRejectsTextOperationAgainstAnEmbeddingModel(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// text-embedding-3-small is an embedding model; the text/object operation
	// check should reject it before any network call is attempted.
	opts := options.Options{APIKey: "test-key"}
	if _, err := c.StreamText(context.Background(), "openai:text-embedding-3-small", "hi", opts); err == nil {
		t.Fatal("expected an error when running a text operation against an embedding model")
	}
}

func TestStreamTextSurfacesNon2xxAsAPIRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	opts := options.Options{APIKey: "test-key", BaseURL: srv.URL}
	resp, err := c.StreamText(context.Background(), "openai:gpt-4o-mini", "hi", opts)
	if err != nil {
		t.Fatalf("StreamText: %v", err)
	}
	for range resp.Chunks() {
		t.Fatal("expected no chunks on a non-2xx response")
	}
	if resp.Err() == nil || resp.Err().Status != http.StatusUnauthorized {
		t.Fatalf("expected a 401 APIRequest error, got %v", resp.Err())
	}
}
