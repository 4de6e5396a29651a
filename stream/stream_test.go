package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/chunk"
	"github.com/ferro-labs/reqllm-go/fixture"
	"github.com/ferro-labs/reqllm-go/llmerr"
	"github.com/ferro-labs/reqllm-go/transport"
	"github.com/ferro-labs/reqllm-go/wire"
)

func sseServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}))
}

func TestRunDecodesTextAndHalts(t *testing.T) {
	srv := sseServer(t, "data: {\"choices\":[{\"delta\":{\"content\":\"hel\"}}]}\n\n"+
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n"+
		"data: [DONE]\n\n")
	defer srv.Close()

	client := &transport.Client{}
	req := transport.Request{Method: http.MethodPost, URL: srv.URL, ReceiveTimeout: 5 * time.Second}
	resp := Run(context.Background(), client, req, wire.OpenAIChat{}, catalog.Model{}, nil)

	var text string
	var terminal bool
	for c := range resp.Chunks() {
		if c.Kind == chunk.Text {
			text += c.Text
		}
		if c.Kind == chunk.Meta && c.Meta.Terminal {
			terminal = true
		}
	}
	if text != "hello" {
		t.Fatalf("expected concatenated text %q, got %q", "hello", text)
	}
	if !terminal {
		t.Fatal("expected a terminal meta chunk")
	}
	if resp.Err() != nil {
		t.Fatalf("expected no error, got %v", resp.Err())
	}
}

func TestRunSurfacesNon2xxAsAPIRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	client := &transport.Client{}
	req := transport.Request{Method: http.MethodPost, URL: srv.URL}
	resp := Run(context.Background(), client, req, wire.OpenAIChat{}, catalog.Model{}, nil)

	for range resp.Chunks() {
		t.Fatal("expected no chunks on a non-2xx response")
	}
	if resp.Err() == nil || resp.Err().Status != http.StatusUnauthorized {
		t.Fatalf("expected a 401 APIRequest error, got %v", resp.Err())
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\n"))
		w.(http.Flusher).Flush()
		<-block
	}))
	defer func() {
		close(block)
		srv.Close()
	}()

	client := &transport.Client{}
	req := transport.Request{Method: http.MethodPost, URL: srv.URL}
	resp := Run(context.Background(), client, req, wire.OpenAIChat{}, catalog.Model{}, nil)

	<-resp.Chunks()
	resp.Cancel()

	for c := range resp.Chunks() {
		// Draining until the channel closes must not hang or deliver more.
		t.Fatalf("unexpected chunk after Cancel: %+v", c)
	}
}

func TestRunFlushesRecorderOnCompletion(t *testing.T) {
	srv := sseServer(t, "data: [DONE]\n\n")
	defer srv.Close()

	dir := t.TempDir()
	rec := fixture.NewRecorder("openai", "gpt-4o-mini", "hi", dir+"/f.json", http.MethodPost, srv.URL, nil, []byte(`{}`))
	client := &transport.Client{}
	req := transport.Request{Method: http.MethodPost, URL: srv.URL}
	resp := Run(context.Background(), client, req, wire.OpenAIChat{}, catalog.Model{}, rec)

	for range resp.Chunks() {
	}

	if _, err := fixture.Load(dir + "/f.json"); err != nil {
		t.Fatalf("expected recorder to flush a fixture file: %v", err)
	}
}

func TestRunRecordsResponseStatus(t *testing.T) {
	srv := sseServer(t, "data: [DONE]\n\n")
	defer srv.Close()

	dir := t.TempDir()
	rec := fixture.NewRecorder("openai", "gpt-4o-mini", "hi", dir+"/f.json", http.MethodPost, srv.URL, nil, []byte(`{}`))
	client := &transport.Client{}
	req := transport.Request{Method: http.MethodPost, URL: srv.URL}
	resp := Run(context.Background(), client, req, wire.OpenAIChat{}, catalog.Model{}, rec)

	for range resp.Chunks() {
	}

	loaded, err := fixture.Load(dir + "/f.json")
	if err != nil {
		t.Fatalf("expected recorder to flush a fixture file: %v", err)
	}
	if loaded.Response.Status != http.StatusOK {
		t.Fatalf("expected recorded status 200, got %d", loaded.Response.Status)
	}
}

func TestRunEmitsAPIStreamErrorOnStalledConnection(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\n"))
		w.(http.Flusher).Flush()
		<-block
	}))
	defer func() {
		close(block)
		srv.Close()
	}()

	client := &transport.Client{}
	req := transport.Request{Method: http.MethodPost, URL: srv.URL, ReceiveTimeout: 50 * time.Millisecond}
	resp := Run(context.Background(), client, req, wire.OpenAIChat{}, catalog.Model{}, nil)

	deadline := time.After(5 * time.Second)
drain:
	for {
		select {
		case _, ok := <-resp.Chunks():
			if !ok {
				break drain
			}
		case <-deadline:
			t.Fatal("stream did not halt within 5s of a stalled connection with a 50ms receive timeout")
		}
	}
	if resp.Err() == nil || resp.Err().Kind != llmerr.APIStream {
		t.Fatalf("expected an APIStream timeout error, got %v", resp.Err())
	}
}
