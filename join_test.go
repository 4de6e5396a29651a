package reqllm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/conversation"
	"github.com/ferro-labs/reqllm-go/stream"
	"github.com/ferro-labs/reqllm-go/transport"
	"github.com/ferro-labs/reqllm-go/wire"
)

func TestJoinStreamAccumulatesToolCallsInIndexOrder(t *testing.T) {
	body := `data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"get_weather","arguments":""}}]}}]}` + "\n\n" +
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"city\":"}}]}}]}` + "\n\n" +
		`data: {"choices":[{"delta":{"tool_calls":[{"index":1,"id":"call_2","type":"function","function":{"name":"get_time","arguments":""}}]}}]}` + "\n\n" +
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"NYC\"}"}}]}}]}` + "\n\n" +
		"data: [DONE]\n\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client := &transport.Client{}
	req := transport.Request{Method: http.MethodPost, URL: srv.URL}
	sresp := stream.Run(context.Background(), client, req, wire.OpenAIChat{}, catalog.Model{}, nil)

	input := conversation.Context{Messages: []conversation.Message{conversation.UserMessage("what's the weather and time?")}}
	resp := joinStream(context.Background(), catalog.Model{Provider: "openai", ID: "gpt-4o-mini"}, input, sresp)

	if resp.Err != nil {
		t.Fatalf("expected no error, got %v", resp.Err)
	}
	if resp.FinishReason != FinishToolCalls {
		t.Fatalf("expected FinishToolCalls, got %v", resp.FinishReason)
	}
	if resp.Message == nil || len(resp.Message.ToolCalls) != 2 {
		t.Fatalf("expected 2 accumulated tool calls, got %+v", resp.Message)
	}
	first, second := resp.Message.ToolCalls[0], resp.Message.ToolCalls[1]
	if first.ID != "call_1" || first.Name != "get_weather" || first.Arguments != `{"city":"NYC"}` {
		t.Fatalf("unexpected first tool call: %+v", first)
	}
	if second.ID != "call_2" || second.Name != "get_time" || second.Arguments != "" {
		t.Fatalf("unexpected second tool call: %+v", second)
	}
}

func TestJoinStreamAccumulatesTextAndUsage(t *testing.T) {
	body := `data: {"choices":[{"delta":{"content":"hel"}}]}` + "\n\n" +
		`data: {"choices":[{"delta":{"content":"lo"}}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}` + "\n\n" +
		"data: [DONE]\n\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client := &transport.Client{}
	req := transport.Request{Method: http.MethodPost, URL: srv.URL}
	sresp := stream.Run(context.Background(), client, req, wire.OpenAIChat{}, catalog.Model{}, nil)

	input := conversation.Context{Messages: []conversation.Message{conversation.UserMessage("hi")}}
	resp := joinStream(context.Background(), catalog.Model{}, input, sresp)

	if resp.Text != "hello" {
		t.Fatalf("expected Text %q, got %q", "hello", resp.Text)
	}
	if resp.Usage == nil || resp.Usage.Total != 4 {
		t.Fatalf("expected usage total 4, got %+v", resp.Usage)
	}
	if resp.FinishReason != FinishStop {
		t.Fatalf("expected FinishStop, got %v", resp.FinishReason)
	}
}

func TestJoinStreamSurfacesAnErrorChunk(t *testing.T) {
	body := `data: {"error":{"message":"rate limited","type":"rate_limit_error","code":"429"}}` + "\n\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
		w.(http.Flusher).Flush()
	}))
	t.Cleanup(srv.Close)

	client := &transport.Client{}
	req := transport.Request{Method: http.MethodPost, URL: srv.URL}
	sresp := stream.Run(context.Background(), client, req, wire.OpenAIChat{}, catalog.Model{}, nil)

	input := conversation.Context{Messages: []conversation.Message{conversation.UserMessage("hi")}}
	resp := joinStream(context.Background(), catalog.Model{Provider: "openai"}, input, sresp)

	if resp.Err == nil {
		t.Fatal("expected an error lifted from the error chunk")
	}
	if resp.FinishReason != FinishError {
		t.Fatalf("expected FinishError, got %v", resp.FinishReason)
	}
}
