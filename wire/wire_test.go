package wire

import (
	"testing"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/chunk"
	"github.com/ferro-labs/reqllm-go/conversation"
	"github.com/ferro-labs/reqllm-go/options"
)

func TestOpenAIChatEncodeBodySingleTextContent(t *testing.T) {
	ctx, err := conversation.New("Hello!", "")
	if err != nil {
		t.Fatalf("conversation.New: %v", err)
	}
	model := catalog.Model{Provider: "openai", ID: "gpt-4o-mini"}
	body, err := OpenAIChat{}.EncodeBody(model, ctx, options.Options{})
	if err != nil {
		t.Fatalf("EncodeBody: %v", err)
	}
	msgs, ok := body["messages"].([]map[string]any)
	if !ok || len(msgs) != 1 {
		t.Fatalf("unexpected messages: %+v", body["messages"])
	}
	if msgs[0]["content"] != "Hello!" {
		t.Fatalf("expected bare string content, got %#v", msgs[0]["content"])
	}
	if body["stream"] != true {
		t.Fatal("expected stream=true")
	}
}

func TestOpenAIChatDecodeDone(t *testing.T) {
	chunks, err := OpenAIChat{}.Decode(Event{Data: []byte(doneSentinel)}, catalog.Model{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Kind != chunk.Meta || !chunks[0].Meta.Terminal {
		t.Fatalf("expected a single terminal meta chunk, got %+v", chunks)
	}
}

func TestOpenAIChatDecodeTextDelta(t *testing.T) {
	data := []byte(`{"choices":[{"delta":{"content":"hi"}}]}`)
	chunks, err := OpenAIChat{}.Decode(Event{Data: data}, catalog.Model{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Kind != chunk.Text || chunks[0].Text != "hi" {
		t.Fatalf("unexpected chunks: %+v", chunks)
	}
}

func TestAnthropicEncodeBodySplitsSystem(t *testing.T) {
	ctx, err := conversation.New("Hi", "be nice")
	if err != nil {
		t.Fatalf("conversation.New: %v", err)
	}
	model := catalog.Model{Provider: "anthropic", ID: "claude-sonnet-4-20250514"}
	body, err := AnthropicMessages{}.EncodeBody(model, ctx, options.Options{})
	if err != nil {
		t.Fatalf("EncodeBody: %v", err)
	}
	if body["system"] != "be nice" {
		t.Fatalf("expected system=%q, got %#v", "be nice", body["system"])
	}
	if body["max_tokens"] != anthropicDefaultMaxTokens {
		t.Fatalf("expected default max_tokens=%d, got %v", anthropicDefaultMaxTokens, body["max_tokens"])
	}
}

func TestAnthropicDecodeTextDelta(t *testing.T) {
	data := []byte(`{"type":"content_block_delta","delta":{"type":"text_delta","text":"hi"}}`)
	chunks, err := AnthropicMessages{}.Decode(Event{Data: data}, catalog.Model{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Kind != chunk.Text || chunks[0].Text != "hi" {
		t.Fatalf("unexpected chunks: %+v", chunks)
	}
}

func TestAnthropicDecodeMessageStop(t *testing.T) {
	chunks, err := AnthropicMessages{}.Decode(Event{Data: []byte(`{"type":"message_stop"}`)}, catalog.Model{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(chunks) != 1 || !chunks[0].Meta.Terminal {
		t.Fatalf("expected terminal chunk, got %+v", chunks)
	}
}

func TestOpenAIEmbeddingsExtractSingle(t *testing.T) {
	body := map[string]any{
		"data": []any{
			map[string]any{"index": 0.0, "embedding": []any{1.0, 2.0, 3.0}},
		},
	}
	got, err := OpenAIEmbeddings{}.ExtractEmbeddings(body, "hello")
	if err != nil {
		t.Fatalf("ExtractEmbeddings: %v", err)
	}
	vec, ok := got.([]float64)
	if !ok || len(vec) != 3 {
		t.Fatalf("expected a single vector, got %#v", got)
	}
}

func TestOpenAIEmbeddingsExtractListOrdersByIndex(t *testing.T) {
	body := map[string]any{
		"data": []any{
			map[string]any{"index": 1.0, "embedding": []any{2.0}},
			map[string]any{"index": 0.0, "embedding": []any{1.0}},
		},
	}
	got, err := OpenAIEmbeddings{}.ExtractEmbeddings(body, []string{"a", "b"})
	if err != nil {
		t.Fatalf("ExtractEmbeddings: %v", err)
	}
	vecs, ok := got.([][]float64)
	if !ok || len(vecs) != 2 || vecs[0][0] != 1.0 || vecs[1][0] != 2.0 {
		t.Fatalf("expected index-ordered vectors, got %#v", got)
	}
}

func TestOpenAIEmbeddingsExtractMalformed(t *testing.T) {
	if _, err := OpenAIEmbeddings{}.ExtractEmbeddings(map[string]any{}, "x"); err == nil {
		t.Fatal("expected an error for a missing data field")
	}
}
