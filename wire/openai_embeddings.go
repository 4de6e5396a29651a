package wire

import (
	"sort"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/chunk"
	"github.com/ferro-labs/reqllm-go/conversation"
	"github.com/ferro-labs/reqllm-go/llmerr"
	"github.com/ferro-labs/reqllm-go/options"
)

// OpenAIEmbeddings implements the OpenAI-compatible embeddings wire
// protocol (/v1/embeddings), spec.md §4.9. It is non-streaming; Decode is
// never called for it, but it must satisfy Protocol to live in the
// registry alongside the streaming protocols.
type OpenAIEmbeddings struct{}

// Tag implements Protocol.
func (OpenAIEmbeddings) Tag() string { return "openai_embeddings" }

// Endpoint implements Protocol.
func (OpenAIEmbeddings) Endpoint() string { return "/v1/embeddings" }

// Headers implements Protocol.
func (OpenAIEmbeddings) Headers(options.Options) map[string]string { return nil }

// EncodeBody implements Protocol, but the embeddings path never calls it —
// Context has no slot for raw embedding input strings. reqllm.Client.Embed
// calls EmbedBody directly instead.
func (OpenAIEmbeddings) EncodeBody(model catalog.Model, _ conversation.Context, _ options.Options) (map[string]any, error) {
	return map[string]any{"model": model.ID}, nil
}

// EmbedBody builds the full embeddings request body, including the input
// the generic EncodeBody signature has no slot for.
func (OpenAIEmbeddings) EmbedBody(model catalog.Model, input any, dimensions *int, encodingFormat string) map[string]any {
	body := map[string]any{"model": model.ID, "input": input}
	if dimensions != nil {
		body["dimensions"] = *dimensions
	}
	if encodingFormat != "" {
		body["encoding_format"] = encodingFormat
	}
	return body
}

// Decode implements Protocol; embeddings never stream, so this always
// returns an empty slice.
func (OpenAIEmbeddings) Decode(Event, catalog.Model) ([]chunk.Chunk, error) {
	return nil, nil
}

// ExtractEmbeddings implements EmbeddingProtocol.
func (OpenAIEmbeddings) ExtractEmbeddings(body map[string]any, input any) (any, error) {
	rawData, ok := body["data"].([]any)
	if !ok {
		return nil, llmerr.New(llmerr.APIResponse, "Invalid embedding response format")
	}

	type entry struct {
		index     int
		embedding []float64
	}
	entries := make([]entry, 0, len(rawData))
	for _, rd := range rawData {
		m, ok := rd.(map[string]any)
		if !ok {
			return nil, llmerr.New(llmerr.APIResponse, "Invalid embedding response format")
		}
		idx, _ := m["index"].(float64)
		rawVec, ok := m["embedding"].([]any)
		if !ok {
			return nil, llmerr.New(llmerr.APIResponse, "Invalid embedding response format")
		}
		vec := make([]float64, len(rawVec))
		for i, v := range rawVec {
			f, _ := v.(float64)
			vec[i] = f
		}
		entries = append(entries, entry{index: int(idx), embedding: vec})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].index < entries[j].index })

	vectors := make([][]float64, len(entries))
	for i, e := range entries {
		vectors[i] = e.embedding
	}

	if _, isList := input.([]string); isList {
		return vectors, nil
	}
	if len(vectors) == 1 {
		return vectors[0], nil
	}
	return vectors, nil
}
