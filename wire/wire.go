// Package wire implements the per-API-family request encoding and SSE
// event decoding of spec.md §4.9. Each protocol is a small, stateless
// value satisfying Protocol; a Registry looks protocols up by the tag
// carried in catalog.Model.Extra.WireProtocol() or a provider's default,
// grounded on providers.Registry's map-keyed-by-name pattern (trimmed here
// to protocols instead of live provider clients).
package wire

import (
	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/chunk"
	"github.com/ferro-labs/reqllm-go/conversation"
	"github.com/ferro-labs/reqllm-go/options"
)

// Event is one decoded SSE event handed to Protocol.Decode: the raw bytes
// of its "data:" payload (the literal string "[DONE]", or a JSON document).
// No protocol in this package reads the SSE "event:" line: Anthropic
// Messages and OpenAI Responses dispatch on the payload's own "type" field,
// and OpenAI Chat on which of its "error", "choices" and "usage" fields are
// present.
type Event struct {
	Data []byte
}

// Protocol is the (endpoint, body-encoding, event-decoding) triple specific
// to one provider API family.
type Protocol interface {
	// Tag is this protocol's registry key, e.g. "openai_chat".
	Tag() string
	// Endpoint is the path appended to the provider's base URL.
	Endpoint() string
	// Headers returns any protocol-specific headers beyond authentication
	// (e.g. Anthropic's anthropic-version/anthropic-beta).
	Headers(opts options.Options) map[string]string
	// EncodeBody builds the JSON request body.
	EncodeBody(model catalog.Model, ctx conversation.Context, opts options.Options) (map[string]any, error)
	// Decode turns one SSE event into zero or more output chunks.
	Decode(event Event, model catalog.Model) ([]chunk.Chunk, error)
}

// EmbeddingProtocol is implemented by protocols that also serve the
// non-streaming embeddings path (spec.md §4.7).
type EmbeddingProtocol interface {
	Protocol
	// EmbedBody builds the full embeddings request body. It exists
	// separately from EncodeBody because conversation.Context has no slot
	// for raw embedding input strings.
	EmbedBody(model catalog.Model, input any, dimensions *int, encodingFormat string) map[string]any
	// ExtractEmbeddings projects a decoded response body's data[].embedding
	// into the caller's shape: a single vector for a single string input, a
	// list of vectors (ordered by response index) for a list input.
	ExtractEmbeddings(body map[string]any, input any) (any, error)
}

// Registry looks protocols up by tag.
type Registry struct {
	protocols map[string]Protocol
}

// NewRegistry builds a Registry from the given protocols, keyed by Tag().
func NewRegistry(protocols ...Protocol) *Registry {
	r := &Registry{protocols: make(map[string]Protocol, len(protocols))}
	for _, p := range protocols {
		r.protocols[p.Tag()] = p
	}
	return r
}

// Get looks up a protocol by tag.
func (r *Registry) Get(tag string) (Protocol, bool) {
	p, ok := r.protocols[tag]
	return p, ok
}

// Default returns the registry of protocols this module implements:
// openai_chat, anthropic_messages, openai_responses, openai_embeddings.
func Default() *Registry {
	return NewRegistry(
		OpenAIChat{},
		AnthropicMessages{},
		OpenAIResponses{},
		OpenAIEmbeddings{},
	)
}

// doneSentinel is the literal SSE payload OpenAI-family APIs send to
// terminate a stream mid-body. spec.md's decode tables describe this as
// "[DONE] → [nil]" — a single terminator sentinel chunk. Rather than thread
// a nil element through a []chunk.Chunk (Go has no natural "nil chunk"
// short of a pointer slice), every protocol in this package represents that
// terminator the same way spec.md already represents mid-stream termination
// signals elsewhere (OpenAI Responses' response.completed): a single
// {meta, {terminal:true}} chunk.
const doneSentinel = "[DONE]"

func terminalChunk() chunk.Chunk {
	return chunk.NewMeta(chunk.MetaData{Terminal: true})
}
