// Package validate runs the pre-flight checks of spec.md §4.4: operation
// compatibility, modality support, declared capabilities, and embedding
// input shape. Each function returns a *llmerr.Error of the matching kind,
// or nil.
package validate

import (
	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/conversation"
	"github.com/ferro-labs/reqllm-go/llmerr"
	"github.com/ferro-labs/reqllm-go/options"
)

// Operation rejects text/object operations against embedding models, and
// the embed operation against non-embedding models.
func Operation(model catalog.Model, op options.Operation) *llmerr.Error {
	kind := model.OperationKind()
	switch {
	case op == options.OperationEmbed && kind != "embedding":
		err := llmerr.Newf(llmerr.InvalidCapability, "model %s:%s does not support embeddings", model.Provider, model.ID).
			WithContext("missing", []string{"embeddings"})
		err.Missing = []string{"embeddings"}
		return err
	case op != options.OperationEmbed && kind == "embedding":
		return llmerr.Newf(llmerr.InvalidCapability, "model %s:%s is an embedding model and cannot generate text/objects", model.Provider, model.ID)
	default:
		return nil
	}
}

// Modality rejects a context carrying image content when the model does
// not declare image input support.
func Modality(model catalog.Model, ctx conversation.Context) *llmerr.Error {
	if model.SupportsImageInput() {
		return nil
	}
	for _, msg := range ctx.Messages {
		for _, part := range msg.Content {
			if part.Kind == conversation.PartImage || part.Kind == conversation.PartImageURL {
				return &llmerr.Error{
					Kind:    llmerr.InvalidCapability,
					Message: "model does not accept image input",
					Missing: []string{"vision"},
				}
			}
		}
	}
	return nil
}

// Capabilities rejects tools/streaming options the model does not declare
// support for.
func Capabilities(model catalog.Model, opts options.Options) *llmerr.Error {
	if len(opts.Tools) > 0 && !model.Capabilities.Tools.Enabled {
		return &llmerr.Error{
			Kind:    llmerr.InvalidCapability,
			Message: "model does not support tool calling",
			Missing: []string{"tools"},
		}
	}
	if opts.Stream && !model.Capabilities.Streaming.Text {
		return &llmerr.Error{
			Kind:    llmerr.InvalidCapability,
			Message: "model does not support text streaming",
			Missing: []string{"streaming.text"},
		}
	}
	return nil
}

// EmbeddingInput rejects an empty string, empty list, a list containing any
// empty string, or a non-string/[]string input.
func EmbeddingInput(input any) *llmerr.Error {
	switch v := input.(type) {
	case string:
		if v == "" {
			return llmerr.New(llmerr.InvalidParameter, "embedding input must not be empty")
		}
		return nil
	case []string:
		if len(v) == 0 {
			return llmerr.New(llmerr.InvalidParameter, "embedding input list must not be empty")
		}
		for _, s := range v {
			if s == "" {
				return llmerr.New(llmerr.InvalidParameter, "embedding input list must not contain empty strings")
			}
		}
		return nil
	default:
		return llmerr.Newf(llmerr.InvalidParameter, "embedding input must be a string or []string, got %T", input)
	}
}
