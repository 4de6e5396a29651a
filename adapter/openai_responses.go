package adapter

import (
	"time"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/options"
)

const (
	openAIResponsesDefaultMaxCompletionTokens = 16000
	openAIResponsesTimeout                    = 300 * time.Second
)

// OpenAIResponses matches models wired to the OpenAI Responses/Reasoning
// API and rewrites token-limit and sampling options to that API's shape.
type OpenAIResponses struct{}

// Name implements Adapter.
func (OpenAIResponses) Name() string { return "openai_responses" }

// Matches implements Adapter.
func (OpenAIResponses) Matches(model catalog.Model) bool {
	return model.Extra.API() == "responses" || model.Extra.WireProtocol() == "openai_responses"
}

// TransformOpts implements Adapter.
func (OpenAIResponses) TransformOpts(_ catalog.Model, opts options.Options) options.Options {
	if opts.MaxTokens != nil {
		opts.MaxCompletionTokens = opts.MaxTokens
		opts.MaxTokens = nil
	}
	if opts.MaxOutputTokens != nil {
		opts.MaxCompletionTokens = opts.MaxOutputTokens
		opts.MaxOutputTokens = nil
	}
	if opts.MaxCompletionTokens == nil {
		v := openAIResponsesDefaultMaxCompletionTokens
		opts.MaxCompletionTokens = &v
	}
	if opts.ReceiveTimeout == 0 {
		opts.ReceiveTimeout = openAIResponsesTimeout
	}
	opts.Temperature = nil
	return opts
}
