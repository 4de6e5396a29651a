package reqllm

import (
	"context"

	"github.com/ferro-labs/reqllm-go/conversation"
	"github.com/ferro-labs/reqllm-go/internal/logging"
	"github.com/ferro-labs/reqllm-go/options"
)

// GenerateText runs StreamText and joins its chunk sequence into a single
// buffered Response (spec.md §4.1 generate_text).
func (c *Client) GenerateText(ctx context.Context, spec any, prompt any, opts options.Options) (*Response, error) {
	sresp, err := c.StreamText(ctx, spec, prompt, opts)
	if err != nil {
		return nil, err
	}
	convCtx, err := conversation.New(prompt, opts.SystemPrompt)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithModel(ctx, sresp.Model.Provider, sresp.Model.ID)
	resp := joinStream(ctx, sresp.Model, convCtx, sresp)
	if resp.Err != nil {
		return resp, resp.Err
	}
	return resp, nil
}

// StreamText forwards to the package-level default client. See
// Client.StreamText.
func StreamText(ctx context.Context, spec any, prompt any, opts options.Options) (*StreamResponse, error) {
	return Default().StreamText(ctx, spec, prompt, opts)
}

// GenerateText forwards to the package-level default client. See
// Client.GenerateText.
func GenerateText(ctx context.Context, spec any, prompt any, opts options.Options) (*Response, error) {
	return Default().GenerateText(ctx, spec, prompt, opts)
}
