package reqllm

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/credential"
	"github.com/ferro-labs/reqllm-go/internal/logging"
	"github.com/ferro-labs/reqllm-go/internal/metrics"
	"github.com/ferro-labs/reqllm-go/llmerr"
	"github.com/ferro-labs/reqllm-go/options"
	"github.com/ferro-labs/reqllm-go/transport"
	"github.com/ferro-labs/reqllm-go/validate"
	"github.com/ferro-labs/reqllm-go/wire"
)

// EmbedOptions is the option set for Embed (spec.md §4.7). It is separate
// from options.Options since the embeddings path shares only the
// credential/base-URL concerns of the text pipeline, not token limits,
// sampling, tools, reasoning, or fixtures.
type EmbedOptions struct {
	APIKey  string
	BaseURL string

	Dimensions     *int
	EncodingFormat string

	// Fixture is accepted but not read: Embed always performs a live
	// request and neither records nor replays fixtures.
	Fixture string
}

// EmbedResponse is the buffered result of Embed. Embedding holds a single
// vector (string input) or a list of vectors ([]string input), per
// wire.OpenAIEmbeddings.ExtractEmbeddings.
type EmbedResponse struct {
	Model     catalog.Model
	Embedding any
	Usage     *Usage
}

// Embed computes embeddings for input (a string or []string) against spec,
// per spec.md §4.7: validate input shape and model capability, resolve the
// wire protocol, build the request via EmbedBody directly (the generic
// EncodeBody has no slot for raw embedding input), and extract vectors from
// the decoded JSON body.
func (c *Client) Embed(ctx context.Context, spec any, input any, opts EmbedOptions) (*EmbedResponse, error) {
	model, err := c.resolveSpec(spec)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithModel(ctx, model.Provider, model.ID)
	log := logging.FromContext(ctx)

	if verr := validate.Operation(model, options.OperationEmbed); verr != nil {
		metrics.RequestsTotal.WithLabelValues(model.Provider, model.ID, "error").Inc()
		return nil, verr
	}
	if verr := validate.EmbeddingInput(input); verr != nil {
		return nil, verr
	}

	protocol, providerCfg, err := c.resolveWire(model)
	if err != nil {
		return nil, err
	}
	embedProtocol, ok := protocol.(wire.EmbeddingProtocol)
	if !ok {
		return nil, llmerr.Newf(llmerr.InvalidCapability, "wire protocol %q does not support embeddings", protocol.Tag())
	}

	apiKey, err := credential.Resolve(model.Provider, providerCfg.EnvKey, opts.APIKey, c.credentials)
	if err != nil {
		return nil, err
	}

	bodyMap := embedProtocol.EmbedBody(model, input, opts.Dimensions, opts.EncodingFormat)
	body, err := json.Marshal(bodyMap)
	if err != nil {
		return nil, llmerr.Wrap(llmerr.InvalidParameter, err, "failed to marshal embeddings request body")
	}

	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range providerCfg.Headers(apiKey) {
		headers[k] = v
	}

	baseURL := providerCfg.BaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}

	req := transport.Request{
		Method:  http.MethodPost,
		URL:     baseURL + protocol.Endpoint(),
		Headers: headers,
		Body:    body,
	}

	start := time.Now()
	httpResp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, llmerr.Wrap(llmerr.APIRequest, err, "embeddings request failed")
	}
	metrics.RequestDuration.WithLabelValues(model.Provider, model.ID).Observe(time.Since(start).Seconds())

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		metrics.RequestsTotal.WithLabelValues(model.Provider, model.ID, "error").Inc()
		return nil, llmerr.APIRequestError(httpResp.StatusCode, string(httpResp.Body))
	}

	var decoded map[string]any
	if jerr := json.Unmarshal(httpResp.Body, &decoded); jerr != nil {
		return nil, llmerr.Wrap(llmerr.APIJsonParse, jerr, "failed to decode embeddings response")
	}

	vectors, err := embedProtocol.ExtractEmbeddings(decoded, input)
	if err != nil {
		return nil, llmerr.Wrap(llmerr.APIResponse, err, "failed to extract embeddings from response")
	}

	var usage *Usage
	if u, ok := decoded["usage"].(map[string]any); ok {
		usage = &Usage{
			Input: intFromAny(u["prompt_tokens"]),
			Total: intFromAny(u["total_tokens"]),
		}
		metrics.TokensInput.WithLabelValues(model.Provider, model.ID).Add(float64(usage.Input))
	}

	metrics.RequestsTotal.WithLabelValues(model.Provider, model.ID, "success").Inc()
	log.Info("embed request completed", "status", httpResp.StatusCode)

	return &EmbedResponse{Model: model, Embedding: vectors, Usage: usage}, nil
}

func intFromAny(v any) int {
	f, _ := v.(float64)
	return int(f)
}

// Embed forwards to the package-level default client.
func Embed(ctx context.Context, spec any, input any, opts EmbedOptions) (*EmbedResponse, error) {
	return Default().Embed(ctx, spec, input, opts)
}
