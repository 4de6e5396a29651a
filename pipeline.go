package reqllm

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/constraints"
	"github.com/ferro-labs/reqllm-go/conversation"
	"github.com/ferro-labs/reqllm-go/credential"
	"github.com/ferro-labs/reqllm-go/fixture"
	"github.com/ferro-labs/reqllm-go/internal/logging"
	"github.com/ferro-labs/reqllm-go/internal/metrics"
	"github.com/ferro-labs/reqllm-go/llmerr"
	"github.com/ferro-labs/reqllm-go/options"
	"github.com/ferro-labs/reqllm-go/provider"
	"github.com/ferro-labs/reqllm-go/stream"
	"github.com/ferro-labs/reqllm-go/transport"
	"github.com/ferro-labs/reqllm-go/validate"
	"github.com/ferro-labs/reqllm-go/wire"
)

const defaultReceiveTimeout = 30 * time.Second

// StreamText runs the full pipeline (spec §4.1 steps 1-8) and returns a
// handle to the lazy, cancellable chunk sequence. prompt is anything
// conversation.New accepts: a string, a conversation.Message, a
// []conversation.Message, a conversation.Context, or a loose
// map[string]any.
func (c *Client) StreamText(ctx context.Context, spec any, prompt any, opts options.Options) (*StreamResponse, error) {
	return c.runPipeline(ctx, spec, prompt, opts)
}

func (c *Client) runPipeline(ctx context.Context, spec any, prompt any, opts options.Options) (*StreamResponse, error) {
	start := time.Now()

	// 1. Resolve.
	model, err := c.resolveSpec(spec)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithModel(ctx, model.Provider, model.ID)
	log := logging.FromContext(ctx)

	convCtx, err := conversation.New(prompt, opts.SystemPrompt)
	if err != nil {
		return nil, err
	}

	// 2. Validate.
	if verr := validateAll(model, convCtx, opts); verr != nil {
		metrics.RequestsTotal.WithLabelValues(model.Provider, model.ID, "error").Inc()
		return nil, verr
	}

	// 3. Apply constraints, 4. Apply adapters.
	opts = c.applyConstraintsAndAdapters(model, opts)

	// 5. Resolve wire.
	protocol, providerCfg, err := c.resolveWire(model)
	if err != nil {
		return nil, err
	}

	// 6. Fixture check.
	if opts.Fixture != "" && fixture.Mode() == fixture.ModeReplay {
		rec, ferr := fixture.Load(fixture.Path(c.fixtureRoot, model.Provider, model.ID, opts.Fixture))
		if ferr != nil {
			return nil, llmerr.Wrap(llmerr.APIStream, ferr, "fixture: missing or unreadable fixture")
		}
		player := fixture.NewPlayer(rec, protocol, model)
		log.Info("pipeline replay start", "fixture", opts.Fixture)
		return stream.RunReplay(ctx, model, player), nil
	}

	// 7. Build transport request.
	apiKey, err := credential.Resolve(model.Provider, providerCfg.EnvKey, opts.APIKey, c.credentials)
	if err != nil {
		return nil, err
	}
	req, recorder, err := c.buildRequest(model, providerCfg, protocol, convCtx, opts, apiKey)
	if err != nil {
		return nil, err
	}

	log.Info("pipeline request start", "operation", string(opts.Operation))

	// 8. Start stream.
	resp := stream.Run(ctx, c.transport, req, protocol, model, recorder)
	metrics.RequestDuration.WithLabelValues(model.Provider, model.ID).Observe(time.Since(start).Seconds())
	return resp, nil
}

func validateAll(model catalog.Model, convCtx conversation.Context, opts options.Options) *llmerr.Error {
	if err := validate.Operation(model, opts.Operation); err != nil {
		return err
	}
	if err := validate.Modality(model, convCtx); err != nil {
		return err
	}
	return validate.Capabilities(model, opts)
}

func (c *Client) applyConstraintsAndAdapters(model catalog.Model, opts options.Options) options.Options {
	opts = constraints.Apply(model, opts)
	opts = c.adapters.Apply(model, opts)
	if opts.ReceiveTimeout == 0 {
		opts.ReceiveTimeout = defaultReceiveTimeout
	}
	return opts
}

// resolveWire picks (provider config, wire protocol) per spec §4.1 step 5:
// the model's explicit extra.wire.protocol tag takes precedence, otherwise
// the provider's default.
func (c *Client) resolveWire(model catalog.Model) (wire.Protocol, provider.Config, error) {
	providerCfg, ok := c.providers.Get(model.Provider)
	if !ok {
		return nil, provider.Config{}, llmerr.Newf(llmerr.InvalidProvider, "unknown provider %q", model.Provider)
	}
	tag := model.Extra.WireProtocol()
	if tag == "" {
		tag = providerCfg.DefaultWireProtocol
	}
	protocol, ok := c.wires.Get(tag)
	if !ok {
		return nil, provider.Config{}, llmerr.Newf(llmerr.InvalidModelSpec, "no wire protocol registered for tag %q", tag)
	}
	return protocol, providerCfg, nil
}

func (c *Client) buildRequest(model catalog.Model, providerCfg provider.Config, protocol wire.Protocol, convCtx conversation.Context, opts options.Options, apiKey string) (transport.Request, *fixture.Recorder, error) {
	bodyMap, err := protocol.EncodeBody(model, convCtx, opts)
	if err != nil {
		return transport.Request{}, nil, llmerr.Wrap(llmerr.InvalidParameter, err, "failed to encode request body")
	}
	body, err := json.Marshal(bodyMap)
	if err != nil {
		return transport.Request{}, nil, llmerr.Wrap(llmerr.InvalidParameter, err, "failed to marshal request body")
	}

	headers := map[string]string{"Content-Type": "application/json", "Accept": "text/event-stream"}
	for k, v := range providerCfg.Headers(apiKey) {
		headers[k] = v
	}
	for k, v := range protocol.Headers(opts) {
		headers[k] = v
	}

	baseURL := providerCfg.BaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	url := baseURL + protocol.Endpoint()

	req := transport.Request{
		Method:         http.MethodPost,
		URL:            url,
		Headers:        headers,
		Body:           body,
		ReceiveTimeout: opts.ReceiveTimeout,
	}

	var recorder *fixture.Recorder
	if opts.Fixture != "" && fixture.Mode() == fixture.ModeRecord {
		path := fixture.Path(c.fixtureRoot, model.Provider, model.ID, opts.Fixture)
		recorder = fixture.NewRecorder(model.Provider, model.ID, promptSummary(convCtx), path, req.Method, req.URL, headers, body)
		recorder.SetCapturedAt(time.Now())
	}
	return req, recorder, nil
}

// promptSummary renders the last user message's text for the fixture
// record's "prompt" field (spec.md §3 Fixture record), falling back to the
// context's short summary when no user message is present.
func promptSummary(ctx conversation.Context) string {
	for i := len(ctx.Messages) - 1; i >= 0; i-- {
		if ctx.Messages[i].Role == conversation.RoleUser {
			return ctx.Messages[i].Text()
		}
	}
	return ctx.String()
}
