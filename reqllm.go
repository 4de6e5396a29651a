// Package reqllm is a unified client for OpenAI Chat Completions, OpenAI
// Responses, Anthropic Messages, and OpenAI-compatible embedding APIs. It
// exposes buffered and streaming text generation, schema-validated
// structured-object generation, and embeddings, all driven through the
// same six-stage request pipeline: resolve the model, validate the
// operation against its capabilities, apply metadata-driven constraints,
// run per-model adapters, resolve the wire protocol, and drive the
// streaming transport.
//
// Client mirrors the shape of a routing gateway's entry point (a struct
// holding the catalog, provider registry, and credential config, built
// with functional options) but resolves exactly one model per request —
// there is no multi-target routing here, since that is out of scope for a
// client library.
package reqllm

import (
	"github.com/ferro-labs/reqllm-go/adapter"
	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/credential"
	"github.com/ferro-labs/reqllm-go/provider"
	"github.com/ferro-labs/reqllm-go/stream"
	"github.com/ferro-labs/reqllm-go/transport"
	"github.com/ferro-labs/reqllm-go/wire"
)

// StreamResponse is the opaque, cancellable handle to a lazy chunk
// sequence returned by StreamText/StreamObject (spec.md §3 "Stream
// response"). It is an alias for stream.Response so callers importing only
// the reqllm package never need to import the stream package directly.
type StreamResponse = stream.Response

// Client is the pipeline orchestrator (spec §4.1 Executor). The zero value
// is not usable; construct one with New.
type Client struct {
	catalog     *catalog.Catalog
	providers   *provider.Registry
	wires       *wire.Registry
	adapters    *adapter.Pipeline
	credentials *credential.Config
	transport   *transport.Client
	fixtureRoot string
}

// Option configures a Client built by New.
type Option func(*Client)

// WithCatalog overrides the model catalog (default: the embedded snapshot
// loaded via catalog.Load).
func WithCatalog(c *catalog.Catalog) Option {
	return func(cl *Client) { cl.catalog = c }
}

// WithProviders overrides the provider configuration registry (default:
// provider.Default()).
func WithProviders(r *provider.Registry) Option {
	return func(cl *Client) { cl.providers = r }
}

// WithWireProtocols overrides the wire protocol registry (default:
// wire.Default()).
func WithWireProtocols(r *wire.Registry) Option {
	return func(cl *Client) { cl.wires = r }
}

// WithAdapters overrides the adapter pipeline (default: adapter.Default()).
func WithAdapters(p *adapter.Pipeline) Option {
	return func(cl *Client) { cl.adapters = p }
}

// WithCredentials sets the process-wide credential config consulted by the
// credential resolver between the per-request api_key option and the
// environment (spec §6).
func WithCredentials(cfg *credential.Config) Option {
	return func(cl *Client) { cl.credentials = cfg }
}

// WithHTTPTransport overrides the transport client (default: &transport.Client{}).
func WithHTTPTransport(t *transport.Client) Option {
	return func(cl *Client) { cl.transport = t }
}

// WithFixtureRoot sets the root directory fixture record/replay reads and
// writes under (default: "fixtures").
func WithFixtureRoot(root string) Option {
	return func(cl *Client) { cl.fixtureRoot = root }
}

// New builds a Client. The embedded catalog snapshot is loaded unless
// WithCatalog overrides it.
func New(opts ...Option) (*Client, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, err
	}
	cl := &Client{
		catalog:     cat,
		providers:   provider.Default(),
		wires:       wire.Default(),
		adapters:    adapter.Default(),
		transport:   &transport.Client{},
		fixtureRoot: "fixtures",
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl, nil
}

// Catalog returns the client's model catalog.
func (c *Client) Catalog() *catalog.Catalog { return c.catalog }

var defaultClient *Client

func defaultClientOrPanic() *Client {
	if defaultClient == nil {
		cl, err := New()
		if err != nil {
			panic("reqllm: failed to build default client: " + err.Error())
		}
		defaultClient = cl
	}
	return defaultClient
}

// Default returns the package-level client used by the top-level
// convenience functions (GenerateText, StreamText, ...), building it on
// first use from the embedded catalog and default provider/wire/adapter
// registries.
func Default() *Client { return defaultClientOrPanic() }
