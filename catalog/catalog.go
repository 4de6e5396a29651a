// Package catalog provides a read-only lookup of model metadata by
// "provider:id". The catalog is parsed from an embedded snapshot each time
// Load is called (no network call — the gateway's remote-fetch-with-
// fallback pattern is unnecessary here since the catalog is a small,
// version-pinned dataset bundled with the module) and every lookup returns
// an immutable value copy, never a pointer into the internal map.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed catalog_data.json
var bundled []byte

// Model is an immutable snapshot of one model's identity, capability map,
// modalities, limits, and provider-specific extras.
type Model struct {
	Provider     string       `json:"provider"`
	ID           string       `json:"id"`
	Capabilities Capabilities `json:"capabilities"`
	Modalities   Modalities   `json:"modalities"`
	Limits       Limits       `json:"limits"`
	Extra        Extra        `json:"extra"`
}

// Capabilities describes what operations and features a model supports.
type Capabilities struct {
	Chat       bool          `json:"chat"`
	Embeddings bool          `json:"embeddings"`
	Reasoning  ReasoningCaps `json:"reasoning"`
	Tools      ToolCaps      `json:"tools"`
	JSON       JSONCaps      `json:"json"`
	Streaming  StreamingCaps `json:"streaming"`
}

// ReasoningCaps describes a model's support for extended/chain-of-thought reasoning.
type ReasoningCaps struct {
	Enabled bool `json:"enabled"`
}

// ToolCaps describes a model's function/tool-calling support.
type ToolCaps struct {
	Enabled   bool `json:"enabled"`
	Streaming bool `json:"streaming"`
	Strict    bool `json:"strict"`
	Parallel  bool `json:"parallel"`
}

// JSONCaps describes a model's structured-output support.
type JSONCaps struct {
	Native bool `json:"native"`
	Schema bool `json:"schema"`
	Strict bool `json:"strict"`
}

// StreamingCaps describes what a model can stream.
type StreamingCaps struct {
	Text      bool `json:"text"`
	ToolCalls bool `json:"tool_calls"`
}

// Modalities lists the input/output content kinds a model accepts/produces.
// Valid members: "text", "image", "audio", "pdf", "embedding".
type Modalities struct {
	Input  []string `json:"input"`
	Output []string `json:"output"`
}

// hasInput reports whether kind is among the input modalities.
func (m Modalities) hasInput(kind string) bool {
	for _, k := range m.Input {
		if k == kind {
			return true
		}
	}
	return false
}

// Limits carries a model's context and output token ceilings.
type Limits struct {
	Context int `json:"context"`
	Output  int `json:"output"`
}

// Extra is the free-form per-model metadata bag: constraints for the
// constraints engine (§4.3), the wire protocol override, API style, and
// kind/type hints used during operation validation (§4.4).
type Extra map[string]any

// WireProtocol returns extra.wire.protocol, or "" if unset.
func (e Extra) WireProtocol() string {
	wire, _ := e["wire"].(map[string]any)
	if wire == nil {
		return ""
	}
	proto, _ := wire["protocol"].(string)
	return proto
}

// API returns extra.api, or "" if unset.
func (e Extra) API() string {
	api, _ := e["api"].(string)
	return api
}

// RawKind returns extra.kind if set, else extra.type, else "".
func (e Extra) RawKind() string {
	if k, ok := e["kind"].(string); ok && k != "" {
		return k
	}
	if t, ok := e["type"].(string); ok && t != "" {
		return t
	}
	return ""
}

// Constraints returns extra.constraints as a map, or nil if unset.
func (e Extra) Constraints() map[string]any {
	c, _ := e["constraints"].(map[string]any)
	return c
}

// OperationKind classifies a model for operation-compatibility checks
// (spec §4.4): embedding / reasoning / chat. extra.kind or extra.type take
// precedence; otherwise the kind is inferred from capabilities.
func (m Model) OperationKind() string {
	if k := m.Extra.RawKind(); k != "" {
		return k
	}
	if k := m.Extra.API(); k == "embedding" {
		return "embedding"
	}
	switch {
	case m.Capabilities.Embeddings:
		return "embedding"
	case m.Capabilities.Reasoning.Enabled:
		return "reasoning"
	default:
		return "chat"
	}
}

// SupportsImageInput reports whether the model accepts image content parts.
func (m Model) SupportsImageInput() bool {
	return m.Modalities.hasInput("image")
}

// Catalog is a flat map of "provider:id" → Model.
type Catalog struct {
	models map[string]Model
}

// Load parses the embedded catalog snapshot bundled with the module.
func Load() (*Catalog, error) {
	return Parse(bundled)
}

// Parse decodes a JSON document in catalog_data.json's shape into a Catalog.
// Exposed so tests and operators can load an alternate snapshot.
func Parse(data []byte) (*Catalog, error) {
	var raw struct {
		Models []Model `json:"models"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	c := &Catalog{models: make(map[string]Model, len(raw.Models))}
	for _, m := range raw.Models {
		c.models[key(m.Provider, m.ID)] = m
	}
	return c, nil
}

func key(provider, id string) string {
	return provider + ":" + id
}

// Lookup finds a model by provider and id. The returned Model is a value
// copy; mutating it never affects the catalog.
func (c *Catalog) Lookup(provider, id string) (Model, bool) {
	if c == nil {
		return Model{}, false
	}
	m, ok := c.models[key(provider, id)]
	return m, ok
}

// Get looks up a model by its combined "provider:id" spec string.
func (c *Catalog) Get(spec string) (Model, bool) {
	provider, id, ok := strings.Cut(spec, ":")
	if !ok {
		return Model{}, false
	}
	return c.Lookup(provider, id)
}

// List returns every model registered for the given provider.
func (c *Catalog) List(provider string) []Model {
	if c == nil {
		return nil
	}
	var out []Model
	for _, m := range c.models {
		if m.Provider == provider {
			out = append(out, m)
		}
	}
	return out
}

// All returns every model in the catalog.
func (c *Catalog) All() []Model {
	if c == nil {
		return nil
	}
	out := make([]Model, 0, len(c.models))
	for _, m := range c.models {
		out = append(out, m)
	}
	return out
}
