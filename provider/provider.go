// Package provider holds per-provider transport configuration: base URL,
// authentication header style, and the environment variable a credential
// defaults from. It does not implement any request/response logic itself —
// that now lives in wire.Protocol + stream, per spec.md §9's redesign note
// (dynamic per-provider dispatch modules collapse into one registry keyed
// by provider/wire tag).
//
// Grounded on providers.Base (name/apiKey/baseURL fields) and
// providers.Registry (map-keyed-by-name), trimmed to configuration only.
package provider

import "fmt"

// AuthStyle selects how a resolved API key is attached to a request.
type AuthStyle string

// Auth styles.
const (
	AuthBearer AuthStyle = "bearer" // Authorization: Bearer <key>
	AuthAPIKey AuthStyle = "x-api-key"
)

// Config is one provider's static configuration.
type Config struct {
	Name      string
	BaseURL   string
	AuthStyle AuthStyle
	// EnvKey is the environment variable a credential defaults from, e.g.
	// "OPENAI_API_KEY".
	EnvKey string
	// DefaultWireProtocol is used when a model's extra.wire.protocol is unset.
	DefaultWireProtocol string
}

// Headers returns the authentication header(s) for apiKey under this
// provider's AuthStyle.
func (c Config) Headers(apiKey string) map[string]string {
	switch c.AuthStyle {
	case AuthAPIKey:
		return map[string]string{"x-api-key": apiKey}
	default:
		return map[string]string{"Authorization": "Bearer " + apiKey}
	}
}

// Registry is a lookup of provider Configs by name.
type Registry struct {
	configs map[string]Config
}

// NewRegistry builds a Registry from the given configs.
func NewRegistry(configs ...Config) *Registry {
	r := &Registry{configs: make(map[string]Config, len(configs))}
	for _, c := range configs {
		r.configs[c.Name] = c
	}
	return r
}

// Get looks up a provider's configuration by name.
func (r *Registry) Get(name string) (Config, bool) {
	c, ok := r.configs[name]
	return c, ok
}

// MustGet looks up a provider's configuration by name, panicking if absent.
// Reserved for call sites that have already validated the name exists
// (e.g. immediately after a successful catalog lookup).
func (r *Registry) MustGet(name string) Config {
	c, ok := r.configs[name]
	if !ok {
		panic(fmt.Sprintf("provider: no configuration registered for %q", name))
	}
	return c
}

// List returns every registered provider name.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	return names
}

// Default returns the registry of providers this module ships configuration
// for: openai, anthropic, groq, openrouter, xai. All but anthropic default
// to the OpenAI Chat Completions wire protocol (spec.md §4.1 step 5).
func Default() *Registry {
	return NewRegistry(
		Config{Name: "openai", BaseURL: "https://api.openai.com", AuthStyle: AuthBearer, EnvKey: "OPENAI_API_KEY", DefaultWireProtocol: "openai_chat"},
		Config{Name: "anthropic", BaseURL: "https://api.anthropic.com", AuthStyle: AuthAPIKey, EnvKey: "ANTHROPIC_API_KEY", DefaultWireProtocol: "anthropic_messages"},
		Config{Name: "groq", BaseURL: "https://api.groq.com/openai", AuthStyle: AuthBearer, EnvKey: "GROQ_API_KEY", DefaultWireProtocol: "openai_chat"},
		Config{Name: "openrouter", BaseURL: "https://openrouter.ai/api", AuthStyle: AuthBearer, EnvKey: "OPENROUTER_API_KEY", DefaultWireProtocol: "openai_chat"},
		Config{Name: "xai", BaseURL: "https://api.x.ai", AuthStyle: AuthBearer, EnvKey: "XAI_API_KEY", DefaultWireProtocol: "openai_chat"},
	)
}
