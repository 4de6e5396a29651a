// Package tool defines callable function tools: their schema, validation,
// callback binding, and per-provider wire projection (spec §3 "Tool
// definition", §8 invariants 6-7).
package tool

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
)

// nameRE is the accepted tool-name grammar (spec §3, §8 invariant 7).
var nameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const maxNameLength = 64

// Callback is invoked with the JSON-decoded arguments map when a tool call
// for this definition needs to be executed locally.
type Callback func(args map[string]any) (any, error)

// Definition describes a function the model may call.
type Definition struct {
	Name        string
	Description string
	// Parameters is either a field-schema keyword list (a schema.FieldList,
	// or any other FieldLister) or a raw JSON Schema map[string]any. It is kept as
	// `any` here to avoid a dependency on the schema package's Field type
	// leaking into every caller that only needs the raw JSON Schema form.
	Parameters any
	Strict     bool
	Callback   Callback

	compiled json.RawMessage // cached JSON Schema projection of Parameters
}

// Call is a single tool invocation issued by a model.
type Call struct {
	ID        string
	Name      string
	Arguments string // JSON-encoded argument object
}

// ValidateName reports whether name satisfies the tool-name grammar: it
// must match ^[A-Za-z_][A-Za-z0-9_]*$ and be at most 64 characters long
// (spec §8 invariant 7).
func ValidateName(name string) error {
	if len(name) == 0 || len(name) > maxNameLength {
		return fmt.Errorf("tool: name %q must be 1-%d characters", name, maxNameLength)
	}
	if !nameRE.MatchString(name) {
		return fmt.Errorf("tool: name %q must match %s", name, nameRE.String())
	}
	return nil
}

// New builds a Definition, validating its name eagerly.
func New(name, description string, parameters any, callback Callback) (*Definition, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return &Definition{
		Name:        name,
		Description: description,
		Parameters:  parameters,
		Callback:    callback,
	}, nil
}

// NewCallID generates a tool-call identifier matching call_<12 random bytes,
// base64url-encoded> per spec §3, used when a joined stream yields a tool
// call without an upstream-assigned id.
func NewCallID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return "call_" + base64.RawURLEncoding.EncodeToString(b)
}

// openAIFunction is the {type, function{name, description, parameters,
// strict}} wire shape used by OpenAI Chat/Responses tool projections.
type openAIFunction struct {
	Type     string       `json:"type"`
	Function openAIFnBody `json:"function"`
}

type openAIFnBody struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	Strict      bool            `json:"strict,omitempty"`
}

// anthropicTool is Anthropic's {name, description, input_schema, ?strict} shape.
type anthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
	Strict      bool            `json:"strict,omitempty"`
}

// googleFunctionDeclaration is Gemini's functionDeclarations entry shape.
type googleFunctionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// rawSchema renders Parameters to a JSON Schema document. A []Field list
// (duck-typed via the FieldLister interface, implemented by
// schema.FieldList) is projected to {type:object, properties, required};
// a map[string]any is treated as an already-complete JSON Schema document;
// anything else yields an empty object schema.
func (d *Definition) rawSchema() json.RawMessage {
	if d.compiled != nil {
		return d.compiled
	}
	switch p := d.Parameters.(type) {
	case map[string]any:
		b, err := json.Marshal(p)
		if err != nil {
			return json.RawMessage(`{}`)
		}
		return b
	case FieldLister:
		b, err := json.Marshal(fieldListToJSONSchema(p.Fields()))
		if err != nil {
			return json.RawMessage(`{}`)
		}
		return b
	case nil:
		return json.RawMessage(`{"type":"object","properties":{}}`)
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return json.RawMessage(`{}`)
		}
		return b
	}
}

// FieldLister is implemented by schema.FieldList so tool can project a
// field-schema keyword list without importing the schema package (which in
// turn would create an import cycle through options/schema/tool).
type FieldLister interface {
	Fields() []Field
}

// Field mirrors schema.Field's shape minimally, enough to build a JSON
// Schema "properties" object. It is duplicated (not imported) to keep this
// package dependency-free; schema.FieldList satisfies FieldLister by
// implementing Fields() []tool.Field via a thin adapter in that package.
type Field struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Enum        []string
}

func fieldListToJSONSchema(fields []Field) map[string]any {
	props := make(map[string]any, len(fields))
	var required []string
	for _, f := range fields {
		p := map[string]any{"type": f.Type}
		if f.Description != "" {
			p["description"] = f.Description
		}
		if len(f.Enum) > 0 {
			p["enum"] = f.Enum
		}
		props[f.Name] = p
		if f.Required {
			required = append(required, f.Name)
		}
	}
	s := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// Schema projects this Definition into the named provider's wire
// representation. Supported providers: "openai", "anthropic", "google".
// Projection is pure and deterministic (spec §8 invariant 6) and always
// contains the tool's name.
func (d *Definition) Schema(provider string) (json.RawMessage, error) {
	raw := d.rawSchema()
	switch provider {
	case "openai":
		return json.Marshal(openAIFunction{
			Type: "function",
			Function: openAIFnBody{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  raw,
				Strict:      d.Strict,
			},
		})
	case "anthropic":
		return json.Marshal(anthropicTool{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: raw,
			Strict:      d.Strict,
		})
	case "google":
		return json.Marshal(googleFunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  raw,
		})
	default:
		return nil, fmt.Errorf("tool: unsupported provider %q for schema projection", provider)
	}
}
