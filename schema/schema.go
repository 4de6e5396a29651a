// Package schema compiles a field-schema keyword list (or a raw JSON
// Schema document) into a validator, and validates decoded objects against
// it (spec §3 "Compiled schema", §4 "Schema compiler/validator").
//
// Compilation of field-schema definitions is backed by
// github.com/santhosh-tekuri/jsonschema/v5 — the teacher repo carries this
// dependency in its go.mod but never imports it; this package gives it its
// first real job.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ferro-labs/reqllm-go/llmerr"
	"github.com/ferro-labs/reqllm-go/tool"
)

// Field is one entry in a field-schema keyword-style definition, e.g.
//
//	[]schema.Field{
//	    {Name: "name", Type: "string", Required: true},
//	    {Name: "age", Type: "integer", Required: true},
//	}
type Field struct {
	Name        string
	Type        string // "string" | "integer" | "number" | "boolean" | "array" | "object"
	Description string
	Required    bool
	Enum        []string
}

// FieldList is a field-schema keyword-style definition. It implements
// tool.FieldLister so a Definition built from a FieldList can be projected
// to a per-provider wire schema without this package and the tool package
// depending on each other's concrete types.
type FieldList []Field

// Fields implements tool.FieldLister.
func (fl FieldList) Fields() []tool.Field {
	out := make([]tool.Field, len(fl))
	for i, f := range fl {
		out[i] = tool.Field{
			Name:        f.Name,
			Type:        f.Type,
			Description: f.Description,
			Required:    f.Required,
			Enum:        f.Enum,
		}
	}
	return out
}

// Compiled holds the original schema definition plus, when compilation
// produced one, a compiled JSON Schema validator. Validator is nil when the
// original schema was supplied as a raw JSON Schema map — validation is
// then pass-through, per spec: the caller is trusted to have already
// produced a schema-conformant document.
type Compiled struct {
	Original   any
	Validator  *jsonschema.Schema
	jsonSchema map[string]any
}

// Compile accepts either a FieldList (or []Field) or a raw map[string]any
// JSON Schema document and returns a Compiled schema.
func Compile(def any) (*Compiled, error) {
	switch d := def.(type) {
	case FieldList:
		return compileFields(d)
	case []Field:
		return compileFields(FieldList(d))
	case map[string]any:
		return &Compiled{Original: d, jsonSchema: d}, nil
	case nil:
		return nil, fmt.Errorf("schema: Compile requires a non-nil definition")
	default:
		return nil, fmt.Errorf("schema: unsupported definition type %T", def)
	}
}

func compileFields(fl FieldList) (*Compiled, error) {
	js := fieldListToJSONSchema(fl)
	b, err := json.Marshal(js)
	if err != nil {
		return nil, fmt.Errorf("schema: marshal field list: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	const resourceURL = "reqllm://compiled-schema.json"
	if err := compiler.AddResource(resourceURL, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("schema: add resource: %w", err)
	}
	sch, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("schema: compile: %w", err)
	}

	return &Compiled{Original: fl, Validator: sch, jsonSchema: js}, nil
}

func fieldListToJSONSchema(fl FieldList) map[string]any {
	props := make(map[string]any, len(fl))
	var required []string
	for _, f := range fl {
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

// JSONSchema renders the compiled schema as a JSON Schema document, for
// embedding into a wire request (e.g. OpenAI's response_format.json_schema).
func (c *Compiled) JSONSchema() map[string]any {
	if c == nil {
		return nil
	}
	return c.jsonSchema
}

// Validate checks a decoded object (typically the result of json.Unmarshal
// into map[string]any) against the compiled schema. A nil Validator means
// pass-through — the call always succeeds.
func (c *Compiled) Validate(obj any) *llmerr.Error {
	if c == nil || c.Validator == nil {
		return nil
	}
	if err := c.Validator.Validate(obj); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return llmerr.Wrap(llmerr.APISchemaValidation, err, "object failed schema validation")
		}
		return &llmerr.Error{
			Kind:    llmerr.APISchemaValidation,
			Message: "object failed schema validation",
			Fields:  flattenValidationErrors(ve),
			Wrapped: err,
		}
	}
	return nil
}

func flattenValidationErrors(ve *jsonschema.ValidationError) []llmerr.FieldError {
	var out []llmerr.FieldError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if e == nil {
			return
		}
		if len(e.Causes) == 0 {
			out = append(out, llmerr.FieldError{
				Path:    e.InstanceLocation,
				Message: e.Message,
			})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return out
}
