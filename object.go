package reqllm

import (
	"context"
	"encoding/json"

	"github.com/ferro-labs/reqllm-go/llmerr"
	"github.com/ferro-labs/reqllm-go/options"
	"github.com/ferro-labs/reqllm-go/schema"
)

// StreamObject compiles schemaDef, injects operation=:object and the
// compiled schema into opts, and otherwise runs exactly the StreamText
// pipeline (spec.md §4.1 stream_object). schemaDef is either a
// schema.FieldList/[]schema.Field or a raw map[string]any JSON Schema
// document.
func (c *Client) StreamObject(ctx context.Context, spec any, prompt any, schemaDef any, opts options.Options) (*StreamResponse, error) {
	compiled, err := schema.Compile(schemaDef)
	if err != nil {
		return nil, llmerr.Wrap(llmerr.InvalidParameter, err, "failed to compile object schema")
	}
	opts.Operation = options.OperationObject
	opts.CompiledSchema = compiled
	return c.StreamText(ctx, spec, prompt, opts)
}

// GenerateObject joins StreamObject's chunk sequence into a string, parses
// it as JSON, validates it against schemaDef, and populates Response.Object
// (spec.md §4.1 generate_object).
func (c *Client) GenerateObject(ctx context.Context, spec any, prompt any, schemaDef any, opts options.Options) (*Response, error) {
	compiled, err := schema.Compile(schemaDef)
	if err != nil {
		return nil, llmerr.Wrap(llmerr.InvalidParameter, err, "failed to compile object schema")
	}
	opts.Operation = options.OperationObject
	opts.CompiledSchema = compiled

	resp, err := c.GenerateText(ctx, spec, prompt, opts)
	if err != nil {
		return resp, err
	}

	var obj any
	if jerr := json.Unmarshal([]byte(resp.Text), &obj); jerr != nil {
		resp.Err = llmerr.Wrap(llmerr.APIJsonParse, jerr, "failed to parse generated object as JSON").WithContext("text", resp.Text)
		return resp, resp.Err
	}
	if verr := compiled.Validate(obj); verr != nil {
		resp.Err = verr
		return resp, verr
	}
	resp.Object = obj
	return resp, nil
}

// StreamObject forwards to the package-level default client.
func StreamObject(ctx context.Context, spec any, prompt any, schemaDef any, opts options.Options) (*StreamResponse, error) {
	return Default().StreamObject(ctx, spec, prompt, schemaDef, opts)
}

// GenerateObject forwards to the package-level default client.
func GenerateObject(ctx context.Context, spec any, prompt any, schemaDef any, opts options.Options) (*Response, error) {
	return Default().GenerateObject(ctx, spec, prompt, schemaDef, opts)
}
