// Package constraints applies the metadata-driven parameter rewrites
// described in a model's extra.constraints map (spec.md §4.3). Transforms
// are independent, pure, and applied in a fixed order; re-running the full
// set on an already-constrained Options is a no-op (spec.md §8 invariant 1).
package constraints

import (
	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/options"
)

// Apply runs the five ordered transforms against opts, reading
// model.Extra.Constraints(). Constraints never inspect the model id.
func Apply(model catalog.Model, opts options.Options) options.Options {
	c := model.Extra.Constraints()
	if c == nil {
		return opts
	}
	opts = opts.Clone()
	opts = applyTokenLimitKey(c, opts)
	opts = applyTemperature(c, opts)
	opts = applySampling(c, opts)
	opts = applyMinOutputTokens(c, opts)
	opts = applyReasoningEffort(c, opts)
	return opts
}

// applyTokenLimitKey renames max_tokens to max_completion_tokens when the
// constraint requests it, so a model never sees both keys set at once
// (spec.md §8 invariant 5).
func applyTokenLimitKey(c map[string]any, opts options.Options) options.Options {
	key, _ := c["token_limit_key"].(string)
	if key != "max_completion_tokens" {
		return opts
	}
	if opts.MaxTokens != nil && opts.MaxCompletionTokens == nil {
		opts.MaxCompletionTokens = opts.MaxTokens
	}
	opts.MaxTokens = nil
	return opts
}

// applyTemperature enforces a model's temperature policy: "any" (default,
// leave as-is), "fixed_1" (force 1.0), or "unsupported" (remove).
func applyTemperature(c map[string]any, opts options.Options) options.Options {
	mode, _ := c["temperature"].(string)
	switch mode {
	case "fixed_1":
		v := 1.0
		opts.Temperature = &v
	case "unsupported":
		opts.Temperature = nil
	}
	return opts
}

// applySampling removes top_p/top_k when the model declares sampling
// controls unsupported.
func applySampling(c map[string]any, opts options.Options) options.Options {
	if mode, _ := c["sampling"].(string); mode == "unsupported" {
		opts.TopP = nil
		opts.TopK = nil
	}
	return opts
}

// applyMinOutputTokens raises whichever token-limit field is currently set
// to the constraint's floor M, if it is set and strictly below M (and M>0).
func applyMinOutputTokens(c map[string]any, opts options.Options) options.Options {
	m := intFromAny(c["min_output_tokens"])
	if m <= 0 {
		return opts
	}
	switch {
	case opts.MaxCompletionTokens != nil && *opts.MaxCompletionTokens < m:
		v := m
		opts.MaxCompletionTokens = &v
	case opts.MaxOutputTokens != nil && *opts.MaxOutputTokens < m:
		v := m
		opts.MaxOutputTokens = &v
	case opts.MaxTokens != nil && *opts.MaxTokens < m:
		v := m
		opts.MaxTokens = &v
	}
	return opts
}

// applyReasoningEffort enforces a model's reasoning_effort policy:
// "required" (default to medium if absent), "supported" (leave as-is), or
// "unsupported" (remove).
func applyReasoningEffort(c map[string]any, opts options.Options) options.Options {
	mode, _ := c["reasoning_effort"].(string)
	switch mode {
	case "required":
		if opts.ReasoningEffort == "" {
			opts.ReasoningEffort = options.ReasoningMedium
		}
	case "unsupported":
		opts.ReasoningEffort = ""
	}
	return opts
}

func intFromAny(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
