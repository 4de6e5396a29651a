// Package options defines the structured request-options value threaded
// through every pipeline stage. The source library used an open-ended
// keyword list; here the field set is fixed by the Options struct itself —
// Go's static typing is what "unknown fields are rejected" (spec §9 Design
// Note) means in this port, rather than a runtime check.
package options

import (
	"time"

	"github.com/ferro-labs/reqllm-go/schema"
	"github.com/ferro-labs/reqllm-go/tool"
)

// Operation identifies which Executor operation is in flight. Most wire
// encoders only care whether it is Object (structured output requested).
type Operation string

// Operation values.
const (
	OperationText   Operation = ""
	OperationObject Operation = "object"
	OperationEmbed  Operation = "embed"
)

// ReasoningEffort is the caller-requested reasoning budget tier.
type ReasoningEffort string

// ReasoningEffort values.
const (
	ReasoningLow    ReasoningEffort = "low"
	ReasoningMedium ReasoningEffort = "medium"
	ReasoningHigh   ReasoningEffort = "high"
)

// Thinking configures Anthropic-style extended thinking directly, as an
// alternative to ReasoningEffort's tier mapping.
type Thinking struct {
	Enabled      bool
	BudgetTokens *int
}

// Options is the full set of recognized request options (spec §9 Design
// Note). Every field here is one the adapter/constraints/wire stages are
// allowed to read or rewrite; there is no escape hatch for ad hoc keys.
type Options struct {
	APIKey  string
	BaseURL string

	MaxTokens           *int
	MaxCompletionTokens *int
	MaxOutputTokens     *int

	Temperature *float64
	TopP        *float64
	TopK        *int

	ReasoningEffort ReasoningEffort
	Thinking        *Thinking

	Tools      []tool.Definition
	ToolChoice any

	Operation      Operation
	CompiledSchema *schema.Compiled

	Stream bool

	AnthropicPromptCache    bool
	AnthropicPromptCacheTTL string

	ReceiveTimeout time.Duration

	// Fixture names a fixture to record to or replay from (spec §4.8).
	Fixture string

	// SystemPrompt is prepended as a system message by context construction
	// (spec §4.2) when the input context carries none already.
	SystemPrompt string

	// AdapterApplied records the names of adapters that transformed this
	// Options value, for diagnostics (spec §4.5: "an adapter may stamp
	// opts._adapter_applied").
	AdapterApplied []string
}

// Clone returns a deep-enough copy of o so that pipeline stages can rewrite
// fields without mutating the caller's original Options. Slices are
// reallocated; pointer fields are copied by value into new pointers so
// downstream rewrites (e.g. raising a token limit) never alias the input.
func (o Options) Clone() Options {
	cp := o
	if o.MaxTokens != nil {
		v := *o.MaxTokens
		cp.MaxTokens = &v
	}
	if o.MaxCompletionTokens != nil {
		v := *o.MaxCompletionTokens
		cp.MaxCompletionTokens = &v
	}
	if o.MaxOutputTokens != nil {
		v := *o.MaxOutputTokens
		cp.MaxOutputTokens = &v
	}
	if o.Temperature != nil {
		v := *o.Temperature
		cp.Temperature = &v
	}
	if o.TopP != nil {
		v := *o.TopP
		cp.TopP = &v
	}
	if o.TopK != nil {
		v := *o.TopK
		cp.TopK = &v
	}
	if o.Thinking != nil {
		th := *o.Thinking
		if o.Thinking.BudgetTokens != nil {
			b := *o.Thinking.BudgetTokens
			th.BudgetTokens = &b
		}
		cp.Thinking = &th
	}
	if o.Tools != nil {
		cp.Tools = append([]tool.Definition(nil), o.Tools...)
	}
	if o.AdapterApplied != nil {
		cp.AdapterApplied = append([]string(nil), o.AdapterApplied...)
	}
	return cp
}

// StampAdapter appends name to AdapterApplied, returning the updated Options.
func (o Options) StampAdapter(name string) Options {
	o.AdapterApplied = append(o.AdapterApplied, name)
	return o
}

// EffectiveTokenLimit returns whichever of MaxCompletionTokens,
// MaxOutputTokens, or MaxTokens is set, in that precedence order, along with
// which field it came from ("max_completion_tokens", "max_output_tokens",
// "max_tokens") and false if none are set.
func (o Options) EffectiveTokenLimit() (value int, key string, ok bool) {
	switch {
	case o.MaxCompletionTokens != nil:
		return *o.MaxCompletionTokens, "max_completion_tokens", true
	case o.MaxOutputTokens != nil:
		return *o.MaxOutputTokens, "max_output_tokens", true
	case o.MaxTokens != nil:
		return *o.MaxTokens, "max_tokens", true
	default:
		return 0, "", false
	}
}
