package adapter

import (
	"time"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/options"
)

const (
	thinkingBudgetLow     = 1024
	thinkingBudgetMedium  = 2048
	thinkingBudgetHigh    = 4096
	thinkingBudgetDefault = thinkingBudgetMedium

	// thinkingHeadroom is the source's unexplained reasoning-budget
	// headroom constant: when max_tokens would leave no room above the
	// thinking budget, it gets raised to budget+201. The 201 is preserved
	// verbatim, per spec's direction to keep an unexplained constant as-is
	// rather than round it to something that looks more intentional.
	thinkingHeadroom = 201

	anthropicThinkingTimeout = 300 * time.Second
)

// AnthropicThinking matches Anthropic models when the caller has asked for
// extended thinking, directly via Thinking or indirectly via
// ReasoningEffort, and rewrites sampling/token-limit options to the shape
// Anthropic's thinking mode requires.
type AnthropicThinking struct{}

// Name implements Adapter.
func (AnthropicThinking) Name() string { return "anthropic_thinking" }

// Matches implements Adapter.
func (AnthropicThinking) Matches(model catalog.Model) bool {
	return model.Provider == "anthropic"
}

func wantsThinking(opts options.Options) bool {
	return opts.Thinking != nil || opts.ReasoningEffort != ""
}

// TransformOpts implements Adapter.
func (a AnthropicThinking) TransformOpts(model catalog.Model, opts options.Options) options.Options {
	if !wantsThinking(opts) {
		return opts
	}

	if opts.ReceiveTimeout == 0 {
		opts.ReceiveTimeout = anthropicThinkingTimeout
	}
	opts.Temperature = nil
	if opts.TopP != nil {
		clamped := clamp(*opts.TopP, 0.95, 1.0)
		opts.TopP = &clamped
	}
	opts.TopK = nil

	budget := effectiveThinkingBudget(opts)
	if opts.MaxTokens != nil && *opts.MaxTokens <= budget {
		raised := budget + thinkingHeadroom
		opts.MaxTokens = &raised
	}
	opts.Thinking = &options.Thinking{Enabled: true, BudgetTokens: &budget}
	return opts
}

func effectiveThinkingBudget(opts options.Options) int {
	if opts.Thinking != nil && opts.Thinking.BudgetTokens != nil {
		return *opts.Thinking.BudgetTokens
	}
	switch opts.ReasoningEffort {
	case options.ReasoningLow:
		return thinkingBudgetLow
	case options.ReasoningMedium:
		return thinkingBudgetMedium
	case options.ReasoningHigh:
		return thinkingBudgetHigh
	default:
		return thinkingBudgetDefault
	}
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
