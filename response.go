package reqllm

import (
	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/chunk"
	"github.com/ferro-labs/reqllm-go/conversation"
	"github.com/ferro-labs/reqllm-go/llmerr"
)

// FinishReason classifies why a generation stopped (spec.md §3 "Buffered
// response").
type FinishReason string

// FinishReason values.
const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishToolCalls     FinishReason = "tool_calls"
	FinishContentFilter FinishReason = "content_filter"
	FinishError         FinishReason = "error"
)

// Usage mirrors chunk.UsageData as the Response-level, already-buffered
// shape (spec.md §1 Non-goals: surfacing reported token counts, no cost
// accounting math on top of them).
type Usage = chunk.UsageData

// Response is the buffered result of joining a stream.Response (spec.md §3
// "Buffered response").
type Response struct {
	ID      string
	Model   catalog.Model
	Context conversation.Context
	Message *conversation.Message
	Text    string
	Object  any
	Usage   *Usage

	FinishReason FinishReason
	ProviderMeta map[string]any
	Err          *llmerr.Error
}
