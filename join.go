package reqllm

import (
	"context"
	"sort"
	"strings"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/chunk"
	"github.com/ferro-labs/reqllm-go/conversation"
	"github.com/ferro-labs/reqllm-go/internal/logging"
	"github.com/ferro-labs/reqllm-go/internal/metrics"
	"github.com/ferro-labs/reqllm-go/llmerr"
	"github.com/ferro-labs/reqllm-go/stream"
	"github.com/ferro-labs/reqllm-go/tool"
)

// toolAccum accumulates one tool_call_start/tool_call_delta slot, keyed by
// index, per spec.md §4.10: arguments concatenation preserves arrival
// order of deltas for a given index (spec.md §8 invariant 4).
type toolAccum struct {
	index int
	id    string
	name  string
	args  strings.Builder
}

// joinStream folds a stream.Response's chunk sequence into a Response:
// accumulated text (in arrival order), finalized tool calls (sorted by
// index), the first observed usage, and the evolved context with an
// assistant message appended (spec.md §4.10).
func joinStream(ctx context.Context, model catalog.Model, input conversation.Context, sresp *stream.Response) *Response {
	var text strings.Builder
	slots := map[int]*toolAccum{}
	var order []int
	var usage *Usage
	var meta chunk.MetaData
	var streamErr *llmerr.Error

	for c := range sresp.Chunks() {
		switch c.Kind {
		case chunk.Text:
			text.WriteString(c.Text)
		case chunk.ToolCallStart:
			a := &toolAccum{index: c.ToolCallStart.Index, id: c.ToolCallStart.ID, name: c.ToolCallStart.Name}
			if _, exists := slots[a.index]; !exists {
				order = append(order, a.index)
			}
			slots[a.index] = a
		case chunk.ToolCallDelta:
			a, ok := slots[c.ToolCallDelta.Index]
			if !ok {
				a = &toolAccum{index: c.ToolCallDelta.Index}
				slots[a.index] = a
				order = append(order, a.index)
			}
			if a.id == "" && c.ToolCallDelta.ID != "" {
				a.id = c.ToolCallDelta.ID
			}
			if a.name == "" && c.ToolCallDelta.FunctionName != "" {
				a.name = c.ToolCallDelta.FunctionName
			}
			if c.ToolCallDelta.FunctionArguments != "" {
				a.args.WriteString(c.ToolCallDelta.FunctionArguments)
			}
			if c.ToolCallDelta.PartialJSON != "" {
				a.args.WriteString(c.ToolCallDelta.PartialJSON)
			}
		case chunk.Usage:
			if usage == nil {
				u := c.Usage
				usage = &u
			}
		case chunk.Meta:
			meta = c.Meta
		case chunk.Error:
			metrics.StreamErrors.WithLabelValues(model.Provider, "api_stream").Inc()
			streamErr = llmerr.Newf(llmerr.APIStream, "%s", c.Error.Message).WithContext("type", c.Error.Type)
		}
	}

	if streamErr == nil && sresp.Err() != nil {
		streamErr = sresp.Err()
	}

	sort.Ints(order)
	toolCalls := make([]tool.Call, 0, len(order))
	for _, idx := range order {
		a := slots[idx]
		id := a.id
		if id == "" {
			id = tool.NewCallID()
		}
		toolCalls = append(toolCalls, tool.Call{ID: id, Name: a.name, Arguments: a.args.String()})
	}

	evolved := input.AppendAssistant(text.String(), toolCalls)

	var message *conversation.Message
	if len(evolved.Messages) > len(input.Messages) {
		message = &evolved.Messages[len(evolved.Messages)-1]
	}

	resp := &Response{
		Model:        model,
		Context:      evolved,
		Message:      message,
		Text:         text.String(),
		Usage:        usage,
		ID:           meta.ResponseID,
		FinishReason: finishReason(meta, toolCalls, streamErr),
		Err:          streamErr,
	}
	if streamErr != nil {
		logging.FromContext(ctx).Error("pipeline stream error", "error", streamErr.Error())
	}
	return resp
}

func finishReason(meta chunk.MetaData, toolCalls []tool.Call, err *llmerr.Error) FinishReason {
	switch {
	case err != nil:
		return FinishError
	case len(toolCalls) > 0:
		return FinishToolCalls
	case meta.FinishReason != "":
		return FinishReason(meta.FinishReason)
	default:
		return FinishStop
	}
}
