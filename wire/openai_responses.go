package wire

import (
	"encoding/json"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/chunk"
	"github.com/ferro-labs/reqllm-go/conversation"
	"github.com/ferro-labs/reqllm-go/options"
)

// OpenAIResponses implements the OpenAI Responses wire protocol
// (/v1/responses), spec.md §4.9.
type OpenAIResponses struct{}

// Tag implements Protocol.
func (OpenAIResponses) Tag() string { return "openai_responses" }

// Endpoint implements Protocol.
func (OpenAIResponses) Endpoint() string { return "/v1/responses" }

// Headers implements Protocol.
func (OpenAIResponses) Headers(options.Options) map[string]string { return nil }

// EncodeBody implements Protocol.
func (OpenAIResponses) EncodeBody(model catalog.Model, ctx conversation.Context, opts options.Options) (map[string]any, error) {
	body := map[string]any{
		"model":  model.ID,
		"input":  encodeResponsesInput(ctx),
		"stream": true,
	}
	if opts.MaxCompletionTokens != nil {
		body["max_output_tokens"] = *opts.MaxCompletionTokens
	} else if opts.MaxOutputTokens != nil {
		body["max_output_tokens"] = *opts.MaxOutputTokens
	} else if opts.MaxTokens != nil {
		body["max_output_tokens"] = *opts.MaxTokens
	}
	if opts.ReasoningEffort != "" {
		body["reasoning"] = map[string]any{"effort": string(opts.ReasoningEffort)}
	}
	if opts.Operation == options.OperationObject && opts.CompiledSchema != nil {
		body["text"] = map[string]any{
			"format": map[string]any{
				"type":   "json_schema",
				"name":   "object",
				"strict": true,
				"schema": opts.CompiledSchema.JSONSchema(),
			},
		}
	}
	return body, nil
}

func encodeResponsesInput(ctx conversation.Context) []map[string]any {
	out := make([]map[string]any, 0, len(ctx.Messages))
	for _, m := range ctx.Messages {
		role := string(m.Role)
		partType := "input_text"
		if m.Role == conversation.RoleSystem {
			role = "developer"
		}
		if m.Role == conversation.RoleAssistant {
			partType = "output_text"
		}
		out = append(out, map[string]any{
			"role":    role,
			"content": []map[string]any{{"type": partType, "text": m.Text()}},
		})
	}
	return out
}

// Decode implements Protocol.
func (OpenAIResponses) Decode(event Event, _ catalog.Model) ([]chunk.Chunk, error) {
	if string(event.Data) == doneSentinel {
		return []chunk.Chunk{terminalChunk()}, nil
	}

	var raw struct {
		Type  string `json:"type"`
		Delta string `json:"delta"`
		Item  struct {
			Type string `json:"type"`
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"item"`
		Response struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			Usage  *responsesUsage `json:"usage"`
		} `json:"response"`
	}
	if err := json.Unmarshal(event.Data, &raw); err != nil {
		return []chunk.Chunk{chunk.NewError("invalid SSE event JSON", "decode_error", "")}, nil
	}

	switch raw.Type {
	case "response.output_text.delta":
		return []chunk.Chunk{chunk.NewText(raw.Delta)}, nil
	case "response.reasoning.delta":
		return []chunk.Chunk{chunk.NewThinking(raw.Delta)}, nil
	case "response.usage", "response.completed.usage":
		if raw.Response.Usage != nil {
			return []chunk.Chunk{raw.Response.Usage.chunk()}, nil
		}
		return nil, nil
	case "response.output_item.added":
		if raw.Item.Type == "function_call" {
			return []chunk.Chunk{chunk.NewToolCallStart(0, raw.Item.ID, raw.Item.Name)}, nil
		}
		return nil, nil
	case "response.function_call_arguments.delta":
		return []chunk.Chunk{chunk.NewToolCallDelta(chunk.ToolCallDeltaData{PartialJSON: raw.Delta})}, nil
	case "response.completed", "response.incomplete":
		out := []chunk.Chunk{chunk.NewMeta(chunk.MetaData{
			Terminal:     true,
			FinishReason: responsesFinishReason(raw.Type),
			ResponseID:   raw.Response.ID,
		})}
		if raw.Response.Usage != nil {
			out = append(out, raw.Response.Usage.chunk())
		}
		return out, nil
	default:
		return nil, nil
	}
}

func responsesFinishReason(eventType string) string {
	if eventType == "response.incomplete" {
		return "length"
	}
	return "stop"
}

type responsesUsage struct {
	InputTokens         int `json:"input_tokens"`
	OutputTokens        int `json:"output_tokens"`
	TotalTokens         int `json:"total_tokens"`
	OutputTokensDetails *struct {
		ReasoningTokens int `json:"reasoning_tokens"`
	} `json:"output_tokens_details"`
}

func (u responsesUsage) chunk() chunk.Chunk {
	data := chunk.UsageData{Input: u.InputTokens, Output: u.OutputTokens, Total: u.TotalTokens}
	if u.OutputTokensDetails != nil {
		data.Reasoning = u.OutputTokensDetails.ReasoningTokens
	}
	return chunk.NewUsage(data)
}
