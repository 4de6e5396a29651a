package wire

import (
	"encoding/json"
	"fmt"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/chunk"
	"github.com/ferro-labs/reqllm-go/conversation"
	"github.com/ferro-labs/reqllm-go/options"
)

// OpenAIChat implements the OpenAI Chat Completions wire protocol
// (/v1/chat/completions), spec.md §4.9.
type OpenAIChat struct{}

// Tag implements Protocol.
func (OpenAIChat) Tag() string { return "openai_chat" }

// Endpoint implements Protocol.
func (OpenAIChat) Endpoint() string { return "/v1/chat/completions" }

// Headers implements Protocol.
func (OpenAIChat) Headers(options.Options) map[string]string { return nil }

// EncodeBody implements Protocol.
func (OpenAIChat) EncodeBody(model catalog.Model, ctx conversation.Context, opts options.Options) (map[string]any, error) {
	body := map[string]any{
		"model":          model.ID,
		"messages":       encodeOpenAIChatMessages(ctx),
		"stream":         true,
		"stream_options": map[string]any{"include_usage": true},
	}
	if opts.MaxTokens != nil {
		body["max_tokens"] = *opts.MaxTokens
	}
	if opts.MaxCompletionTokens != nil {
		body["max_tokens"] = *opts.MaxCompletionTokens
	}
	if opts.Temperature != nil {
		body["temperature"] = *opts.Temperature
	}
	if opts.TopP != nil {
		body["top_p"] = *opts.TopP
	}
	if opts.Operation == options.OperationObject && opts.CompiledSchema != nil {
		body["response_format"] = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "object",
				"strict": true,
				"schema": opts.CompiledSchema.JSONSchema(),
			},
		}
	}
	if len(opts.Tools) > 0 {
		tools := make([]json.RawMessage, 0, len(opts.Tools))
		for _, t := range opts.Tools {
			raw, err := t.Schema("openai")
			if err != nil {
				return nil, err
			}
			tools = append(tools, raw)
		}
		body["tools"] = tools
	}
	if opts.ToolChoice != nil {
		body["tool_choice"] = normalizeOpenAIToolChoice(opts.ToolChoice)
	}
	return body, nil
}

// normalizeOpenAIToolChoice rewrites the generic {type:"tool", name:X} shape
// (shared across providers in Options.ToolChoice) into OpenAI's
// {type:"function", function:{name:X}}; anything else passes through.
func normalizeOpenAIToolChoice(tc any) any {
	m, ok := tc.(map[string]any)
	if !ok {
		return tc
	}
	if m["type"] == "tool" {
		if name, ok := m["name"].(string); ok {
			return map[string]any{
				"type":     "function",
				"function": map[string]any{"name": name},
			}
		}
	}
	return tc
}

func encodeOpenAIChatMessages(ctx conversation.Context) []map[string]any {
	out := make([]map[string]any, 0, len(ctx.Messages))
	for _, m := range ctx.Messages {
		w := map[string]any{"role": string(m.Role)}
		if m.Name != "" {
			w["name"] = m.Name
		}
		if m.Role == conversation.RoleTool {
			w["tool_call_id"] = m.ToolCallID
		}
		if len(m.ToolCalls) > 0 {
			calls := make([]map[string]any, 0, len(m.ToolCalls))
			for _, tc := range m.ToolCalls {
				calls = append(calls, map[string]any{
					"id":   tc.ID,
					"type": "function",
					"function": map[string]any{
						"name":      tc.Name,
						"arguments": tc.Arguments,
					},
				})
			}
			w["tool_calls"] = calls
		}
		w["content"] = encodeOpenAIContent(m.Content)
		out = append(out, w)
	}
	return out
}

// encodeOpenAIContent renders a single text part as a bare string (the
// common case), and anything multi-part as an array of {type, ...} parts.
func encodeOpenAIContent(parts []conversation.Part) any {
	if len(parts) == 1 && parts[0].Kind == conversation.PartText {
		return parts[0].Text
	}
	if len(parts) == 0 {
		return ""
	}
	out := make([]map[string]any, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case conversation.PartText:
			out = append(out, map[string]any{"type": "text", "text": p.Text})
		case conversation.PartImageURL:
			out = append(out, map[string]any{
				"type":      "image_url",
				"image_url": map[string]any{"url": p.ImageURL},
			})
		case conversation.PartImage:
			out = append(out, map[string]any{
				"type": "image_url",
				"image_url": map[string]any{
					"url": fmt.Sprintf("data:%s;base64,%s", p.ImageMediaType, base64Encode(p.ImageData)),
				},
			})
		}
	}
	return out
}

// Decode implements Protocol.
func (OpenAIChat) Decode(event Event, _ catalog.Model) ([]chunk.Chunk, error) {
	if string(event.Data) == doneSentinel {
		return []chunk.Chunk{terminalChunk()}, nil
	}

	var raw struct {
		Error *struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
		Choices []struct {
			Delta struct {
				Content   string `json:"content"`
				ToolCalls []struct {
					Index    int    `json:"index"`
					ID       string `json:"id"`
					Type     string `json:"type"`
					Function struct {
						Name      string `json:"name"`
						Arguments string `json:"arguments"`
					} `json:"function"`
				} `json:"tool_calls"`
			} `json:"delta"`
		} `json:"choices"`
		Usage *struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
			CompletionTokensDetails *struct {
				ReasoningTokens int `json:"reasoning_tokens"`
			} `json:"completion_tokens_details"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(event.Data, &raw); err != nil {
		return []chunk.Chunk{chunk.NewError("invalid SSE event JSON", "decode_error", "")}, nil
	}

	if raw.Error != nil {
		return []chunk.Chunk{chunk.NewError(raw.Error.Message, raw.Error.Type, raw.Error.Code)}, nil
	}

	var out []chunk.Chunk
	if len(raw.Choices) > 0 {
		delta := raw.Choices[0].Delta
		if delta.Content != "" {
			out = append(out, chunk.NewText(delta.Content))
		}
		for _, tc := range delta.ToolCalls {
			out = append(out, chunk.NewToolCallDelta(chunk.ToolCallDeltaData{
				Index:             tc.Index,
				ID:                tc.ID,
				Type:              tc.Type,
				FunctionName:      tc.Function.Name,
				FunctionArguments: tc.Function.Arguments,
			}))
		}
	}
	if raw.Usage != nil {
		u := chunk.UsageData{
			Input:  raw.Usage.PromptTokens,
			Output: raw.Usage.CompletionTokens,
			Total:  raw.Usage.TotalTokens,
		}
		if raw.Usage.CompletionTokensDetails != nil {
			u.Reasoning = raw.Usage.CompletionTokensDetails.ReasoningTokens
		}
		out = append(out, chunk.NewUsage(u))
	}
	return out, nil
}
