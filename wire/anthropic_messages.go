package wire

import (
	"encoding/json"
	"strings"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/chunk"
	"github.com/ferro-labs/reqllm-go/conversation"
	"github.com/ferro-labs/reqllm-go/options"
)

const anthropicDefaultMaxTokens = 1024

// AnthropicMessages implements the Anthropic Messages wire protocol
// (/v1/messages), spec.md §4.9.
type AnthropicMessages struct{}

// Tag implements Protocol.
func (AnthropicMessages) Tag() string { return "anthropic_messages" }

// Endpoint implements Protocol.
func (AnthropicMessages) Endpoint() string { return "/v1/messages" }

// Headers implements Protocol.
func (AnthropicMessages) Headers(opts options.Options) map[string]string {
	h := map[string]string{
		"anthropic-version": "2023-06-01",
		"content-type":       "application/json",
	}
	var beta []string
	if opts.Thinking != nil || opts.ReasoningEffort != "" {
		beta = append(beta, "interleaved-thinking-2025-05-14")
	}
	if opts.AnthropicPromptCache {
		beta = append(beta, "prompt-caching-2024-07-31")
	}
	if len(beta) > 0 {
		h["anthropic-beta"] = strings.Join(beta, ",")
	}
	return h
}

// EncodeBody implements Protocol.
func (AnthropicMessages) EncodeBody(model catalog.Model, ctx conversation.Context, opts options.Options) (map[string]any, error) {
	maxTokens := anthropicDefaultMaxTokens
	if opts.MaxTokens != nil {
		maxTokens = *opts.MaxTokens
	}

	systemText, messages := splitAnthropicSystem(ctx)

	body := map[string]any{
		"model":     model.ID,
		"messages":  messages,
		"stream":    true,
		"max_tokens": maxTokens,
	}
	if systemText != "" {
		if opts.AnthropicPromptCache {
			cc := map[string]any{"type": "ephemeral"}
			if opts.AnthropicPromptCacheTTL != "" {
				cc["ttl"] = opts.AnthropicPromptCacheTTL
			}
			body["system"] = []map[string]any{
				{"type": "text", "text": systemText, "cache_control": cc},
			}
		} else {
			body["system"] = systemText
		}
	}

	thinkingEnabled := opts.Thinking != nil && opts.Thinking.Enabled
	if !thinkingEnabled && opts.Temperature != nil {
		body["temperature"] = *opts.Temperature
	}
	if thinkingEnabled {
		budget := 0
		if opts.Thinking.BudgetTokens != nil {
			budget = *opts.Thinking.BudgetTokens
		}
		body["thinking"] = map[string]any{"type": "enabled", "budget_tokens": budget}
	}

	if len(opts.Tools) > 0 {
		tools := make([]json.RawMessage, 0, len(opts.Tools))
		for _, t := range opts.Tools {
			raw, err := t.Schema("anthropic")
			if err != nil {
				return nil, err
			}
			tools = append(tools, raw)
		}
		body["tools"] = tools
	}
	if opts.ToolChoice != nil {
		body["tool_choice"] = opts.ToolChoice
	}

	return body, nil
}

func splitAnthropicSystem(ctx conversation.Context) (string, []map[string]any) {
	var system strings.Builder
	messages := make([]map[string]any, 0, len(ctx.Messages))
	for _, m := range ctx.Messages {
		switch m.Role {
		case conversation.RoleSystem:
			system.WriteString(m.Text())
		case conversation.RoleTool:
			messages = append(messages, map[string]any{
				"role": "user",
				"content": []map[string]any{
					{"type": "tool_result", "tool_use_id": m.ToolCallID, "content": m.Text()},
				},
			})
		case conversation.RoleAssistant:
			messages = append(messages, encodeAnthropicAssistant(m))
		default:
			messages = append(messages, map[string]any{"role": string(m.Role), "content": m.Text()})
		}
	}
	return system.String(), messages
}

func encodeAnthropicAssistant(m conversation.Message) map[string]any {
	if len(m.ToolCalls) == 0 {
		return map[string]any{"role": "assistant", "content": m.Text()}
	}
	var blocks []map[string]any
	if text := m.Text(); text != "" {
		blocks = append(blocks, map[string]any{"type": "text", "text": text})
	}
	for _, tc := range m.ToolCalls {
		var input map[string]any
		_ = json.Unmarshal([]byte(tc.Arguments), &input)
		blocks = append(blocks, map[string]any{
			"type":  "tool_use",
			"id":    tc.ID,
			"name":  tc.Name,
			"input": input,
		})
	}
	return map[string]any{"role": "assistant", "content": blocks}
}

// Decode implements Protocol.
func (AnthropicMessages) Decode(event Event, _ catalog.Model) ([]chunk.Chunk, error) {
	var raw struct {
		Type  string `json:"type"`
		Index int    `json:"index"`
		Delta struct {
			Type        string `json:"type"`
			Text        string `json:"text"`
			Thinking    string `json:"thinking"`
			PartialJSON string `json:"partial_json"`
		} `json:"delta"`
		ContentBlock struct {
			Type string `json:"type"`
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"content_block"`
		Usage *struct {
			InputTokens              int `json:"input_tokens"`
			OutputTokens             int `json:"output_tokens"`
			CacheReadInputTokens     int `json:"cache_read_input_tokens"`
			CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(event.Data, &raw); err != nil {
		return []chunk.Chunk{chunk.NewError("invalid SSE event JSON", "decode_error", "")}, nil
	}

	switch raw.Type {
	case "message_stop":
		return []chunk.Chunk{terminalChunk()}, nil
	case "message_delta":
		if raw.Usage != nil {
			return []chunk.Chunk{chunk.NewUsage(chunk.UsageData{
				Input:         raw.Usage.InputTokens,
				Output:        raw.Usage.OutputTokens,
				Total:         raw.Usage.InputTokens + raw.Usage.OutputTokens,
				CacheRead:     raw.Usage.CacheReadInputTokens,
				CacheCreation: raw.Usage.CacheCreationInputTokens,
			})}, nil
		}
		return nil, nil
	case "content_block_delta":
		switch raw.Delta.Type {
		case "text_delta":
			return []chunk.Chunk{chunk.NewText(raw.Delta.Text)}, nil
		case "thinking_delta":
			text := raw.Delta.Thinking
			if text == "" {
				text = raw.Delta.Text
			}
			return []chunk.Chunk{chunk.NewThinking(text)}, nil
		case "input_json_delta":
			return []chunk.Chunk{chunk.NewToolCallDelta(chunk.ToolCallDeltaData{
				Index:       raw.Index,
				PartialJSON: raw.Delta.PartialJSON,
			})}, nil
		default:
			return nil, nil
		}
	case "content_block_start":
		switch raw.ContentBlock.Type {
		case "tool_use":
			return []chunk.Chunk{chunk.NewToolCallStart(raw.Index, raw.ContentBlock.ID, raw.ContentBlock.Name)}, nil
		case "thinking":
			return []chunk.Chunk{chunk.NewThinkingStart()}, nil
		default:
			return nil, nil
		}
	default:
		return nil, nil
	}
}
