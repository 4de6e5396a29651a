// Package conversation models the provider-agnostic request context: an
// ordered list of messages built from tagged content parts (spec.md §3
// "Context"). It is the in-memory shape every wire protocol projects from;
// the per-provider JSON encodings live in the wire package.
//
// The tagged-union-via-Kind-enum-plus-typed-fields idiom here is the same
// one the teacher uses for Message.MarshalJSON/UnmarshalJSON (a single
// struct whose active fields are picked by a discriminator), generalized
// from "text vs. content-part array" to the full part-kind set the
// specification requires (text, thinking, image, image_url, file).
package conversation

import (
	"fmt"

	"github.com/ferro-labs/reqllm-go/llmerr"
	"github.com/ferro-labs/reqllm-go/tool"
)

// Role identifies who authored a Message.
type Role string

// Roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// PartKind discriminates Part's active field.
type PartKind string

// Part kinds.
const (
	PartText     PartKind = "text"
	PartThinking PartKind = "thinking"
	PartImage    PartKind = "image"
	PartImageURL PartKind = "image_url"
	PartFile     PartKind = "file"
)

// Part is one element of a Message's content, a tagged union over PartKind.
type Part struct {
	Kind PartKind

	// Text is valid for PartText and PartThinking.
	Text string

	// Image fields are valid for PartImage: raw bytes plus a media type
	// (e.g. "image/png").
	ImageData      []byte
	ImageMediaType string

	// ImageURL is valid for PartImageURL.
	ImageURL string

	// File fields are valid for PartFile.
	FileData      []byte
	FileName      string
	FileMediaType string
}

// TextPart builds a plain text Part.
func TextPart(text string) Part { return Part{Kind: PartText, Text: text} }

// ThinkingPart builds a thinking/reasoning-trace Part.
func ThinkingPart(text string) Part { return Part{Kind: PartThinking, Text: text} }

// ImagePart builds an inline-binary image Part.
func ImagePart(data []byte, mediaType string) Part {
	return Part{Kind: PartImage, ImageData: data, ImageMediaType: mediaType}
}

// ImageURLPart builds a remote-URL image Part.
func ImageURLPart(url string) Part { return Part{Kind: PartImageURL, ImageURL: url} }

// FilePart builds an inline-binary file Part.
func FilePart(data []byte, filename, mediaType string) Part {
	return Part{Kind: PartFile, FileData: data, FileName: filename, FileMediaType: mediaType}
}

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content []Part

	// ToolCalls is populated on assistant messages that invoke tools.
	ToolCalls []tool.Call

	// ToolCallID and Name are populated on role=tool messages: the id of
	// the call this message answers, and (optionally) the tool's name.
	ToolCallID string
	Name       string
}

// Text returns the concatenation of every PartText part's Text, the common
// case of a plain-text message.
func (m Message) Text() string {
	var s string
	for _, p := range m.Content {
		if p.Kind == PartText {
			s += p.Text
		}
	}
	return s
}

// UserMessage builds a single-part plain-text user message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: []Part{TextPart(text)}}
}

// SystemMessage builds a single-part plain-text system message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: []Part{TextPart(text)}}
}

// Context is the ordered message list threaded through the pipeline.
type Context struct {
	Messages []Message
}

// New normalizes one of the accepted input shapes (spec.md §4.2) into a
// Context: a plain string becomes a single user message; a Message or
// []Message is wrapped/used as-is; a Context passes through; a loose
// map[string]any with "role"/"content" string keys becomes a single message.
// If systemPrompt is non-empty and the resulting context has no system
// message, one is prepended.
func New(input any, systemPrompt string) (Context, error) {
	var ctx Context

	switch v := input.(type) {
	case string:
		ctx = Context{Messages: []Message{UserMessage(v)}}
	case Message:
		ctx = Context{Messages: []Message{v}}
	case []Message:
		ctx = Context{Messages: append([]Message(nil), v...)}
	case Context:
		ctx = Context{Messages: append([]Message(nil), v.Messages...)}
	case map[string]any:
		m, err := messageFromMap(v)
		if err != nil {
			return Context{}, err
		}
		ctx = Context{Messages: []Message{m}}
	default:
		return Context{}, llmerr.Newf(llmerr.InvalidParameter, "conversation: unsupported input type %T", input)
	}

	if systemPrompt != "" && !ctx.hasSystemMessage() {
		ctx.Messages = append([]Message{SystemMessage(systemPrompt)}, ctx.Messages...)
	}

	if err := ctx.Validate(); err != nil {
		return Context{}, err
	}
	return ctx, nil
}

func messageFromMap(v map[string]any) (Message, error) {
	role, _ := v["role"].(string)
	content, _ := v["content"].(string)
	if role == "" {
		return Message{}, llmerr.New(llmerr.InvalidParameter, "conversation: map input requires a non-empty \"role\"")
	}
	return Message{Role: Role(role), Content: []Part{TextPart(content)}}, nil
}

func (c Context) hasSystemMessage() bool {
	for _, m := range c.Messages {
		if m.Role == RoleSystem {
			return true
		}
	}
	return false
}

// Validate enforces the Context invariants from spec.md §3: at most one
// system message, and every tool message carries a non-empty ToolCallID.
func (c Context) Validate() error {
	systemCount := 0
	for i, m := range c.Messages {
		if m.Role == RoleSystem {
			systemCount++
		}
		if m.Role == RoleTool && m.ToolCallID == "" {
			return llmerr.Newf(llmerr.ValidationError, "conversation: message %d has role=tool but no tool_call_id", i)
		}
	}
	if systemCount > 1 {
		return llmerr.New(llmerr.ValidationError, "conversation: context carries more than one system message")
	}
	return nil
}

// AppendAssistant returns a copy of c with an assistant message appended,
// built from accumulated text and tool calls. It omits the message entirely
// when both text and toolCalls are empty (spec.md §4.10 join_stream).
func (c Context) AppendAssistant(text string, toolCalls []tool.Call) Context {
	if text == "" && len(toolCalls) == 0 {
		return c
	}
	msg := Message{Role: RoleAssistant}
	if text != "" {
		msg.Content = []Part{TextPart(text)}
	}
	msg.ToolCalls = toolCalls
	out := Context{Messages: append(append([]Message(nil), c.Messages...), msg)}
	return out
}

// String renders a short human-readable summary, useful in logs.
func (c Context) String() string {
	return fmt.Sprintf("conversation.Context{%d messages}", len(c.Messages))
}
