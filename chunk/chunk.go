// Package chunk defines the typed unit of output from the stream state
// machine to the caller (spec.md §4.6). It is split out from the stream
// package so that wire protocol implementations can construct chunks
// without importing the stream state machine that consumes them.
package chunk

// Kind discriminates Chunk's active fields.
type Kind string

// Chunk kinds, matching spec.md §4.6's emitted variants.
const (
	Text            Kind = "text"
	Thinking        Kind = "thinking"
	ThinkingStart   Kind = "thinking_start"
	ToolCallStart   Kind = "tool_call_start"
	ToolCallDelta   Kind = "tool_call_delta"
	Usage           Kind = "usage"
	Meta            Kind = "meta"
	Error           Kind = "error"
)

// ToolCallStartData carries the fields of a tool_call_start chunk.
type ToolCallStartData struct {
	Index int
	ID    string
	Name  string
}

// ToolCallDeltaData carries the fields of a tool_call_delta chunk. Exactly
// one of FunctionArguments or PartialJSON is populated, mirroring whichever
// wire protocol produced it (OpenAI-family vs. Anthropic).
type ToolCallDeltaData struct {
	Index             int
	ID                string
	Type              string
	FunctionName      string
	FunctionArguments string
	PartialJSON       string
}

// UsageData carries normalized token accounting.
type UsageData struct {
	Input          int
	Output         int
	Total          int
	Reasoning      int
	CacheRead      int
	CacheCreation  int
}

// MetaData carries terminal/finish-reason/response-id metadata.
type MetaData struct {
	Terminal     bool
	FinishReason string
	ResponseID   string
}

// ErrorData carries a mid-stream error event.
type ErrorData struct {
	Message string
	Type    string
	Code    string
}

// Chunk is a tagged union over Kind. Only the fields relevant to Kind are
// meaningful; the rest are zero.
type Chunk struct {
	Kind Kind

	Text string // Text, Thinking

	ToolCallStart ToolCallStartData
	ToolCallDelta ToolCallDeltaData
	Usage         UsageData
	Meta          MetaData
	Error         ErrorData
}

// NewText builds a plain text fragment chunk.
func NewText(text string) Chunk { return Chunk{Kind: Text, Text: text} }

// NewThinking builds a {thinking, text} chunk.
func NewThinking(text string) Chunk { return Chunk{Kind: Thinking, Text: text} }

// NewThinkingStart builds a {thinking_start} chunk.
func NewThinkingStart() Chunk { return Chunk{Kind: ThinkingStart} }

// NewToolCallStart builds a {tool_call_start, ...} chunk.
func NewToolCallStart(index int, id, name string) Chunk {
	return Chunk{Kind: ToolCallStart, ToolCallStart: ToolCallStartData{Index: index, ID: id, Name: name}}
}

// NewToolCallDelta builds a {tool_call_delta, ...} chunk.
func NewToolCallDelta(d ToolCallDeltaData) Chunk {
	return Chunk{Kind: ToolCallDelta, ToolCallDelta: d}
}

// NewUsage builds a {usage, ...} chunk.
func NewUsage(u UsageData) Chunk { return Chunk{Kind: Usage, Usage: u} }

// NewMeta builds a {meta, ...} chunk.
func NewMeta(m MetaData) Chunk { return Chunk{Kind: Meta, Meta: m} }

// NewError builds an {error, ...} chunk.
func NewError(message, typ, code string) Chunk {
	return Chunk{Kind: Error, Error: ErrorData{Message: message, Type: typ, Code: code}}
}
