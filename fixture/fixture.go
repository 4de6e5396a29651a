// Package fixture implements the record/replay subsystem of spec.md §4.8:
// capturing raw SSE bytes from a live exchange to a JSON file, and replaying
// them later through the same SSE parser and wire decoder a live run uses,
// so tests reproduce end-to-end behavior without network calls.
package fixture

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/chunk"
	"github.com/ferro-labs/reqllm-go/sse"
	"github.com/ferro-labs/reqllm-go/wire"
)

// ModeEnvVar is the environment variable selecting process-wide fixture
// mode (spec.md §6).
const ModeEnvVar = "REQ_LLM_NEXT_FIXTURES_MODE"

// Mode values.
const (
	ModeRecord = "record"
	ModeReplay = "replay"
)

// Mode reads ModeEnvVar fresh on every call rather than latching an
// init-time atomic, so a test can flip it between requests (spec.md §9
// Design Note: "tests must be able to override per request via the fixture
// opt" — reading live keeps that override meaningful even across a single
// process's test run).
func Mode() string {
	if os.Getenv(ModeEnvVar) == ModeRecord {
		return ModeRecord
	}
	return ModeReplay
}

var sanitizeRE = regexp.MustCompile(`[^a-z0-9]+`)

// sanitize lowercases s and collapses runs of non-[a-z0-9] characters into
// a single underscore, trimming leading/trailing underscores.
func sanitize(s string) string {
	s = strings.ToLower(s)
	s = sanitizeRE.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// Path builds the storage path for a fixture: <root>/<provider>/<sanitized
// model id>/<sanitized name>.json.
func Path(root, provider, modelID, name string) string {
	return filepath.Join(root, sanitize(provider), sanitize(modelID), sanitize(name)+".json")
}

// RequestRecord captures the outbound HTTP exchange, with auth headers
// redacted.
type RequestRecord struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	BodyB64 string            `json:"body_b64"`
	BodyJSON json.RawMessage  `json:"body_canonical_json,omitempty"`
}

// ResponseRecord captures the response status line and headers.
type ResponseRecord struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
}

// Record is the on-disk fixture envelope (spec.md §3 "Fixture record").
type Record struct {
	Provider    string         `json:"provider"`
	ModelID     string         `json:"model_id"`
	Prompt      string         `json:"prompt"`
	CapturedAt  time.Time      `json:"captured_at"`
	Request     RequestRecord  `json:"request"`
	Response    ResponseRecord `json:"response"`
	Chunks      []string       `json:"chunks"` // base64 raw transport bytes, arrival order
}

var redactedHeaders = map[string]bool{
	"authorization": true,
	"x-api-key":     true,
}

// RedactHeaders returns a copy of headers with authorization/x-api-key
// values replaced by "[REDACTED]" (keys compared case-insensitively).
func RedactHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if redactedHeaders[strings.ToLower(k)] {
			out[k] = "[REDACTED]"
		} else {
			out[k] = v
		}
	}
	return out
}

// Recorder is a mutable accumulator owned by one stream; its lifecycle is
// bound to that stream (spec.md §3 "Recorder").
type Recorder struct {
	record Record
	chunks [][]byte
	path   string
}

// NewRecorder builds a Recorder for one request, capturing the request
// immediately with its headers passed through RedactHeaders.
func NewRecorder(provider, modelID, prompt, path string, method, url string, headers map[string]string, body []byte) *Recorder {
	r := &Recorder{path: path}
	r.record = Record{
		Provider:   provider,
		ModelID:    modelID,
		Prompt:     prompt,
		CapturedAt: time.Time{}, // stamped by the caller via SetCapturedAt; see reqllm executor
		Request: RequestRecord{
			Method:  method,
			URL:     url,
			Headers: RedactHeaders(headers),
			BodyB64: base64.StdEncoding.EncodeToString(body),
		},
	}
	var canonical map[string]any
	if json.Unmarshal(body, &canonical) == nil {
		if b, err := json.Marshal(canonical); err == nil {
			r.record.BodyJSON = b
		}
	}
	return r
}

// SetCapturedAt stamps the capture time. The caller supplies it (rather
// than the Recorder calling time.Now() itself) because workflow scripts and
// deterministic tests in this codebase are not allowed to call time.Now().
func (r *Recorder) SetCapturedAt(t time.Time) { r.record.CapturedAt = t }

// SetStatus records the response status code.
func (r *Recorder) SetStatus(code int) { r.record.Response.Status = code }

// SetHeaders records response headers, normalized to lowercase keys and
// sorted (spec.md §4.6's "headers" transition).
func (r *Recorder) SetHeaders(headers map[string]string) {
	norm := make(map[string]string, len(headers))
	for k, v := range headers {
		norm[strings.ToLower(k)] = v
	}
	r.record.Response.Headers = norm
}

// AppendChunk records one raw data event's bytes, in arrival order.
func (r *Recorder) AppendChunk(data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	r.chunks = append(r.chunks, cp)
}

// Flush writes the accumulated record to disk atomically enough for test
// use: write to a temp file in the same directory, then rename.
func (r *Recorder) Flush() error {
	r.record.Chunks = make([]string, len(r.chunks))
	for i, c := range r.chunks {
		r.record.Chunks[i] = base64.StdEncoding.EncodeToString(c)
	}

	data, err := json.MarshalIndent(r.record, "", "  ")
	if err != nil {
		return fmt.Errorf("fixture: marshal record: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("fixture: create fixture dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".fixture-*.tmp")
	if err != nil {
		return fmt.Errorf("fixture: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("fixture: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("fixture: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("fixture: rename temp file: %w", err)
	}
	return nil
}

// ErrMissing is returned by Load when the fixture file does not exist.
type ErrMissing struct{ Path string }

func (e *ErrMissing) Error() string { return fmt.Sprintf("fixture: missing fixture file %q", e.Path) }

// Load reads and parses a fixture file from disk.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ErrMissing{Path: path}
		}
		return nil, fmt.Errorf("fixture: read %q: %w", path, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("fixture: parse %q: %w", path, err)
	}
	return &rec, nil
}

// Player replays a fixture's chunks through the same SSE parser and wire
// decoder a live run uses, one fixture chunk at a time (spec.md §4.8
// Replay). An empty chunks list halts immediately (spec.md §9 Open
// Question).
type Player struct {
	record   *Record
	protocol wire.Protocol
	model    catalog.Model
	buffer   sse.Buffer
	next     int
}

// NewPlayer builds a Player over rec, decoding through protocol for model.
func NewPlayer(rec *Record, protocol wire.Protocol, model catalog.Model) *Player {
	return &Player{record: rec, protocol: protocol, model: model}
}

// Next decodes the next fixture chunk (if any) into zero or more output
// chunks. ok is false once every recorded chunk has been consumed.
func (p *Player) Next() ([]chunk.Chunk, bool, error) {
	if p.next >= len(p.record.Chunks) {
		return nil, false, nil
	}
	raw, err := base64.StdEncoding.DecodeString(p.record.Chunks[p.next])
	if err != nil {
		return nil, false, fmt.Errorf("fixture: decode chunk %d: %w", p.next, err)
	}
	p.next++

	events := p.buffer.Feed(raw)
	var out []chunk.Chunk
	for _, ev := range events {
		decoded, err := p.protocol.Decode(wire.Event{Data: ev}, p.model)
		if err != nil {
			return nil, true, err
		}
		out = append(out, decoded...)
	}
	return out, true, nil
}
