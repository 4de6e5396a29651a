package fixture

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/wire"
)

func TestSanitizePath(t *testing.T) {
	got := Path("/tmp/fixtures", "OpenAI", "GPT-4o Mini!", "Basic Text")
	want := filepath.Join("/tmp/fixtures", "openai", "gpt_4o_mini", "basic_text.json")
	if got != want {
		t.Fatalf("Path() = %q, want %q", got, want)
	}
}

func TestRedactHeaders(t *testing.T) {
	out := RedactHeaders(map[string]string{"Authorization": "Bearer sk-123", "Content-Type": "application/json"})
	if out["Authorization"] != "[REDACTED]" {
		t.Fatalf("expected Authorization redacted, got %q", out["Authorization"])
	}
	if out["Content-Type"] != "application/json" {
		t.Fatalf("expected Content-Type untouched, got %q", out["Content-Type"])
	}
}

func TestRecorderFlushAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "basic.json")

	r := NewRecorder("openai", "gpt-4o-mini", "Hello!", path, "POST", "https://api.openai.com/v1/chat/completions",
		map[string]string{"Authorization": "Bearer sk-test"}, []byte(`{"model":"gpt-4o-mini"}`))
	r.SetStatus(200)
	r.SetHeaders(map[string]string{"Content-Type": "text/event-stream"})
	r.AppendChunk([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\n\n"))
	r.AppendChunk([]byte("data: [DONE]\n\n"))

	if err := r.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected fixture file written: %v", err)
	}

	rec, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Request.Headers["Authorization"] != "[REDACTED]" {
		t.Fatalf("expected redacted auth header in loaded record, got %q", rec.Request.Headers["Authorization"])
	}
	if len(rec.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(rec.Chunks))
	}
}

func TestLoadMissingFixture(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected an error for a missing fixture file")
	}
	if _, ok := err.(*ErrMissing); !ok {
		t.Fatalf("expected *ErrMissing, got %T", err)
	}
}

func TestPlayerReplaysThroughWireDecode(t *testing.T) {
	rec := &Record{
		Chunks: []string{
			b64(t, "data: {\"choices\":[{\"delta\":{\"content\":\"hel\"}}]}\n\n"),
			b64(t, "data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\ndata: [DONE]\n\n"),
		},
	}
	p := NewPlayer(rec, wire.OpenAIChat{}, catalog.Model{})

	var text string
	var terminal bool
	for {
		chunks, ok, err := p.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		for _, c := range chunks {
			if c.Kind == "text" {
				text += c.Text
			}
			if c.Kind == "meta" && c.Meta.Terminal {
				terminal = true
			}
		}
	}
	if text != "hello" {
		t.Fatalf("expected concatenated text %q, got %q", "hello", text)
	}
	if !terminal {
		t.Fatal("expected a terminal meta chunk from [DONE]")
	}
}

func TestPlayerEmptyChunksHaltsImmediately(t *testing.T) {
	p := NewPlayer(&Record{}, wire.OpenAIChat{}, catalog.Model{})
	_, ok, err := p.Next()
	if err != nil || ok {
		t.Fatalf("expected immediate halt for empty chunks, got ok=%v err=%v", ok, err)
	}
}

func b64(t *testing.T, s string) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString([]byte(s))
}
