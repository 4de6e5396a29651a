package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestFromContextAttachesProviderAndModel(t *testing.T) {
	var buf bytes.Buffer
	orig := Logger
	defer func() { Logger = orig }()
	Logger = slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithModel(context.Background(), "openai", "gpt-4o-mini")
	FromContext(ctx).Info("request start")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected valid JSON log line, got %q: %v", buf.String(), err)
	}
	if line["provider"] != "openai" {
		t.Fatalf("expected provider=openai, got %+v", line["provider"])
	}
	if line["model"] != "gpt-4o-mini" {
		t.Fatalf("expected model=gpt-4o-mini, got %+v", line["model"])
	}
}

func TestFromContextWithoutModelOmitsFields(t *testing.T) {
	var buf bytes.Buffer
	orig := Logger
	defer func() { Logger = orig }()
	Logger = slog.New(slog.NewJSONHandler(&buf, nil))

	FromContext(context.Background()).Info("request start")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected valid JSON log line, got %q: %v", buf.String(), err)
	}
	if _, ok := line["provider"]; ok {
		t.Fatalf("did not expect a provider field, got %+v", line)
	}
}

func TestFromContextCombinesTraceIDAndModel(t *testing.T) {
	var buf bytes.Buffer
	orig := Logger
	defer func() { Logger = orig }()
	Logger = slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithTraceID(context.Background(), "trace-123")
	ctx = WithModel(ctx, "anthropic", "claude-3-5-haiku-20241022")
	FromContext(ctx).Info("request start")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected valid JSON log line, got %q: %v", buf.String(), err)
	}
	if line["trace_id"] != "trace-123" {
		t.Fatalf("expected trace_id=trace-123, got %+v", line["trace_id"])
	}
	if line["provider"] != "anthropic" {
		t.Fatalf("expected provider=anthropic, got %+v", line["provider"])
	}
}
