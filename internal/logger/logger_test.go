package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestBuild_StaticFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "warn", Service: "roulette", Component: "cli"}, &buf)

	zl.Info().Msg("dropped")
	zl.Warn().Msg("kept")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("lines=%d want 1: %s", len(lines), buf.String())
	}
	got := lines[0]
	if got["msg"] != "kept" || got["level"] != "warn" {
		t.Fatalf("unexpected record: %v", got)
	}
	if got["service"] != "roulette" || got["component"] != "cli" {
		t.Fatalf("missing static fields: %v", got)
	}
	if _, ok := got["timestamp"]; !ok {
		t.Fatalf("missing timestamp: %v", got)
	}
}

func TestSlogBridge_ContextAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "debug"}, &buf)
	l := NewSlog(&zl).With("shape", "address").WithGroup("probe")

	ctx := WithRequestID(context.Background(), "abc123")
	ctx = WithUser(ctx, "ada@example.com")
	l.InfoContext(ctx, "classified", "result", "down", "attempts", 1, "err", errors.New("refused"))

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("lines=%d want 1", len(lines))
	}
	got := lines[0]
	want := map[string]any{
		"request_id":   "abc123",
		"user":         "ada@example.com",
		"shape":        "address",
		"probe.result": "down",
		"probe.err":    "refused",
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s=%v want %v (record %v)", k, got[k], v, got)
		}
	}
	if got["probe.attempts"] != float64(1) {
		t.Fatalf("probe.attempts=%v", got["probe.attempts"])
	}
}

func TestSlogBridge_EnabledFollowsLevel(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "error"}, &buf)
	l := NewSlog(&zl)
	if l.Enabled(context.Background(), -4) {
		t.Fatal("debug should be disabled at error level")
	}
	l.Warn("nope")
	if buf.Len() != 0 {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestFromContext_NilParentDiscards(t *testing.T) {
	l := FromContext(context.Background(), nil)
	l.Info().Msg("goes nowhere")
	if id := RequestID(WithRequestID(context.Background(), "")); len(id) != 16 {
		t.Fatalf("generated id %q want 16 hex chars", id)
	}
}
