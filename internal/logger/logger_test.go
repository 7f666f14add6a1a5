package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	base := New(&Config{Level: "debug", Format: "json", Output: &buf, ServiceName: "memerator-test"})

	ctx := base.WithContext(context.Background())
	ctx = SetRequestID(ctx, "req-1")
	ctx = SetUserID(ctx, "user-1")

	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("expected request id req-1, got %q", got)
	}
	if got := GetUserID(ctx); got != "user-1" {
		t.Errorf("expected user id user-1, got %q", got)
	}

	CtxInfo(ctx, "hello %s", "world")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "hello world" {
		t.Errorf("unexpected message: %v", entry["message"])
	}
	if entry["service"] != "memerator-test" {
		t.Errorf("unexpected service: %v", entry["service"])
	}
	if entry[FieldRequestID] != "req-1" || entry[FieldUserID] != "user-1" {
		t.Errorf("context fields missing from entry: %v", entry)
	}
}

func TestEntryWithMetricFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := New(&Config{Level: "info", Format: "json", Output: &buf}).WithContext(context.Background())

	With(Fields{FieldDurationMs: int64(12)}).WithCount(3).Info(ctx, "done")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry[FieldDurationMs] != float64(12) {
		t.Errorf("expected duration_ms 12, got %v", entry[FieldDurationMs])
	}
	if entry[FieldCount] != float64(3) {
		t.Errorf("expected count 3, got %v", entry[FieldCount])
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) != Default() {
		t.Error("expected default logger when context carries none")
	}

	prev := Default()
	defer SetDefault(prev)

	replacement := New(&Config{Level: "error", Output: &bytes.Buffer{}})
	SetDefault(replacement)
	SetDefault(nil)
	if FromContext(context.Background()) != replacement {
		t.Error("SetDefault(nil) must keep the current default")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_MAX_SIZE", "not-a-number")
	t.Setenv("LOG_COMPRESS", "false")

	cfg := ConfigFromEnv()
	if cfg.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Level)
	}
	if cfg.Format != "json" || cfg.Environment != "local" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.File.MaxSizeMB != 100 {
		t.Errorf("MaxSizeMB = %d, want fallback 100", cfg.File.MaxSizeMB)
	}
	if cfg.File.Compress {
		t.Error("Compress = true, want false")
	}
}

func TestTextFormatReportsShortCaller(t *testing.T) {
	var buf bytes.Buffer
	New(&Config{Level: "info", Format: "text", Output: &buf}).Info("plain line")

	out := buf.String()
	if !strings.Contains(out, "logger_test.go:") {
		t.Errorf("caller not shortened: %q", out)
	}
	if strings.Contains(out, "/internal/logger/") {
		t.Errorf("caller carries full path: %q", out)
	}
}

func TestLookup(t *testing.T) {
	attached := New(&Config{Level: "info", Output: &bytes.Buffer{}})

	tests := []struct {
		name string
		ctx  context.Context
		want *Logger
		ok   bool
	}{
		{name: "nil context", ctx: nil},
		{name: "no logger", ctx: context.Background()},
		{name: "attached", ctx: attached.WithContext(context.Background()), want: attached, ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Lookup(tt.ctx)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Lookup() = (%p, %v), want (%p, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}

	if FromContext(context.Background()) != Default() {
		t.Error("FromContext without a logger should return Default")
	}
}
