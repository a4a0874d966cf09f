package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func decodeLast(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var rec map[string]interface{}
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &rec); err != nil {
		t.Fatalf("decode log record: %v (%q)", err, buf.String())
	}
	return rec
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{
		Level:  "invalid-level",
		Format: "json",
		Output: "stdout",
	}
	l := New(cfg, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	l := NewFromEnv("env-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if !l.Enabled(zerolog.DebugLevel) {
		t.Error("expected debug to be enabled from LOG_LEVEL")
	}
}

func TestWithStep(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "debug", "engine").WithStep("count-1", "t-1")
	l.Info("reduced", Fields(FieldTraversers, 3))

	rec := decodeLast(t, &buf)
	if rec[FieldStepID] != "count-1" {
		t.Errorf("expected step_id=count-1, got %v", rec[FieldStepID])
	}
	if rec[FieldTraversalID] != "t-1" {
		t.Errorf("expected traversal_id=t-1, got %v", rec[FieldTraversalID])
	}
	if rec[FieldTraversers] != float64(3) {
		t.Errorf("expected traversers=3, got %v", rec[FieldTraversers])
	}
	if rec[FieldService] != "engine" {
		t.Errorf("expected service=engine, got %v", rec[FieldService])
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "info", "engine")
	ctx := ContextWithRunID(context.Background(), "run-42")
	ctx = ContextWithTraceID(ctx, "abc123")

	l.WithContext(ctx).Info("stage done")

	rec := decodeLast(t, &buf)
	if rec[FieldRunID] != "run-42" {
		t.Errorf("expected run_id=run-42, got %v", rec[FieldRunID])
	}
	if rec[FieldTraceID] != "abc123" {
		t.Errorf("expected trace_id=abc123, got %v", rec[FieldTraceID])
	}
}

func TestWithContextEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, "info", "engine").WithContext(context.Background()).Info("x")

	rec := decodeLast(t, &buf)
	if _, ok := rec[FieldRunID]; ok {
		t.Error("did not expect run_id without a context value")
	}
}

func TestWithComponent(t *testing.T) {
	l := NewDefault("test")
	cl := l.WithComponent("barrier")
	if cl.service != "test" {
		t.Errorf("service should be preserved, got %q", cl.service)
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "info", "engine").
		WithFields(map[string]interface{}{FieldStage: "reduce"}).
		WithError(fmt.Errorf("boom"))
	l.Error("stage failed")

	rec := decodeLast(t, &buf)
	if rec[FieldStage] != "reduce" {
		t.Errorf("expected stage=reduce, got %v", rec[FieldStage])
	}
	if rec[FieldError] != "boom" {
		t.Errorf("expected error=boom, got %v", rec[FieldError])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "warn", "engine")
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn record, got %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	// Must not panic.
	l.Info("discarded", Fields("a", 1))
	l.WithStep("s", "t").Error("discarded")
}

func TestInit(t *testing.T) {
	Init(Config{Level: "info", Format: "json", Output: "stdout"})
	if GetGlobalLogger() == nil {
		t.Fatal("expected global logger to be set after Init")
	}
}

func TestGetGlobalLoggerDefault(t *testing.T) {
	SetGlobalLogger(nil)
	if GetGlobalLogger() == nil {
		t.Fatal("expected default global logger to be created")
	}
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewDefault("custom")
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	SetGlobalLogger(NewWriter(&buf, "debug", "pkg"))
	defer SetGlobalLogger(nil)

	Debug("debug msg")
	Info("info msg")
	Warn("warn msg")
	Error("error msg")
	WithComponent("computer").Info("tagged")

	if got := strings.Count(buf.String(), "\n"); got != 5 {
		t.Errorf("expected 5 records, got %d", got)
	}
	rec := decodeLast(t, &buf)
	if rec[FieldComponent] != "computer" {
		t.Errorf("expected component=computer, got %v", rec[FieldComponent])
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output 'stdout', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled by default")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"pretty", Config{Level: "debug", Format: "pretty"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("registered")
	Register("memory", l)
	defer Unregister("memory")

	if Get("memory") != l {
		t.Error("expected registered logger back")
	}
	if names := Registered(); len(names) != 1 || names[0] != "memory" {
		t.Errorf("expected [memory], got %v", names)
	}

	Unregister("memory")
	if Get("memory") == l {
		t.Error("expected fallback after unregister")
	}
}

func TestGetUnregistered(t *testing.T) {
	if Get("never-registered") == nil {
		t.Fatal("expected fallback logger")
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if len(m) != 2 {
		t.Fatalf("expected 2 fields, got %d: %v", len(m), m)
	}
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields %v", m)
	}
}

func TestErrorFields(t *testing.T) {
	m := ErrorFields("save", fmt.Errorf("disk full"))
	if m[FieldOperation] != "save" || m[FieldError] != "disk full" {
		t.Errorf("unexpected fields %v", m)
	}
}

func TestStageFields(t *testing.T) {
	m := StageFields("map", 4, 1500*time.Millisecond)
	if m[FieldStage] != "map" || m[FieldPartition] != 4 || m[FieldDuration] != int64(1500) {
		t.Errorf("unexpected fields %v", m)
	}
}

func TestMergeWithError(t *testing.T) {
	m := MergeWithError(nil, fmt.Errorf("x"))
	if m[FieldError] != "x" {
		t.Errorf("expected error=x, got %v", m[FieldError])
	}
}
