package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelDebug, Output: &buf})

	logger.Debug("hello", Asset("a-1"), AssetType("analysis"))

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "asset=a-1") {
		t.Errorf("output missing asset attribute: %q", out)
	}
	if !strings.Contains(out, "asset_type=analysis") {
		t.Errorf("output missing asset_type attribute: %q", out)
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelInfo, Output: &buf, JSON: true})

	logger.Info("imported", Account("123456789012"), Region("us-east-1"))

	out := buf.String()
	if !strings.Contains(out, `"account":"123456789012"`) {
		t.Errorf("JSON output missing account: %q", out)
	}
	if !strings.Contains(out, `"region":"us-east-1"`) {
		t.Errorf("JSON output missing region: %q", out)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelWarn, Output: &buf})

	logger.Info("should not appear")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("info message leaked through warn level: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestErr_NilError(t *testing.T) {
	attr := Err(nil)
	if attr.Key != "" {
		t.Errorf("Err(nil) should return empty attr, got key %q", attr.Key)
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelDebug, Output: &buf})

	ctx := NewContext(context.Background(), logger)
	got := FromContext(ctx)
	if got != logger {
		t.Error("FromContext did not return the attached logger")
	}

	if FromContext(context.Background()) != nil {
		t.Error("FromContext on empty context should return nil")
	}
}

func TestTimer(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(New(Options{Level: LevelDebug, Output: &buf}))
	defer SetDefault(New(DefaultOptions()))

	Timer("export")()

	out := buf.String()
	if !strings.Contains(out, "operation=export") {
		t.Errorf("timer output missing operation: %q", out)
	}
	if !strings.Contains(out, KeyDuration) {
		t.Errorf("timer output missing duration: %q", out)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Level != slog.LevelWarn {
		t.Errorf("default level = %v, want warn", opts.Level)
	}
	if opts.JSON {
		t.Error("default output should be text")
	}
}
