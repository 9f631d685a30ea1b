package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/dimkharitonov/quicksightsync/internal/cli"
)

func captureRun(t *testing.T, args ...string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	runErr := cli.Run(context.Background(), append([]string{"qss"}, args...))

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close pipe writer: %v", err)
	}
	os.Stdout = old

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read captured output: %v", err)
	}
	return buf.String(), runErr
}

func TestCLIInitialization(t *testing.T) {
	output, err := captureRun(t, "--help")
	if err != nil {
		t.Fatalf("CLI initialization failed: %v", err)
	}

	if !strings.Contains(output, "qss") {
		t.Errorf("expected help output to contain 'qss', got: %q", output)
	}
	if !strings.Contains(output, "USAGE") || !strings.Contains(output, "COMMANDS") {
		t.Errorf("expected help output to contain USAGE and COMMANDS sections, got: %q", output)
	}
}

func TestAllCommandsRegistered(t *testing.T) {
	output, err := captureRun(t, "--help")
	if err != nil {
		t.Fatalf("help command failed: %v", err)
	}

	expectedCommands := []string{
		"version",
		"config",
		"export",
		"import",
		"list",
	}
	for _, cmd := range expectedCommands {
		if !strings.Contains(output, cmd) {
			t.Errorf("expected command %q to be registered, help output: %q", cmd, output)
		}
	}
}

func TestGlobalFlagsRecognized(t *testing.T) {
	tests := map[string]struct {
		args []string
	}{
		"verbose flag":   {args: []string{"--verbose", "version"}},
		"debug flag":     {args: []string{"--debug", "version"}},
		"no-color flag":  {args: []string{"--no-color", "version"}},
		"combined flags": {args: []string{"--verbose", "--no-color", "version"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := captureRun(t, tt.args...); err != nil {
				t.Errorf("Run() error = %v", err)
			}
		})
	}
}
