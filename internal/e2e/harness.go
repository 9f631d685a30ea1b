// Package e2e provides testing infrastructure for end-to-end CLI tests.
// It runs the real command tree in-process against fake AWS clients, with
// stdout capture and an isolated home directory per test.
package e2e

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/dimkharitonov/quicksightsync/internal/awsapi"
	"github.com/dimkharitonov/quicksightsync/internal/cli"
)

// Result contains the outcome of running a CLI command.
type Result struct {
	// Stdout contains the captured standard output.
	Stdout string
	// Err is the error returned by the CLI command, if any.
	Err error
	// ExitCode is the inferred exit code (0 for success, 1 for error).
	ExitCode int
}

// Success returns true if the command completed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Harness runs CLI commands in an isolated environment against fake
// AWS accounts.
type Harness struct {
	t       *testing.T
	homeDir string
}

// NewHarness creates a new E2E test harness. The home directory is replaced
// with a temp directory so configuration never leaks between tests, and the
// CLI session factory is restored when the test finishes.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	original := cli.SessionFactory
	t.Cleanup(func() {
		cli.SessionFactory = original
	})

	return &Harness{
		t:       t,
		homeDir: homeDir,
	}
}

// HomeDir returns the isolated home directory for this test harness.
func (h *Harness) HomeDir() string {
	return h.homeDir
}

// UseAccount points every subsequent CLI command at the given fake account.
func (h *Harness) UseAccount(fake *awsapi.Fake) {
	h.t.Helper()
	cli.SessionFactory = func(_ context.Context, _, region string) (*awsapi.Session, error) {
		if region == "" {
			region = fake.Region
		}
		return &awsapi.Session{
			QuickSight: fake,
			STS:        &awsapi.FakeSTS{Account: fake.AccountID},
			AccountID:  fake.AccountID,
			Region:     region,
		}, nil
	}
}

// Run executes a CLI command with the given arguments and captures stdout.
func (h *Harness) Run(args ...string) *Result {
	h.t.Helper()

	args = append([]string{"qss", "--no-color"}, args...)

	oldStdout := os.Stdout
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stdout pipe: %v", err)
	}
	os.Stdout = stdoutW

	// Read stdout concurrently so output larger than the pipe buffer
	// cannot block the command.
	var stdoutBuf bytes.Buffer
	var copyErr error
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		_, copyErr = io.Copy(&stdoutBuf, stdoutR)
	}()

	cmdErr := cli.Run(context.Background(), args)

	if err := stdoutW.Close(); err != nil {
		h.t.Fatalf("failed to close stdout pipe writer: %v", err)
	}
	os.Stdout = oldStdout

	<-copyDone
	if copyErr != nil {
		h.t.Fatalf("failed to read captured stdout: %v", copyErr)
	}

	exitCode := 0
	if cmdErr != nil {
		exitCode = 1
	}

	return &Result{
		Stdout:   stdoutBuf.String(),
		Err:      cmdErr,
		ExitCode: exitCode,
	}
}
