package cmd

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything it wrote. Not safe for parallel tests.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	os.Stdout = w

	fn()

	if err := w.Close(); err != nil {
		t.Fatalf("closing pipe: %v", err)
	}
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func TestRunVersion(t *testing.T) {
	output := captureStdout(t, runVersion)

	for _, want := range []string{"carebot v", "Build:", "Commit:"} {
		if !strings.Contains(output, want) {
			t.Errorf("version output missing %q:\n%s", want, output)
		}
	}
}

func TestRunHelp(t *testing.T) {
	output := captureStdout(t, runHelp)

	for _, want := range []string{
		"Usage:",
		"carebot chat",
		"carebot ask <prompt>",
		"carebot serve [addr]",
		"/overrides",
		"AGENT_ID",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q:\n%s", want, output)
		}
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"carebot", "frobnicate"}
	t.Cleanup(func() { os.Args = oldArgs })

	err := Execute()
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command: frobnicate") {
		t.Errorf("Execute() error = %v, want mention of the command", err)
	}
}

func TestExecute_Version(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"carebot", "--version"}
	t.Cleanup(func() { os.Args = oldArgs })

	var err error
	output := captureStdout(t, func() { err = Execute() })
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(output, "carebot v") {
		t.Errorf("Execute(--version) output = %q, want version line", output)
	}
}

func TestExecute_Help(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"carebot", "help"}
	t.Cleanup(func() { os.Args = oldArgs })

	var err error
	output := captureStdout(t, func() { err = Execute() })
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(output, "Usage:") {
		t.Errorf("Execute(help) output = %q, want usage block", output)
	}
}

func TestRunAsk_NoPrompt(t *testing.T) {
	err := runAsk(nil)
	if err == nil {
		t.Fatal("runAsk(nil) = nil, want usage error")
	}
	if !strings.Contains(err.Error(), "usage: carebot ask") {
		t.Errorf("runAsk(nil) error = %v, want usage message", err)
	}

	if err := runAsk([]string{"  ", "\t"}); err == nil {
		t.Error("runAsk(blank args) = nil, want usage error")
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "nil", args: nil, want: ""},
		{name: "single word", args: []string{"hello"}, want: "hello"},
		{name: "joined words", args: []string{"summarize", "the", "account"}, want: "summarize the account"},
		{name: "quoted prompt", args: []string{"why is the bill higher?"}, want: "why is the bill higher?"},
		{name: "surrounding space", args: []string{" padded "}, want: "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := buildPrompt(tt.args); got != tt.want {
				t.Errorf("buildPrompt(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestParseTrustProxy(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "unset", value: "", want: false},
		{name: "true", value: "true", want: true},
		{name: "one", value: "1", want: true},
		{name: "false", value: "false", want: false},
		{name: "garbage", value: "banana", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CAREBOT_TRUST_PROXY", tt.value)
			if got := parseTrustProxy(); got != tt.want {
				t.Errorf("parseTrustProxy() with %q = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
