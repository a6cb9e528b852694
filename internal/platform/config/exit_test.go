package config

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestExitfWritesOneLine(t *testing.T) {
	var buf bytes.Buffer
	code := -1
	exitf(&buf, func(c int) { code = c }, "verify %s: %v", "g1", "corrupt")
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if buf.String() != "verify g1: corrupt\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}

	buf.Reset()
	exitf(&buf, func(int) {}, "done\n")
	if buf.String() != "done\n" {
		t.Fatalf("expected no doubled newline, got %q", buf.String())
	}
}

// os.Exit cannot be intercepted in-process, so the real exit runs in a
// subprocess.
func TestExitfExitsProcess(t *testing.T) {
	if os.Getenv("LEGIONS_TEST_EXITF") == "1" {
		Exitf("fatal: %s", "something broke")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestExitfExitsProcess$")
	cmd.Env = append(os.Environ(), "LEGIONS_TEST_EXITF=1")
	out, err := cmd.CombinedOutput()

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %d", exitErr.ExitCode())
	}
	if !strings.Contains(string(out), "fatal: something broke") {
		t.Fatalf("expected stderr to contain the message, got %q", string(out))
	}
}
