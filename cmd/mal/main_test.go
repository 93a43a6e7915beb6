package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCmd(t *testing.T, f func(args []string, stdout, stderr *bytes.Buffer) int, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := f(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func eval(args []string, stdout, stderr *bytes.Buffer) int { return cmdEval(args, stdout, stderr) }
func run(args []string, stdout, stderr *bytes.Buffer) int  { return cmdRun(args, stdout, stderr) }

func Test_Cmd_EvalPrintsResult(t *testing.T) {
	code, out, _ := runCmd(t, eval, "(+", "1", "2)")
	if code != 0 || out != "3\n" {
		t.Fatalf("want 3, got code %d out %q", code, out)
	}
	code, out, _ = runCmd(t, eval, `(str "a" "b")`)
	if code != 0 || out != "\"ab\"\n" {
		t.Fatalf("results are printed readably, got %q", out)
	}
}

func Test_Cmd_EvalErrorExitsOne(t *testing.T) {
	code, out, errOut := runCmd(t, eval, "(car 1)")
	if code != 1 || out != "" {
		t.Fatalf("want exit 1 and no output, got %d %q", code, out)
	}
	if !strings.Contains(errOut, "TYPE ERROR") {
		t.Fatalf("want the error on stderr, got %q", errOut)
	}
}

func Test_Cmd_UsageErrors(t *testing.T) {
	if code, _, _ := runCmd(t, eval); code != 2 {
		t.Fatalf("eval without an expression should exit 2, got %d", code)
	}
	if code, _, _ := runCmd(t, run, "a", "b"); code != 2 {
		t.Fatalf("run with two files should exit 2, got %d", code)
	}
	code, _, errOut := runCmd(t, eval, "-log-level", "loud", "1")
	if code != 2 || !strings.Contains(errOut, "invalid log level") {
		t.Fatalf("a bad log level should exit 2, got %d %q", code, errOut)
	}
}

func Test_Cmd_DebugLoggingGoesToStderr(t *testing.T) {
	code, out, errOut := runCmd(t, eval, "-log-level", "debug", "(+ 1 1)")
	if code != 0 || out != "2\n" {
		t.Fatalf("got %d %q", code, out)
	}
	if !strings.Contains(errOut, "level=DEBUG") || !strings.Contains(errOut, "interpreter ready") {
		t.Fatalf("debug logs should go to stderr, got %q", errOut)
	}
}

func Test_Cmd_RunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.mal")
	src := "(def! sq (fn [x] (* x x)))\n(sq 4)\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	code, out, errOut := runCmd(t, run, path)
	if code != 0 || out != "" || errOut != "" {
		t.Fatalf("run prints nothing on success, got %d %q %q", code, out, errOut)
	}
}

func Test_Cmd_RunFileReadError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.mal")
	if err := os.WriteFile(path, []byte("(+ 1 2)\n)"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, errOut := runCmd(t, run, path)
	if code != 1 || !strings.Contains(errOut, "READ ERROR in bad.mal at 2:1") {
		t.Fatalf("want a named read error, got %d %q", code, errOut)
	}
	if code, _, _ := runCmd(t, run, filepath.Join(dir, "missing.mal")); code != 1 {
		t.Fatalf("a missing file should exit 1, got %d", code)
	}
}

func Test_Cmd_HistoryPathFromEnv(t *testing.T) {
	t.Setenv("MAL_HISTORY", "/tmp/custom_history")
	if got := historyPath(); got != "/tmp/custom_history" {
		t.Fatalf("want MAL_HISTORY, got %q", got)
	}
	t.Setenv("MAL_HISTORY", "")
	if got := historyPath(); filepath.Base(got) != historyFile {
		t.Fatalf("want ~/%s, got %q", historyFile, got)
	}
}

func Test_Cmd_DefaultLogLevel(t *testing.T) {
	t.Setenv("MAL_LOG", "")
	if got := defaultLogLevel(); got != "warn" {
		t.Fatalf("want warn, got %q", got)
	}
	t.Setenv("MAL_LOG", "debug")
	if got := defaultLogLevel(); got != "debug" {
		t.Fatalf("want debug, got %q", got)
	}
}
