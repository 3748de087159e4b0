package exec

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func requireBash(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("bash not available on windows")
	}
}

func TestRunCapturesOutputAndExitCode(t *testing.T) {
	requireBash(t)
	runner := NewRunner(30000)

	res, err := runner.Run(context.Background(), Request{
		LanguageID: "bash",
		SourceCode: "echo out; echo err >&2; exit 3",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "out" {
		t.Fatalf("unexpected stdout %q", res.Stdout)
	}
	if strings.TrimSpace(res.Stderr) != "err" {
		t.Fatalf("unexpected stderr %q", res.Stderr)
	}
	if res.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", res.ExitCode)
	}
	if res.TimedOut {
		t.Fatal("run should not be marked timed out")
	}
}

func TestRunTimeoutIsAResultNotAnError(t *testing.T) {
	requireBash(t)
	runner := NewRunner(30000)

	res, err := runner.Run(context.Background(), Request{
		LanguageID: "bash",
		SourceCode: "sleep 10",
		TimeoutMs:  200,
	})
	if err != nil {
		t.Fatalf("timeout must not surface as an error: %v", err)
	}
	if !res.TimedOut {
		t.Fatal("expected TimedOut to be set")
	}
	if res.ExitCode != -1 {
		t.Fatalf("timed-out run should report exit code -1, got %d", res.ExitCode)
	}
}

func TestRunUnknownLanguage(t *testing.T) {
	runner := NewRunner(30000)
	_, err := runner.Run(context.Background(), Request{LanguageID: "cobol", SourceCode: "x"})
	if !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("expected ErrUnknownLanguage, got %v", err)
	}
}

func TestRunCleansUpTempDir(t *testing.T) {
	requireBash(t)
	runner := NewRunner(30000)

	for _, source := range []string{"exit 0", "exit 1", "sleep 10"} {
		if _, err := runner.Run(context.Background(), Request{
			LanguageID: "bash",
			SourceCode: source,
			TimeoutMs:  200,
		}); err != nil {
			t.Fatalf("run %q: %v", source, err)
		}
	}

	leftovers, err := filepath.Glob(filepath.Join(os.TempDir(), "codestudio-run-*"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("temp workspaces left behind: %v", leftovers)
	}
}

func TestRunClampsTimeoutToMax(t *testing.T) {
	runner := NewRunner(500)
	if got := runner.timeout(60000); got.Milliseconds() != 500 {
		t.Fatalf("expected clamp to 500ms, got %v", got)
	}
}

func TestLanguagesSorted(t *testing.T) {
	ids := Languages()
	if len(ids) == 0 {
		t.Fatal("no languages registered")
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("language ids not sorted: %v", ids)
		}
	}
}
