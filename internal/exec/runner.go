package exec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	// Per-stream output cap. Anything beyond it is discarded.
	outputLimit = 64 * 1024

	defaultTimeout = 10 * time.Second
)

var ErrUnknownLanguage = errors.New("unknown language")

type Request struct {
	SourceCode string
	LanguageID string
	TimeoutMs  int
}

// Result reports the full outcome of one run. A timeout is a regular result
// with TimedOut set, never an error; ExitCode is -1 in that case.
type Result struct {
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	ExitCode  int    `json:"exitCode"`
	ElapsedMs int64  `json:"elapsedMs"`
	TimedOut  bool   `json:"timedOut"`
}

// Runner executes untrusted snippets in throwaway temp directories.
type Runner struct {
	maxTimeout time.Duration
}

func NewRunner(maxTimeoutMs int) *Runner {
	max := time.Duration(maxTimeoutMs) * time.Millisecond
	if max <= 0 {
		max = 30 * time.Second
	}
	return &Runner{maxTimeout: max}
}

func (r *Runner) timeout(requestedMs int) time.Duration {
	t := time.Duration(requestedMs) * time.Millisecond
	if t <= 0 {
		t = defaultTimeout
	}
	if t > r.maxTimeout {
		t = r.maxTimeout
	}
	return t
}

// Run writes the snippet to a fresh temp directory, executes it, and removes
// the directory on every exit path. The process is killed when the deadline
// passes.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	lang, ok := languages[req.LanguageID]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, req.LanguageID)
	}

	dir, err := os.MkdirTemp("", "codestudio-run-")
	if err != nil {
		return Result{}, fmt.Errorf("create temp workspace: %w", err)
	}
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, lang.FileName)
	if err := os.WriteFile(file, []byte(req.SourceCode), 0o600); err != nil {
		return Result{}, fmt.Errorf("write source file: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout(req.TimeoutMs))
	defer cancel()

	argv := lang.Command(file)
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = dir
	// If the process ignores the kill long enough to wedge its pipes, give
	// up on them after a grace period.
	cmd.WaitDelay = 2 * time.Second
	setPlatformProcAttrs(cmd)

	stdout := &limitedBuffer{limit: outputLimit}
	stderr := &limitedBuffer{limit: outputLimit}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	res := Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		ElapsedMs: elapsed.Milliseconds(),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.ExitCode = -1
		return res, nil
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		// Interpreter missing, permission trouble: the run never started.
		return Result{}, fmt.Errorf("run %s: %w", req.LanguageID, runErr)
	}

	return res, nil
}

// limitedBuffer keeps the first limit bytes and silently discards the rest.
type limitedBuffer struct {
	buf   []byte
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - len(b.buf); room > 0 {
		if len(p) > room {
			b.buf = append(b.buf, p[:room]...)
		} else {
			b.buf = append(b.buf, p...)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	return string(b.buf)
}
