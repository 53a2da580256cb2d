// Package robocopy wraps the external bulk-copy tool used for profile
// subfolder copies. The wrapper owns argument construction, exit-code
// classification and recovery of copy counters from the tool's own log file.
package robocopy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// ToolName is the external copy executable resolved via PATH.
const ToolName = "robocopy"

// Class is the coarse outcome class derived from the tool's exit code.
type Class int

const (
	// ClassSuccess - exit 0 or 1: nothing to copy, or files copied cleanly.
	ClassSuccess Class = iota

	// ClassPartial - exit 2..7: extras, mismatches or a mix; non-fatal.
	ClassPartial

	// ClassFailure - exit >= 8 (or the tool could not run): copy errors.
	ClassFailure
)

// String returns the string representation of the outcome class.
func (c Class) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassPartial:
		return "partial"
	case ClassFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Options control a single copy invocation.
type Options struct {
	// Recursive copies subdirectories, including empty ones.
	Recursive bool

	// PreserveMeta keeps data, attributes and timestamps on files and dirs.
	PreserveMeta bool

	// Retries is the per-file retry count on failed copies.
	Retries int

	// RetryWaitSec is the wait between retries, in seconds.
	RetryWaitSec int

	// Threads is the tool's internal multi-stream count (0 = tool default).
	Threads int

	// MaxFileSize skips files larger than this many bytes (0 = unlimited).
	MaxFileSize int64

	// LogPath is where the tool writes its own log; the counters in Outcome
	// are recovered from this file. Empty disables logging and counters.
	LogPath string
}

// Outcome is the result of one folder-copy operation.
type Outcome struct {
	Class       Class
	ExitCode    int
	FilesCopied int64
	BytesCopied int64
}

// Deps allows injecting the external pieces of a copy run (tests never
// exec the real tool).
type Deps struct {
	LookPath   func(string) (string, error)
	RunCommand func(ctx context.Context, name string, args ...string) (int, error)
	ReadFile   func(string) ([]byte, error)
}

// DefaultDeps returns Deps backed by the real tool.
func DefaultDeps() Deps {
	return Deps{
		LookPath: exec.LookPath,
		RunCommand: func(ctx context.Context, name string, args ...string) (int, error) {
			cmd := exec.CommandContext(ctx, name, args...)
			err := cmd.Run()
			if err == nil {
				return 0, nil
			}
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return exitErr.ExitCode(), nil
			}
			return -1, err
		},
		ReadFile: os.ReadFile,
	}
}

// Runner executes copy operations.
type Runner struct {
	deps Deps
}

// NewRunner creates a Runner with the given deps; zero-value fields fall
// back to the real implementations.
func NewRunner(deps Deps) *Runner {
	def := DefaultDeps()
	if deps.LookPath == nil {
		deps.LookPath = def.LookPath
	}
	if deps.RunCommand == nil {
		deps.RunCommand = def.RunCommand
	}
	if deps.ReadFile == nil {
		deps.ReadFile = def.ReadFile
	}
	return &Runner{deps: deps}
}

// Available reports whether the copy tool can be resolved.
func (r *Runner) Available() bool {
	_, err := r.deps.LookPath(ToolName)
	return err == nil
}

// Run copies src to dst with the given options and returns the outcome.
// A non-nil error means the tool could not be executed at all; tool-level
// copy failures are reported through Outcome.Class instead.
func (r *Runner) Run(ctx context.Context, src, dst string, opts Options) (Outcome, error) {
	args := buildArgs(src, dst, opts)

	code, err := r.deps.RunCommand(ctx, ToolName, args...)
	if err != nil {
		return Outcome{Class: ClassFailure, ExitCode: code}, fmt.Errorf("run %s: %w", ToolName, err)
	}

	outcome := Outcome{
		Class:    Classify(code),
		ExitCode: code,
	}

	// Counters are best-effort: a failed copy may still have moved files
	// before erroring, and a missing/garbled log simply yields zeros.
	if opts.LogPath != "" {
		if data, readErr := r.deps.ReadFile(opts.LogPath); readErr == nil {
			outcome.FilesCopied, outcome.BytesCopied = ParseCounters(data)
		}
	}

	return outcome, nil
}

// Classify maps a tool exit code to an outcome class. Codes 0-7 are the
// tool's non-fatal range; 8 and above indicate copy errors.
func Classify(code int) Class {
	switch {
	case code < 0:
		return ClassFailure
	case code <= 1:
		return ClassSuccess
	case code <= 7:
		return ClassPartial
	default:
		return ClassFailure
	}
}

func buildArgs(src, dst string, opts Options) []string {
	args := []string{src, dst}
	if opts.Recursive {
		args = append(args, "/E")
	}
	if opts.PreserveMeta {
		args = append(args, "/COPY:DAT", "/DCOPY:DAT")
	}
	args = append(args,
		"/R:"+strconv.Itoa(opts.Retries),
		"/W:"+strconv.Itoa(opts.RetryWaitSec),
	)
	if opts.Threads > 0 {
		args = append(args, "/MT:"+strconv.Itoa(opts.Threads))
	}
	if opts.MaxFileSize > 0 {
		args = append(args, "/MAX:"+strconv.FormatInt(opts.MaxFileSize, 10))
	}
	// /BYTES prints raw byte counts in the summary table so the parser does
	// not have to undo the scaled "1.234 g" formatting. /NP suppresses the
	// per-file progress percentages that would bloat the log.
	args = append(args, "/BYTES", "/NP")
	if opts.LogPath != "" {
		args = append(args, "/LOG:"+opts.LogPath)
	}
	return args
}
