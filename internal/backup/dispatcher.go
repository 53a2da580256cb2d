package backup

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/killo431/profilesave/internal/config"
	"github.com/killo431/profilesave/internal/logging"
)

// Runner executes backup tasks against a single run directory.
type Runner struct {
	cfg      config.Config // read-only copy; tasks never see ambient state
	destRoot string        // the timestamped run directory under cfg.Destination
	log      *logging.Logger
	deps     Deps

	onComplete func(TaskResult)
	progress   io.Writer
}

// NewRunner creates a Runner for one backup run. destRoot must already
// exist; per-target directories are created by the tasks themselves.
func NewRunner(cfg config.Config, destRoot string, log *logging.Logger, deps Deps) *Runner {
	deps.fillDefaults()
	return &Runner{
		cfg:      cfg,
		destRoot: destRoot,
		log:      log,
		deps:     deps,
	}
}

// SetOnComplete registers a callback invoked after each task completes,
// from the completing task's goroutine. The caller uses it to render
// progress between completions; it must be safe for concurrent use.
func (r *Runner) SetOnComplete(fn func(TaskResult)) {
	r.onComplete = fn
}

// SetProgressOutput enables a byte-progress display for large in-process
// copies (mail archives). Pass nil to disable; typically os.Stderr when
// running on a terminal.
func (r *Runner) SetProgressOutput(w io.Writer) {
	r.progress = w
}

func (r *Runner) progressSink() io.Writer {
	return r.progress
}

// RunAll runs every target on a bounded worker pool and returns one result
// per target, keyed by target name.
//
// The effective concurrency is min(len(targets), cfg.Concurrency), never
// below 1. Tasks complete in arbitrary order; a task that fails (or
// panics) is recorded as a failed result and never aborts the pool.
func (r *Runner) RunAll(ctx context.Context, targets []Target) map[string]TaskResult {
	results := make(map[string]TaskResult, len(targets))
	if len(targets) == 0 {
		return results
	}

	limit := r.cfg.Concurrency
	if limit > len(targets) {
		limit = len(targets)
	}
	if limit < 1 {
		limit = 1
	}

	r.log.Debug("Dispatching %d target(s) with concurrency %d", len(targets), limit)

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, target := range targets {
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := r.runOneRecovered(ctx, t)

			mu.Lock()
			results[t.Name] = res
			mu.Unlock()

			if r.onComplete != nil {
				r.onComplete(res)
			}
		}(target)
	}

	wg.Wait()
	return results
}

// runOneRecovered converts an unexpected fault inside a task into a failed
// TaskResult so it never propagates into the dispatcher's control flow.
func (r *Runner) runOneRecovered(ctx context.Context, target Target) (res TaskResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("Profile %s: unexpected fault: %v", target.Name, rec)
			res = TaskResult{
				Target:  target.Name,
				Success: false,
				Message: fmt.Sprintf("unexpected fault: %v", rec),
			}
		}
	}()
	return r.RunOne(ctx, target)
}
