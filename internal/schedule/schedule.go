// Package schedule runs recurring backups from a cron expression.
package schedule

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/killo431/profilesave/internal/logging"
)

// RunFunc performs one backup run. It receives the scheduler's context so
// an in-flight run stops when the scheduler is asked to shut down.
type RunFunc func(ctx context.Context) error

// Loop blocks running fn on the given cron spec until ctx is cancelled.
// Overlapping runs are skipped: if a run is still active when the next
// tick fires, the tick is dropped with a warning.
func Loop(ctx context.Context, spec string, logger *logging.Logger, fn RunFunc) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	var running atomic.Bool
	c := cron.New(cron.WithParser(parser))
	_, err := c.AddFunc(spec, func() {
		if !running.CompareAndSwap(false, true) {
			logger.Warning("Previous backup run still active, skipping this tick")
			return
		}
		defer running.Store(false)

		if err := fn(ctx); err != nil {
			logger.Error("Scheduled backup run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("register schedule %q: %w", spec, err)
	}

	logger.Info("Scheduler started with spec %q, waiting for next tick", spec)
	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	logger.Info("Scheduler stopped")
	return nil
}
