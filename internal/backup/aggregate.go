package backup

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/killo431/profilesave/internal/types"
	"github.com/killo431/profilesave/pkg/utils"
)

// Summary is the aggregated outcome of a backup run.
type Summary struct {
	SuccessCount int
	TotalCount   int
	PerTarget    []TaskResult // sorted by target name
	Totals       Stats
}

// Aggregate tallies the per-target results into a run summary. The
// dispatcher guarantees exactly one result per enqueued target, in
// arbitrary completion order; sorting here makes the report stable.
func Aggregate(results map[string]TaskResult) Summary {
	summary := Summary{
		TotalCount: len(results),
		PerTarget:  make([]TaskResult, 0, len(results)),
	}

	for _, res := range results {
		if res.Success {
			summary.SuccessCount++
		}
		summary.Totals.Add(res.Stats)
		summary.PerTarget = append(summary.PerTarget, res)
	}

	sort.Slice(summary.PerTarget, func(i, j int) bool {
		return summary.PerTarget[i].Target < summary.PerTarget[j].Target
	})

	return summary
}

// ExitCode decides the final process exit status for the run.
func (s Summary) ExitCode() types.ExitCode {
	switch {
	case s.TotalCount == 0:
		return types.ExitNoTargets
	case s.SuccessCount < s.TotalCount:
		return types.ExitBackupError
	default:
		return types.ExitSuccess
	}
}

// RenderReport writes the final run report: every target with a definitive
// verdict and message, then the run totals.
func (s Summary) RenderReport(w io.Writer) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Backup report")
	fmt.Fprintln(w, "-------------")
	for _, res := range s.PerTarget {
		verdict := "OK    "
		if !res.Success {
			verdict = "FAILED"
		}
		fmt.Fprintf(w, "  %s  %-20s %-32s %s\n",
			verdict, res.Target, res.Message, res.Duration.Round(time.Millisecond))
	}
	fmt.Fprintln(w, "-------------")
	fmt.Fprintf(w, "  %d/%d targets succeeded, %d files (%s) copied, %d files (%s) skipped\n",
		s.SuccessCount, s.TotalCount,
		s.Totals.FilesCopied, utils.FormatBytes(s.Totals.BytesCopied),
		s.Totals.FilesSkipped, utils.FormatBytes(s.Totals.BytesSkipped))
}
