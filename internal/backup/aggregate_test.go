package backup

import (
	"strings"
	"testing"
	"time"

	"github.com/killo431/profilesave/internal/types"
)

func TestAggregate(t *testing.T) {
	results := map[string]TaskResult{
		"bob": {
			Target: "bob", Success: true, Message: "completed",
			Stats: Stats{FilesCopied: 10, BytesCopied: 100},
		},
		"alice": {
			Target: "alice", Success: true, Message: "completed with 2 error(s)",
			Stats: Stats{FilesCopied: 5, BytesCopied: 50, Errors: 2},
		},
		"ghost": {
			Target: "ghost", Success: false, Message: "source root does not exist",
		},
	}

	summary := Aggregate(results)

	if summary.TotalCount != 3 || summary.SuccessCount != 2 {
		t.Errorf("counts = %d/%d, want 2/3", summary.SuccessCount, summary.TotalCount)
	}
	if summary.Totals.FilesCopied != 15 || summary.Totals.BytesCopied != 150 {
		t.Errorf("totals = %+v", summary.Totals)
	}
	if summary.Totals.Errors != 2 {
		t.Errorf("Errors = %d, want 2", summary.Totals.Errors)
	}

	wantOrder := []string{"alice", "bob", "ghost"}
	for i, res := range summary.PerTarget {
		if res.Target != wantOrder[i] {
			t.Errorf("PerTarget[%d] = %s, want %s", i, res.Target, wantOrder[i])
		}
	}
}

func TestSummaryExitCode(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		want    types.ExitCode
	}{
		{"no targets", Summary{}, types.ExitNoTargets},
		{"all succeeded", Summary{SuccessCount: 3, TotalCount: 3}, types.ExitSuccess},
		{"some failed", Summary{SuccessCount: 2, TotalCount: 3}, types.ExitBackupError},
		{"all failed", Summary{SuccessCount: 0, TotalCount: 3}, types.ExitBackupError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.summary.ExitCode(); got != tt.want {
				t.Errorf("ExitCode() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRenderReport(t *testing.T) {
	summary := Aggregate(map[string]TaskResult{
		"alice": {Target: "alice", Success: true, Message: "completed", Duration: 1500 * time.Millisecond},
		"ghost": {Target: "ghost", Success: false, Message: "source root does not exist"},
	})

	var sb strings.Builder
	summary.RenderReport(&sb)
	out := sb.String()

	for _, want := range []string{"alice", "ghost", "OK", "FAILED", "1/2 targets succeeded"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
