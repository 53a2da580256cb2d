package metrics

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/killo431/profilesave/internal/logging"
	"github.com/killo431/profilesave/internal/types"
)

func testLogger() *logging.Logger {
	logger := logging.New(types.LogLevelDebug, false)
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	exporter := NewPrometheusExporter(dir, testLogger())

	start := time.Date(2026, 8, 25, 2, 0, 0, 0, time.UTC)
	m := &RunMetrics{
		Hostname:      "ws-042",
		Version:       "1.0.0",
		StartTime:     start,
		EndTime:       start.Add(90 * time.Second),
		Duration:      90 * time.Second,
		ExitCode:      0,
		TargetsTotal:  4,
		TargetsFailed: 1,
		ErrorCount:    3,
		FilesCopied:   1200,
		BytesCopied:   987654321,
		FilesSkipped:  7,
		BytesSkipped:  55555,
	}

	if err := exporter.Export(m); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "profilesave_backup.prom"))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)

	for _, want := range []string{
		"profilesave_backup_duration_seconds 90.00",
		"profilesave_backup_exit_code 0",
		"profilesave_backup_status 1", // partial: exit 0 with failed targets
		"profilesave_backup_targets_total 4",
		"profilesave_backup_targets_failed 1",
		"profilesave_backup_errors_total 3",
		"profilesave_backup_files_copied_total 1200",
		"profilesave_backup_bytes_copied 987654321",
		"profilesave_backup_files_skipped_total 7",
		"profilesave_backup_bytes_skipped 55555",
		`profilesave_backup_info{hostname="ws-042",version="1.0.0"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("export missing %q", want)
		}
	}

	if strings.Count(text, "# HELP") == 0 || strings.Count(text, "# TYPE") == 0 {
		t.Error("export missing HELP/TYPE headers")
	}

	// No leftover temp file after the atomic rename.
	if _, err := os.Stat(filepath.Join(dir, "profilesave_backup.prom.tmp")); !os.IsNotExist(err) {
		t.Error("temp file left behind after export")
	}
}

func TestExportErrorStatus(t *testing.T) {
	dir := t.TempDir()
	exporter := NewPrometheusExporter(dir, testLogger())

	m := &RunMetrics{ExitCode: 5, StartTime: time.Now(), EndTime: time.Now()}
	if err := exporter.Export(m); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "profilesave_backup.prom"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "profilesave_backup_status 2") {
		t.Error("nonzero exit code should export status 2")
	}
}

func TestExportEmptyDir(t *testing.T) {
	exporter := NewPrometheusExporter("", testLogger())
	if err := exporter.Export(&RunMetrics{}); err == nil {
		t.Error("expected error for empty metrics directory")
	}
}

func TestExportNilMetrics(t *testing.T) {
	exporter := NewPrometheusExporter(t.TempDir(), testLogger())
	if err := exporter.Export(nil); err != nil {
		t.Errorf("nil metrics should be a no-op, got %v", err)
	}
}
