// Package metrics exports run statistics in Prometheus textfile format so a
// node_exporter textfile collector can scrape backup health.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/killo431/profilesave/internal/logging"
)

// RunMetrics is the subset of run statistics exported as Prometheus metrics.
type RunMetrics struct {
	Hostname string
	Version  string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	ExitCode      int
	TargetsTotal  int
	TargetsFailed int
	ErrorCount    int
	FilesCopied   int64
	BytesCopied   int64
	FilesSkipped  int64
	BytesSkipped  int64
}

// PrometheusExporter writes run metrics for the node_exporter textfile collector.
type PrometheusExporter struct {
	textfileDir string
	logger      *logging.Logger
}

// NewPrometheusExporter creates a new PrometheusExporter using the provided directory.
func NewPrometheusExporter(textfileDir string, logger *logging.Logger) *PrometheusExporter {
	return &PrometheusExporter{
		textfileDir: strings.TrimRight(textfileDir, "/\\"),
		logger:      logger,
	}
}

// Export writes the given metrics snapshot to profilesave_backup.prom in
// textfileDir. The file is written to a temp name and renamed so the
// collector never reads a half-written export.
func (pe *PrometheusExporter) Export(m *RunMetrics) error {
	if pe == nil || m == nil {
		return nil
	}

	if pe.textfileDir == "" {
		return fmt.Errorf("metrics textfile directory is empty")
	}

	if err := os.MkdirAll(pe.textfileDir, 0o755); err != nil {
		return fmt.Errorf("create metrics directory %s: %w", pe.textfileDir, err)
	}

	tmpPath := filepath.Join(pe.textfileDir, "profilesave_backup.prom.tmp")
	finalPath := filepath.Join(pe.textfileDir, "profilesave_backup.prom")

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create metrics file %s: %w", tmpPath, err)
	}
	defer f.Close()

	writeMetric := func(name, mtype, help, value string) {
		fmt.Fprintf(f, "# HELP %s %s\n", name, help)
		fmt.Fprintf(f, "# TYPE %s %s\n", name, mtype)
		fmt.Fprintln(f, value)
	}

	endTs := float64(m.EndTime.Unix())
	if m.EndTime.IsZero() && !m.StartTime.IsZero() {
		endTs = float64(m.StartTime.Unix() + int64(m.Duration.Seconds()))
	}

	// Status gauge: 0=success, 1=partial (some targets failed), 2=error
	status := 0
	if m.ExitCode != 0 {
		status = 2
	} else if m.TargetsFailed > 0 {
		status = 1
	}

	writeMetric(
		"profilesave_backup_start_time_seconds",
		"gauge",
		"Unix timestamp of backup start",
		fmt.Sprintf("profilesave_backup_start_time_seconds %.0f", float64(m.StartTime.Unix())),
	)

	writeMetric(
		"profilesave_backup_end_time_seconds",
		"gauge",
		"Unix timestamp of backup end",
		fmt.Sprintf("profilesave_backup_end_time_seconds %.0f", endTs),
	)

	writeMetric(
		"profilesave_backup_duration_seconds",
		"gauge",
		"Duration of last backup in seconds",
		fmt.Sprintf("profilesave_backup_duration_seconds %.2f", m.Duration.Seconds()),
	)

	writeMetric(
		"profilesave_backup_exit_code",
		"gauge",
		"Exit code of last backup",
		fmt.Sprintf("profilesave_backup_exit_code %d", m.ExitCode),
	)

	writeMetric(
		"profilesave_backup_status",
		"gauge",
		"Status of last backup (0=success,1=partial,2=error)",
		fmt.Sprintf("profilesave_backup_status %d", status),
	)

	writeMetric(
		"profilesave_backup_targets_total",
		"gauge",
		"Number of profiles processed in last backup",
		fmt.Sprintf("profilesave_backup_targets_total %d", m.TargetsTotal),
	)

	writeMetric(
		"profilesave_backup_targets_failed",
		"gauge",
		"Number of profiles that failed in last backup",
		fmt.Sprintf("profilesave_backup_targets_failed %d", m.TargetsFailed),
	)

	writeMetric(
		"profilesave_backup_errors_total",
		"gauge",
		"Total per-folder copy errors in last backup",
		fmt.Sprintf("profilesave_backup_errors_total %d", m.ErrorCount),
	)

	writeMetric(
		"profilesave_backup_files_copied_total",
		"gauge",
		"Total files copied during last backup",
		fmt.Sprintf("profilesave_backup_files_copied_total %d", m.FilesCopied),
	)

	writeMetric(
		"profilesave_backup_bytes_copied",
		"gauge",
		"Total bytes copied during last backup",
		fmt.Sprintf("profilesave_backup_bytes_copied %d", m.BytesCopied),
	)

	writeMetric(
		"profilesave_backup_files_skipped_total",
		"gauge",
		"Total files skipped by the size filter during last backup",
		fmt.Sprintf("profilesave_backup_files_skipped_total %d", m.FilesSkipped),
	)

	writeMetric(
		"profilesave_backup_bytes_skipped",
		"gauge",
		"Total bytes skipped by the size filter during last backup",
		fmt.Sprintf("profilesave_backup_bytes_skipped %d", m.BytesSkipped),
	)

	fmt.Fprintf(f, "# HELP profilesave_backup_info Static information about this backup instance\n")
	fmt.Fprintf(f, "# TYPE profilesave_backup_info gauge\n")
	fmt.Fprintf(
		f,
		"profilesave_backup_info{hostname=%q,version=%q} 1\n",
		m.Hostname,
		m.Version,
	)

	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync metrics file %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("rename metrics file to %s: %w", finalPath, err)
	}

	if pe.logger != nil {
		pe.logger.Debug("Prometheus metrics exported to %s", finalPath)
	}

	return nil
}
