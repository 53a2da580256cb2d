package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/killo431/profilesave/internal/types"
)

// StartRunLogger creates a logger that writes to a real-time run-log file in a
// staging directory under the system temp dir. The caller receives the
// configured logger, the absolute log path, and a cleanup function to invoke
// when the run completes. The run log is staged locally first because the
// backup destination may be a network share that is slow or not yet writable;
// CopyRunLog moves a copy there at the end of the run.
func StartRunLogger(runID string, level types.LogLevel, useColor bool) (*Logger, string, func(), error) {
	stagingDir := filepath.Join(os.TempDir(), "profilesave")
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, "", nil, fmt.Errorf("create run log directory: %w", err)
	}

	hostname := detectHostname()
	timestamp := time.Now().Format("20060102-150405")
	logName := fmt.Sprintf("profilesave-%s-%s-%s.log", hostname, timestamp, sanitizeToken(runID))
	logPath := filepath.Join(stagingDir, logName)

	logger := New(level, useColor)
	if err := logger.OpenLogFile(logPath); err != nil {
		return nil, "", nil, err
	}

	cleanup := func() {
		_ = logger.CloseLogFile()
	}

	return logger, logPath, cleanup, nil
}

// CopyRunLog copies the run log into the backup destination directory,
// keeping the original file name. The caller should close the log file first
// so the copy contains every line.
func CopyRunLog(logPath, destDir string) error {
	if strings.TrimSpace(logPath) == "" {
		return fmt.Errorf("run log path is empty")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	src, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer src.Close()

	destPath := filepath.Join(destDir, filepath.Base(logPath))
	dst, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create run log copy: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy run log: %w", err)
	}
	return nil
}

func sanitizeToken(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return "run"
	}
	replacer := func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}
	sanitized := strings.Map(replacer, token)
	sanitized = strings.Trim(sanitized, "-")
	for strings.Contains(sanitized, "--") {
		sanitized = strings.ReplaceAll(sanitized, "--", "-")
	}
	if sanitized == "" {
		return "run"
	}
	return sanitized
}

func detectHostname() string {
	host, err := os.Hostname()
	if err != nil {
		return "host"
	}
	host = strings.TrimSpace(strings.ToLower(host))
	if host == "" {
		return "host"
	}
	return sanitizeToken(host)
}
