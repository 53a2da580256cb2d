package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/killo431/profilesave/internal/types"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(types.LogLevelWarning, false)
	logger.SetOutput(&buf)

	logger.Debug("debug line")
	logger.Info("info line")
	logger.Warning("warning line")
	logger.Error("error line")

	out := buf.String()
	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Errorf("lines above the level leaked:\n%s", out)
	}
	if !strings.Contains(out, "warning line") || !strings.Contains(out, "error line") {
		t.Errorf("lines at or below the level missing:\n%s", out)
	}
}

func TestLoggerLabels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(types.LogLevelDebug, false)
	logger.SetOutput(&buf)

	logger.Success("done")
	logger.Step("working")
	logger.Skip("absent")

	out := buf.String()
	for _, label := range []string{"SUCCESS", "STEP", "SKIP"} {
		if !strings.Contains(out, label) {
			t.Errorf("output missing %s label:\n%s", label, out)
		}
	}
}

func TestLoggerCounters(t *testing.T) {
	logger := New(types.LogLevelDebug, false)
	logger.SetOutput(&bytes.Buffer{})

	if logger.HasWarnings() || logger.HasErrors() {
		t.Fatal("fresh logger should have no warnings or errors")
	}

	logger.Warning("w")
	if !logger.HasWarnings() {
		t.Error("HasWarnings() = false after a warning")
	}
	logger.Error("e")
	logger.Critical("c")
	if !logger.HasErrors() {
		t.Error("HasErrors() = false after error and critical")
	}
}

func TestLoggerCountersRespectLevel(t *testing.T) {
	logger := New(types.LogLevelNone, false)
	logger.SetOutput(&bytes.Buffer{})

	logger.Warning("suppressed")
	logger.Error("suppressed")

	if logger.HasWarnings() || logger.HasErrors() {
		t.Error("suppressed lines must not count")
	}
}

func TestLoggerRunLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	var buf bytes.Buffer
	logger := New(types.LogLevelInfo, true)
	logger.SetOutput(&buf)

	if err := logger.OpenLogFile(logPath); err != nil {
		t.Fatal(err)
	}
	logger.Info("file line")
	if err := logger.CloseLogFile(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "file line") {
		t.Errorf("run log missing line:\n%s", data)
	}
	if strings.Contains(string(data), "\033[") {
		t.Error("run log must not contain color escapes")
	}
	if !strings.Contains(buf.String(), "\033[") {
		t.Error("console output should carry color escapes when enabled")
	}
}

func TestFatalUsesExitFunc(t *testing.T) {
	logger := New(types.LogLevelDebug, false)
	logger.SetOutput(&bytes.Buffer{})

	var gotCode int
	logger.SetExitFunc(func(code int) { gotCode = code })
	logger.Fatal(types.ExitConfigError, "bad config")

	if gotCode != types.ExitConfigError.Int() {
		t.Errorf("exit code = %d, want %d", gotCode, types.ExitConfigError.Int())
	}
}
