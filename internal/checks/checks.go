// Package checks runs the pre-flight validation that must pass before any
// task is dispatched: destination usability, copy-tool availability and
// free space on the destination volume.
package checks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/killo431/profilesave/internal/config"
	"github.com/killo431/profilesave/internal/logging"
	"github.com/killo431/profilesave/internal/robocopy"
	"github.com/killo431/profilesave/pkg/utils"
)

// minFreeBytes is the free-space floor on the destination volume. Runs
// that would fill the volume completely tend to corrupt the last copies.
const minFreeBytes = int64(1 * 1024 * 1024 * 1024)

// ErrLowDiskSpace marks a preflight failure caused by insufficient free
// space on the destination volume.
var ErrLowDiskSpace = errors.New("insufficient disk space on destination")

// Deps allows injecting the external probes used during preflight.
type Deps struct {
	LookPath  func(string) (string, error)
	DiskUsage func(string) (*disk.UsageStat, error)
}

// DefaultDeps returns Deps backed by the real system probes.
func DefaultDeps() Deps {
	runner := robocopy.NewRunner(robocopy.Deps{})
	return Deps{
		LookPath: func(string) (string, error) {
			if runner.Available() {
				return robocopy.ToolName, nil
			}
			return "", fmt.Errorf("%s not found in PATH", robocopy.ToolName)
		},
		DiskUsage: disk.Usage,
	}
}

// RunPreflight validates that a backup run can start. It returns the first
// fatal problem found; warnings are logged and do not fail the run.
func RunPreflight(cfg *config.Config, logger *logging.Logger, deps Deps) error {
	def := DefaultDeps()
	if deps.LookPath == nil {
		deps.LookPath = def.LookPath
	}
	if deps.DiskUsage == nil {
		deps.DiskUsage = def.DiskUsage
	}

	if !utils.DirExists(cfg.SourceRoot) {
		return fmt.Errorf("profiles root %s does not exist", cfg.SourceRoot)
	}

	if err := utils.EnsureDir(cfg.Destination); err != nil {
		return fmt.Errorf("cannot create destination root %s: %w", cfg.Destination, err)
	}
	if err := probeWritable(cfg.Destination); err != nil {
		return fmt.Errorf("destination root %s is not writable: %w", cfg.Destination, err)
	}

	if _, err := deps.LookPath(robocopy.ToolName); err != nil {
		return fmt.Errorf("copy tool unavailable: %w", err)
	}

	usage, err := deps.DiskUsage(cfg.Destination)
	if err != nil {
		// Network destinations frequently refuse usage queries; that alone
		// is not a reason to abort the run.
		logger.Warning("Cannot query free space on %s: %v", cfg.Destination, err)
		return nil
	}
	if int64(usage.Free) < minFreeBytes {
		return fmt.Errorf("%w: %s free on %s", ErrLowDiskSpace,
			utils.FormatBytes(int64(usage.Free)), cfg.Destination)
	}
	logger.Debug("Destination free space: %s", utils.FormatBytes(int64(usage.Free)))

	return nil
}

func probeWritable(dir string) error {
	probe := filepath.Join(dir, ".profilesave-probe")
	if err := os.WriteFile(probe, []byte("probe"), 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}
