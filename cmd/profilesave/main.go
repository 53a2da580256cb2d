package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/killo431/profilesave/internal/archive"
	"github.com/killo431/profilesave/internal/backup"
	"github.com/killo431/profilesave/internal/checks"
	"github.com/killo431/profilesave/internal/cli"
	"github.com/killo431/profilesave/internal/config"
	"github.com/killo431/profilesave/internal/input"
	"github.com/killo431/profilesave/internal/logging"
	"github.com/killo431/profilesave/internal/metrics"
	"github.com/killo431/profilesave/internal/schedule"
	"github.com/killo431/profilesave/internal/tui"
	"github.com/killo431/profilesave/internal/types"
	"github.com/killo431/profilesave/internal/version"
	"github.com/killo431/profilesave/pkg/utils"
)

const (
	passphraseEnvVar    = "PROFILESAVE_PASSPHRASE"
	runDirPrefix        = "ProfileBackup"
	bytesPerMegabyte    = int64(1024 * 1024)
	exitCodeInterrupted = 128 + int(syscall.SIGINT)
)

func main() {
	os.Exit(run())
}

var closeStdinOnce sync.Once

func run() int {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(types.ExitPanicError.Int())
		}
	}()

	// Signal handling for graceful shutdown. Closing stdin unblocks any
	// pending interactive prompt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var interrupted atomic.Bool
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived signal %v, initiating graceful shutdown...\n", sig)
		interrupted.Store(true)
		cancel()
		closeStdinOnce.Do(func() {
			if file := os.Stdin; file != nil {
				_ = file.Close()
			}
		})
	}()

	args := cli.Parse()

	if args.ShowVersion {
		cli.ShowVersion()
		return types.ExitSuccess.Int()
	}
	if args.ShowHelp {
		cli.ShowHelp()
		return types.ExitSuccess.Int()
	}

	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return types.ExitConfigError.Int()
	}
	applyFlags(cfg, args)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return types.ExitConfigError.Int()
	}

	useColor := !args.NoColor && term.IsTerminal(int(os.Stdout.Fd()))
	runID := uuid.NewString()[:8]

	logger, logPath, cleanup, err := logging.StartRunLogger(runID, cfg.LogLevel, useColor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot start run logger: %v\n", err)
		return types.ExitGenericError.Int()
	}
	defer cleanup()

	logger.Info("ProfileSave %s starting (run %s, config %s)",
		version.String(), runID, args.ConfigPathSource)
	logger.Debug("Run log: %s", logPath)

	if cfg.Schedule != "" {
		// Scheduled mode never prompts: a tick firing at 02:00 must not
		// block on an operator.
		if args.Users == "" && !args.AssumeYes {
			logger.Error("Scheduled mode requires --users or --yes")
			return types.ExitConfigError.Int()
		}
		passphrase, err := resolvePassphrase(ctx, cfg, true)
		if err != nil {
			logger.Error("Passphrase setup failed: %v", err)
			return types.ExitConfigError.Int()
		}
		err = schedule.Loop(ctx, cfg.Schedule, logger, func(runCtx context.Context) error {
			code := performRun(runCtx, cfg, args, logger, logPath, passphrase)
			if code != types.ExitSuccess {
				return fmt.Errorf("run finished with %s", code)
			}
			return nil
		})
		if err != nil {
			logger.Error("Scheduler failed: %v", err)
			return types.ExitScheduleError.Int()
		}
		if interrupted.Load() {
			return exitCodeInterrupted
		}
		return types.ExitSuccess.Int()
	}

	code := performRun(ctx, cfg, args, logger, logPath, "")
	if interrupted.Load() {
		return exitCodeInterrupted
	}
	return code.Int()
}

// applyFlags overlays command-line overrides onto the loaded configuration.
func applyFlags(cfg *config.Config, args *cli.Args) {
	if args.Destination != "" {
		cfg.Destination = args.Destination
	}
	if args.SourceRoot != "" {
		cfg.SourceRoot = args.SourceRoot
	}
	if args.Concurrency > 0 {
		cfg.Concurrency = args.Concurrency
	}
	if args.SkipLarge {
		cfg.SkipLargeFiles = true
	}
	if args.MaxFileSizeMB > 0 {
		cfg.MaxFileSize = args.MaxFileSizeMB * bytesPerMegabyte
	}
	if args.Archive {
		cfg.ArchiveEnabled = true
	}
	if args.Encrypt {
		cfg.EncryptEnabled = true
	}
	if args.Schedule != "" {
		cfg.Schedule = args.Schedule
	}
	if args.MetricsDir != "" {
		cfg.MetricsDir = args.MetricsDir
	}
	if args.LogLevel != types.LogLevelNone {
		cfg.LogLevel = args.LogLevel
	}
}

// performRun executes one complete backup run: preflight, target selection,
// dispatch, report, optional archiving, metrics export and run-log copy.
func performRun(ctx context.Context, cfg *config.Config, args *cli.Args, logger *logging.Logger, logPath, passphrase string) types.ExitCode {
	startTime := time.Now()

	if err := checks.RunPreflight(cfg, logger, checks.Deps{}); err != nil {
		if errors.Is(err, checks.ErrLowDiskSpace) {
			logger.Error("Preflight failed: %v", err)
			return types.ExitDiskSpaceError
		}
		logger.Error("Preflight failed: %v", err)
		return types.ExitPreflightError
	}

	discovered, err := backup.DiscoverTargets(cfg)
	if err != nil {
		logger.Error("Target discovery failed: %v", err)
		return types.ExitPreflightError
	}
	if len(discovered) == 0 {
		logger.Warning("No profiles found under %s", cfg.SourceRoot)
		return types.ExitNoTargets
	}

	targets, code := selectTargets(ctx, cfg, args, logger, discovered)
	if code != types.ExitSuccess {
		return code
	}

	if cfg.EncryptEnabled && passphrase == "" {
		passphrase, err = resolvePassphrase(ctx, cfg, args.AssumeYes)
		if err != nil {
			if input.IsAborted(err) {
				logger.Warning("Passphrase entry aborted")
				return types.ExitNoTargets
			}
			logger.Error("Passphrase setup failed: %v", err)
			return types.ExitConfigError
		}
	}

	runDir := filepath.Join(cfg.Destination,
		fmt.Sprintf("%s-%s", runDirPrefix, startTime.Format("20060102-150405")))
	if err := utils.EnsureDir(runDir); err != nil {
		logger.Error("Cannot create run directory %s: %v", runDir, err)
		return types.ExitPreflightError
	}
	logger.Info("Backing up %d profile(s) to %s (concurrency %d)",
		len(targets), runDir, cfg.Concurrency)

	runner := backup.NewRunner(*cfg, runDir, logger, backup.Deps{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		runner.SetProgressOutput(os.Stderr)
	}

	var done atomic.Int32
	total := len(targets)
	runner.SetOnComplete(func(res backup.TaskResult) {
		n := done.Add(1)
		if res.Success {
			logger.Success("[%d/%d] %s: %s", n, total, res.Target, res.Message)
		} else {
			logger.Error("[%d/%d] %s: %s", n, total, res.Target, res.Message)
		}
	})

	results := runner.RunAll(ctx, targets)
	summary := backup.Aggregate(results)
	summary.RenderReport(os.Stdout)

	if cfg.ArchiveEnabled {
		archiveTargets(cfg, logger, runDir, summary, passphrase)
	}

	exitCode := summary.ExitCode()

	if cfg.MetricsDir != "" {
		exportMetrics(cfg, logger, summary, exitCode, startTime)
	}

	// The run log uses synchronous writes, so copying it while open still
	// captures every line logged so far.
	if err := logging.CopyRunLog(logPath, runDir); err != nil {
		logger.Warning("Cannot copy run log to destination: %v", err)
	}

	logger.Info("Run finished in %s with %s",
		time.Since(startTime).Round(time.Second), exitCode)
	return exitCode
}

// selectTargets narrows discovered profiles to the run's targets, using
// --users, the TUI, or CLI prompts depending on flags and terminal state.
func selectTargets(ctx context.Context, cfg *config.Config, args *cli.Args, logger *logging.Logger, discovered []backup.Target) ([]backup.Target, types.ExitCode) {
	if args.Users != "" {
		requested := strings.Split(args.Users, ",")
		selected, missing := backup.FilterTargets(discovered, requested)
		for _, name := range missing {
			logger.Warning("Requested profile %q not found, skipping", name)
		}
		if len(selected) == 0 {
			logger.Error("None of the requested profiles exist under %s", cfg.SourceRoot)
			return nil, types.ExitNoTargets
		}
		return selected, types.ExitSuccess
	}

	if args.AssumeYes {
		return discovered, types.ExitSuccess
	}

	interactiveTTY := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	if !args.ForceCLI && interactiveTTY {
		names := make([]string, len(discovered))
		for i, t := range discovered {
			names[i] = t.Name
		}
		picked, err := tui.SelectTargets(names)
		if err != nil {
			if errors.Is(err, tui.ErrSelectionAborted) {
				logger.Warning("Selection cancelled")
				return nil, types.ExitNoTargets
			}
			logger.Warning("TUI unavailable (%v), falling back to CLI prompts", err)
		} else {
			if len(picked) == 0 {
				logger.Warning("No profiles selected")
				return nil, types.ExitNoTargets
			}
			selected, _ := backup.FilterTargets(discovered, picked)
			return selected, types.ExitSuccess
		}
	}

	reader := bufio.NewReader(os.Stdin)
	selected, err := promptSelectTargets(ctx, reader, discovered)
	if err != nil {
		if input.IsAborted(err) {
			logger.Warning("Selection aborted")
			return nil, types.ExitNoTargets
		}
		logger.Error("Selection failed: %v", err)
		return nil, types.ExitNoTargets
	}

	ok, err := promptYesNo(ctx, reader,
		fmt.Sprintf("Back up %d profile(s) to %s?", len(selected), cfg.Destination), true)
	if err != nil || !ok {
		logger.Warning("Backup not confirmed")
		return nil, types.ExitNoTargets
	}
	return selected, types.ExitSuccess
}

// resolvePassphrase returns the archive passphrase from the environment or,
// when interactive prompting is allowed, from the operator.
func resolvePassphrase(ctx context.Context, cfg *config.Config, nonInteractive bool) (string, error) {
	if !cfg.EncryptEnabled {
		return "", nil
	}
	if pass := os.Getenv(passphraseEnvVar); pass != "" {
		return pass, nil
	}
	if nonInteractive {
		return "", fmt.Errorf("encryption enabled but %s is not set", passphraseEnvVar)
	}
	return promptPassphrase(ctx, bufio.NewReader(os.Stdin))
}

// archiveTargets packages each successful target directory into a zip,
// encrypting it when configured. Archiving problems are warnings; the copied
// data is already safe on the destination.
func archiveTargets(cfg *config.Config, logger *logging.Logger, runDir string, summary backup.Summary, passphrase string) {
	for _, res := range summary.PerTarget {
		if !res.Success {
			continue
		}
		targetDir := filepath.Join(runDir, res.Target)
		zipPath, err := archive.Create(targetDir)
		if err != nil {
			logger.Warning("Profile %s: archive failed: %v", res.Target, err)
			continue
		}
		if cfg.EncryptEnabled {
			encPath, err := archive.Encrypt(zipPath, passphrase)
			if err != nil {
				logger.Warning("Profile %s: encryption failed: %v", res.Target, err)
				continue
			}
			logger.Debug("Profile %s: encrypted archive %s", res.Target, encPath)
		} else {
			logger.Debug("Profile %s: archive %s", res.Target, zipPath)
		}
	}
}

// exportMetrics writes the Prometheus textfile export for this run.
func exportMetrics(cfg *config.Config, logger *logging.Logger, summary backup.Summary, code types.ExitCode, startTime time.Time) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	endTime := time.Now()
	m := &metrics.RunMetrics{
		Hostname:      hostname,
		Version:       version.String(),
		StartTime:     startTime,
		EndTime:       endTime,
		Duration:      endTime.Sub(startTime),
		ExitCode:      code.Int(),
		TargetsTotal:  summary.TotalCount,
		TargetsFailed: summary.TotalCount - summary.SuccessCount,
		ErrorCount:    summary.Totals.Errors,
		FilesCopied:   summary.Totals.FilesCopied,
		BytesCopied:   summary.Totals.BytesCopied,
		FilesSkipped:  summary.Totals.FilesSkipped,
		BytesSkipped:  summary.Totals.BytesSkipped,
	}
	exporter := metrics.NewPrometheusExporter(cfg.MetricsDir, logger)
	if err := exporter.Export(m); err != nil {
		logger.Warning("Metrics export failed: %v", err)
	}
}
