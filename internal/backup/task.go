package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/killo431/profilesave/internal/robocopy"
	"github.com/killo431/profilesave/pkg/utils"
)

const (
	hiveFileName    = "NTUSER.DAT"
	hiveBackupName  = "ntuser.dat.bak"
	extrasDirName   = "Extras"
	mailDirName     = "Outlook"
	copyLogsDirName = "logs"
)

// RunOne executes the backup of a single target. Every step after the
// initial validation is best-effort: a failure in one step is logged,
// counted, and never aborts the remaining steps.
func (r *Runner) RunOne(ctx context.Context, target Target) TaskResult {
	start := time.Now()
	var stats Stats

	fail := func(format string, args ...interface{}) TaskResult {
		msg := fmt.Sprintf(format, args...)
		r.log.Error("Profile %s: %s", target.Name, msg)
		return TaskResult{
			Target:   target.Name,
			Success:  false,
			Message:  msg,
			Duration: time.Since(start),
		}
	}

	// Step 1: hard requirement - the source profile must exist.
	if !utils.DirExists(target.SourceRoot) {
		return fail("source root %s does not exist", target.SourceRoot)
	}

	// Step 2: per-target destination (idempotent).
	destDir := filepath.Join(r.destRoot, target.Name)
	if err := utils.EnsureDir(destDir); err != nil {
		return fail("cannot create destination directory %s: %v", destDir, err)
	}

	logsDir := filepath.Join(destDir, copyLogsDirName)
	if err := utils.EnsureDir(logsDir); err != nil {
		r.log.Warning("Profile %s: cannot create copy-log directory: %v", target.Name, err)
		logsDir = ""
	}

	r.log.Step("Profile %s: backup started (%s -> %s)", target.Name, target.SourceRoot, destDir)

	// Step 3: profile hive. Usually locked while the user is logged on, so
	// a failure here is only worth a warning.
	hiveSrc := filepath.Join(target.SourceRoot, hiveFileName)
	if utils.FileExists(hiveSrc) {
		if err := copyFile(hiveSrc, filepath.Join(destDir, hiveBackupName), nil); err != nil {
			r.log.Warning("Profile %s: hive copy failed (hive is locked while the user is logged on): %v", target.Name, err)
		} else {
			r.log.Debug("Profile %s: hive copied", target.Name)
		}
	} else {
		r.log.Skip("Profile %s: no %s in profile root", target.Name, hiveFileName)
	}

	// Step 4: configured subfolders via the copy tool.
	for _, sub := range r.cfg.Subfolders {
		srcSub := filepath.Join(target.SourceRoot, sub)
		if !utils.DirExists(srcSub) {
			r.log.Skip("Profile %s: subfolder %s absent", target.Name, sub)
			continue
		}

		dstSub := filepath.Join(destDir, sub)
		if err := utils.EnsureDir(dstSub); err != nil {
			stats.Errors++
			r.log.Error("Profile %s: cannot create destination subfolder %s: %v", target.Name, sub, err)
			continue
		}

		opts := robocopy.Options{
			Recursive:    true,
			PreserveMeta: true,
			Retries:      r.cfg.CopyRetries,
			RetryWaitSec: r.cfg.CopyRetryWait,
			Threads:      r.cfg.CopyThreads,
		}
		if r.cfg.SkipLargeFiles {
			opts.MaxFileSize = r.cfg.MaxFileSize
		}
		if logsDir != "" {
			opts.LogPath = filepath.Join(logsDir, sub+".log")
		}

		outcome, err := r.deps.Copy(ctx, srcSub, dstSub, opts)
		if err != nil {
			stats.Errors++
			r.log.Error("Profile %s: copy of %s could not run: %v", target.Name, sub, err)
			continue
		}

		switch outcome.Class {
		case robocopy.ClassFailure:
			stats.Errors++
			r.log.Error("Profile %s: copy of %s failed (exit %d)", target.Name, sub, outcome.ExitCode)
		case robocopy.ClassPartial:
			stats.FoldersCopied++
			stats.FilesCopied += outcome.FilesCopied
			stats.BytesCopied += outcome.BytesCopied
			r.log.Warning("Profile %s: copy of %s completed with mismatches or extras (exit %d)", target.Name, sub, outcome.ExitCode)
		default:
			stats.FoldersCopied++
			stats.FilesCopied += outcome.FilesCopied
			stats.BytesCopied += outcome.BytesCopied
			r.log.Debug("Profile %s: copied %s (%d files, %s)", target.Name, sub,
				outcome.FilesCopied, utils.FormatBytes(outcome.BytesCopied))
		}
	}

	// Step 5: known auxiliary data sets, each independently best-effort and
	// log-only on failure.
	extrasDir := filepath.Join(destDir, extrasDirName)
	for _, sc := range sideCopies {
		src := filepath.Join(target.SourceRoot, filepath.FromSlash(sc.Rel))
		info, err := os.Stat(src)
		if err != nil {
			r.log.Debug("Profile %s: %s not present", target.Name, sc.Label)
			continue
		}

		dst := filepath.Join(extrasDir, filepath.Base(src))
		if info.IsDir() {
			err = copyDir(src, dst)
		} else {
			if mkErr := utils.EnsureDir(extrasDir); mkErr != nil {
				err = mkErr
			} else {
				err = copyFile(src, dst, nil)
			}
		}
		if err != nil {
			r.log.Warning("Profile %s: %s copy failed: %v", target.Name, sc.Label, err)
		} else {
			r.log.Debug("Profile %s: %s collected", target.Name, sc.Label)
		}
	}

	// Step 6: mail archive search across the whole profile.
	archives, skippedFiles, skippedBytes := FindMailArchives(ctx, target.SourceRoot, r.cfg.SkipLargeFiles, r.cfg.MaxFileSize)
	stats.FilesSkipped += skippedFiles
	stats.BytesSkipped += skippedBytes
	if len(archives) > 0 {
		mailDir := filepath.Join(destDir, mailDirName)
		if err := utils.EnsureDir(mailDir); err != nil {
			stats.Errors++
			r.log.Error("Profile %s: cannot create %s directory: %v", target.Name, mailDirName, err)
		} else {
			for _, arch := range archives {
				dst := filepath.Join(mailDir, filepath.Base(arch.Path))
				if err := copyFile(arch.Path, dst, r.progressSink()); err != nil {
					stats.Errors++
					r.log.Error("Profile %s: mail archive %s copy failed: %v", target.Name, filepath.Base(arch.Path), err)
					continue
				}
				stats.FilesCopied++
				stats.BytesCopied += arch.Size
				r.log.Debug("Profile %s: mail archive %s copied (%s)", target.Name,
					filepath.Base(arch.Path), utils.FormatBytes(arch.Size))
			}
		}
	}

	// Step 7: file inventory and summary report. Cosmetic failures only.
	host := r.hostname()
	if err := WriteInventory(destDir, filepath.Join(destDir, inventoryFileName)); err != nil {
		r.log.Warning("Profile %s: inventory write failed: %v", target.Name, err)
	}
	summary := SummaryData{
		User:      target.Name,
		Host:      host,
		Date:      time.Now(),
		Stats:     stats,
		Folders:   r.cfg.Subfolders,
		SideItems: SideCopyLabels(),
	}
	if err := WriteSummary(filepath.Join(destDir, summaryFileName), summary); err != nil {
		r.log.Warning("Profile %s: summary write failed: %v", target.Name, err)
	}

	// Step 8: result. Per preserved behavior a task with per-step errors is
	// still reported as successful; the error count is surfaced in the
	// message and in the run log instead.
	duration := time.Since(start)
	message := "completed"
	if stats.Errors > 0 {
		message = fmt.Sprintf("completed with %d error(s)", stats.Errors)
		r.log.Warning("Profile %s: %s in %s", target.Name, message, duration.Round(time.Millisecond))
	} else {
		r.log.Success("Profile %s: completed in %s (%d folders, %d files, %s)",
			target.Name, duration.Round(time.Millisecond),
			stats.FoldersCopied, stats.FilesCopied, utils.FormatBytes(stats.BytesCopied))
	}

	return TaskResult{
		Target:   target.Name,
		Success:  true,
		Message:  message,
		Duration: duration,
		Stats:    stats,
	}
}

func (r *Runner) hostname() string {
	host, err := r.deps.Hostname()
	if err != nil || host == "" {
		return "unknown-host"
	}
	return host
}
