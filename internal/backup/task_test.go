package backup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/killo431/profilesave/internal/robocopy"
)

func TestRunOneSoftSuccessOnCopyError(t *testing.T) {
	cfg, dest := newTestConfig(t, "Desktop", "Documents", "Pictures")
	target := makeProfile(t, cfg.SourceRoot, "alice", "Desktop", "Documents", "Pictures")

	failDocuments := func(ctx context.Context, src, dst string, opts robocopy.Options) (robocopy.Outcome, error) {
		if strings.Contains(src, "Documents") {
			return robocopy.Outcome{Class: robocopy.ClassFailure, ExitCode: 8}, nil
		}
		return robocopy.Outcome{Class: robocopy.ClassSuccess, ExitCode: 1, FilesCopied: 1, BytesCopied: 4}, nil
	}

	runner := NewRunner(*cfg, dest, newTestLogger(), Deps{Copy: failDocuments})
	res := runner.RunOne(context.Background(), target)

	if !res.Success {
		t.Fatalf("a copy error must not flip the task to failed: %s", res.Message)
	}
	if res.Stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", res.Stats.Errors)
	}
	if res.Message != "completed with 1 error(s)" {
		t.Errorf("Message = %q", res.Message)
	}
	if res.Stats.FoldersCopied != 2 {
		t.Errorf("FoldersCopied = %d, want 2", res.Stats.FoldersCopied)
	}
}

func TestRunOneCleanRun(t *testing.T) {
	cfg, dest := newTestConfig(t, "Desktop", "Documents")
	target := makeProfile(t, cfg.SourceRoot, "bob", "Desktop", "Documents")

	copyFn := func(ctx context.Context, src, dst string, opts robocopy.Options) (robocopy.Outcome, error) {
		return robocopy.Outcome{Class: robocopy.ClassSuccess, ExitCode: 1, FilesCopied: 3, BytesCopied: 300}, nil
	}

	runner := NewRunner(*cfg, dest, newTestLogger(), Deps{Copy: copyFn})
	res := runner.RunOne(context.Background(), target)

	if !res.Success || res.Message != "completed" {
		t.Fatalf("result = %+v", res)
	}
	if res.Stats.Errors != 0 {
		t.Errorf("Errors = %d, want 0", res.Stats.Errors)
	}
	if res.Stats.FilesCopied != 6 || res.Stats.BytesCopied != 600 {
		t.Errorf("Stats = %+v, want 6 files / 600 bytes", res.Stats)
	}
}

func TestRunOnePartialCountsAsCopied(t *testing.T) {
	cfg, dest := newTestConfig(t, "Documents")
	target := makeProfile(t, cfg.SourceRoot, "carol", "Documents")

	partial := func(ctx context.Context, src, dst string, opts robocopy.Options) (robocopy.Outcome, error) {
		return robocopy.Outcome{Class: robocopy.ClassPartial, ExitCode: 3, FilesCopied: 2, BytesCopied: 20}, nil
	}

	runner := NewRunner(*cfg, dest, newTestLogger(), Deps{Copy: partial})
	res := runner.RunOne(context.Background(), target)

	if !res.Success || res.Stats.Errors != 0 {
		t.Fatalf("partial copies are non-fatal: %+v", res)
	}
	if res.Stats.FoldersCopied != 1 || res.Stats.FilesCopied != 2 {
		t.Errorf("Stats = %+v", res.Stats)
	}
}

func TestRunOneSkipsAbsentSubfolders(t *testing.T) {
	cfg, dest := newTestConfig(t, "Desktop", "Music", "Videos")
	// Profile only has Desktop; Music and Videos must be skipped, not failed.
	target := makeProfile(t, cfg.SourceRoot, "dave", "Desktop")

	var copied []string
	copyFn := func(ctx context.Context, src, dst string, opts robocopy.Options) (robocopy.Outcome, error) {
		copied = append(copied, filepath.Base(src))
		return robocopy.Outcome{Class: robocopy.ClassSuccess}, nil
	}

	runner := NewRunner(*cfg, dest, newTestLogger(), Deps{Copy: copyFn})
	res := runner.RunOne(context.Background(), target)

	if !res.Success || res.Stats.Errors != 0 {
		t.Fatalf("absent subfolders are skips, not errors: %+v", res)
	}
	if len(copied) != 1 || copied[0] != "Desktop" {
		t.Errorf("copied = %v, want [Desktop]", copied)
	}
}

func TestRunOneBacksUpHive(t *testing.T) {
	cfg, dest := newTestConfig(t, "Desktop")
	target := makeProfile(t, cfg.SourceRoot, "erin", "Desktop")
	if err := os.WriteFile(filepath.Join(target.SourceRoot, "NTUSER.DAT"), []byte("hive"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(*cfg, dest, newTestLogger(), Deps{Copy: okCopy})
	res := runner.RunOne(context.Background(), target)
	if !res.Success {
		t.Fatalf("task failed: %s", res.Message)
	}

	bak := filepath.Join(dest, "erin", "ntuser.dat.bak")
	data, err := os.ReadFile(bak)
	if err != nil {
		t.Fatalf("hive backup missing: %v", err)
	}
	if string(data) != "hive" {
		t.Errorf("hive backup content = %q", data)
	}
}

func TestRunOneCollectsMailArchives(t *testing.T) {
	cfg, dest := newTestConfig(t, "Desktop")
	target := makeProfile(t, cfg.SourceRoot, "frank", "Desktop")

	mailDir := filepath.Join(target.SourceRoot, "Documents", "Outlook Files")
	if err := os.MkdirAll(mailDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(mailDir, "archive.pst"), []byte("mail data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(mailDir, "cache.ost"), []byte("derived"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(*cfg, dest, newTestLogger(), Deps{Copy: okCopy})
	res := runner.RunOne(context.Background(), target)
	if !res.Success {
		t.Fatalf("task failed: %s", res.Message)
	}

	outlookDir := filepath.Join(dest, "frank", "Outlook")
	if _, err := os.Stat(filepath.Join(outlookDir, "archive.pst")); err != nil {
		t.Errorf("mail archive not collected: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outlookDir, "cache.ost")); err == nil {
		t.Error("offline cache must never be collected")
	}
}

func TestRunOneSizeFilterCountsSkips(t *testing.T) {
	cfg, dest := newTestConfig(t, "Desktop")
	cfg.SkipLargeFiles = true
	cfg.MaxFileSize = 10

	target := makeProfile(t, cfg.SourceRoot, "grace", "Desktop")
	big := filepath.Join(target.SourceRoot, "huge.pst")
	if err := os.WriteFile(big, []byte("this archive is larger than ten bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(*cfg, dest, newTestLogger(), Deps{Copy: okCopy})
	res := runner.RunOne(context.Background(), target)

	if res.Stats.FilesSkipped != 1 {
		t.Errorf("FilesSkipped = %d, want 1", res.Stats.FilesSkipped)
	}
	if res.Stats.BytesSkipped == 0 {
		t.Error("BytesSkipped should record the skipped archive size")
	}
	if _, err := os.Stat(filepath.Join(dest, "grace", "Outlook", "huge.pst")); err == nil {
		t.Error("oversized archive must not be copied")
	}
}

func TestRunOneWritesInventoryAndSummary(t *testing.T) {
	cfg, dest := newTestConfig(t, "Desktop")
	target := makeProfile(t, cfg.SourceRoot, "heidi", "Desktop")

	hostname := func() (string, error) { return "testhost", nil }
	runner := NewRunner(*cfg, dest, newTestLogger(), Deps{Copy: okCopy, Hostname: hostname})
	res := runner.RunOne(context.Background(), target)
	if !res.Success {
		t.Fatalf("task failed: %s", res.Message)
	}

	destDir := filepath.Join(dest, "heidi")
	if _, err := os.Stat(filepath.Join(destDir, "FileList.txt")); err != nil {
		t.Errorf("inventory missing: %v", err)
	}
	summary, err := os.ReadFile(filepath.Join(destDir, "BackupSummary.txt"))
	if err != nil {
		t.Fatalf("summary missing: %v", err)
	}
	for _, want := range []string{"heidi", "testhost", "USER PROFILE BACKUP SUMMARY"} {
		if !strings.Contains(string(summary), want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestRunOneCopyOptionsReflectConfig(t *testing.T) {
	cfg, dest := newTestConfig(t, "Documents")
	cfg.SkipLargeFiles = true
	cfg.MaxFileSize = 42
	cfg.CopyRetries = 7
	cfg.CopyRetryWait = 3
	cfg.CopyThreads = 16

	target := makeProfile(t, cfg.SourceRoot, "ivan", "Documents")

	var got robocopy.Options
	copyFn := func(ctx context.Context, src, dst string, opts robocopy.Options) (robocopy.Outcome, error) {
		got = opts
		return robocopy.Outcome{Class: robocopy.ClassSuccess}, nil
	}

	runner := NewRunner(*cfg, dest, newTestLogger(), Deps{Copy: copyFn})
	runner.RunOne(context.Background(), target)

	if !got.Recursive || !got.PreserveMeta {
		t.Errorf("Recursive/PreserveMeta not set: %+v", got)
	}
	if got.Retries != 7 || got.RetryWaitSec != 3 || got.Threads != 16 {
		t.Errorf("retry/thread options = %+v", got)
	}
	if got.MaxFileSize != 42 {
		t.Errorf("MaxFileSize = %d, want 42", got.MaxFileSize)
	}
	if got.LogPath == "" || filepath.Base(got.LogPath) != "Documents.log" {
		t.Errorf("LogPath = %q, want per-subfolder log", got.LogPath)
	}
}
