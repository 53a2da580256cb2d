package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mitchellh/ioprogress"
)

// progressThreshold is the minimum file size for which a progress display
// is drawn; small files finish faster than the first redraw.
const progressThreshold = 8 * 1024 * 1024

// copyFile copies a single file preserving its modification time. When
// progress is non-nil and the file is large, a byte-progress line is drawn
// while copying.
func copyFile(src, dst string, progress io.Writer) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	var reader io.Reader = in
	if progress != nil && info.Size() >= progressThreshold {
		reader = &ioprogress.Reader{
			Reader:   in,
			Size:     info.Size(),
			DrawFunc: ioprogress.DrawTerminalf(progress, ioprogress.DrawTextFormatBytes),
		}
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		return fmt.Errorf("copy data: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	// Timestamp preservation is cosmetic; the copy already succeeded.
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}

// copyDir recursively copies a directory tree. Symlinks are skipped; a
// profile tree can contain junctions pointing back into itself.
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target, nil)
	})
}
