package backup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

const (
	mailArchiveExt = ".pst"

	// offlineCacheExt marks Outlook's derived offline cache. Those files are
	// regenerated from the server and are unconditionally skipped, whatever
	// the size policy says.
	offlineCacheExt = ".ost"
)

// MailArchive is one mail archive file found under a profile root.
type MailArchive struct {
	Path string
	Size int64
}

// FindMailArchives walks the profile root looking for mail archive files.
// With skipLarge enabled, files above maxSize are counted in the skipped
// totals instead of being collected; with it disabled they are collected
// regardless of size. Offline cache files are never collected and never
// counted. Walk errors are tolerated: an unreadable subtree simply yields
// no matches from it.
func FindMailArchives(ctx context.Context, root string, skipLarge bool, maxSize int64) (archives []MailArchive, skippedFiles, skippedBytes int64) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if d.IsDir() || d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		switch ext {
		case offlineCacheExt:
			return nil
		case mailArchiveExt:
		default:
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		if skipLarge && maxSize > 0 && info.Size() > maxSize {
			skippedFiles++
			skippedBytes += info.Size()
			return nil
		}

		archives = append(archives, MailArchive{Path: path, Size: info.Size()})
		return nil
	})

	return archives, skippedFiles, skippedBytes
}
