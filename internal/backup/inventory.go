package backup

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const inventoryFileName = "FileList.txt"

// WriteInventory writes the file inventory of the backed-up tree: one
// "path;size;last-write-time" line per file, sorted by path. The inventory
// file itself and the copy-tool logs are not listed.
func WriteInventory(root, outPath string) error {
	type entry struct {
		rel  string
		size int64
		mod  time.Time
	}

	var entries []entry
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == copyLogsDirName && filepath.Dir(path) == root {
				return filepath.SkipDir
			}
			return nil
		}
		if path == outPath {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		entries = append(entries, entry{
			rel:  filepath.ToSlash(rel),
			size: info.Size(),
			mod:  info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk backup tree: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })

	f, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create inventory file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range entries {
		fmt.Fprintf(w, "%s;%d;%s\n", e.rel, e.size, e.mod.Format(time.RFC3339))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write inventory file: %w", err)
	}
	return nil
}
