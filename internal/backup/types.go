// Package backup implements the parallel profile backup run: target
// discovery, the bounded-worker dispatcher, the per-target task and the
// result aggregation.
package backup

import (
	"time"
)

// Target identifies one unit of work: a profile name and its source root.
// Immutable once enqueued.
type Target struct {
	Name       string
	SourceRoot string
}

// Stats is the per-task statistics record.
type Stats struct {
	FoldersCopied int
	FilesCopied   int64
	BytesCopied   int64
	FilesSkipped  int64
	BytesSkipped  int64
	Errors        int
}

// Add folds another stats record into this one.
func (s *Stats) Add(other Stats) {
	s.FoldersCopied += other.FoldersCopied
	s.FilesCopied += other.FilesCopied
	s.BytesCopied += other.BytesCopied
	s.FilesSkipped += other.FilesSkipped
	s.BytesSkipped += other.BytesSkipped
	s.Errors += other.Errors
}

// TaskResult is the single record produced per completed target. It is
// created exactly once, at task completion, and never mutated afterwards.
//
// Success stays true for tasks that completed with per-step errors ("soft
// success"); only a hard failure before any copying starts (missing source
// root, destination cannot be created, unexpected fault) flips it to false.
type TaskResult struct {
	Target   string
	Success  bool
	Message  string
	Duration time.Duration
	Stats    Stats
}

// SideCopy is one best-effort auxiliary data set, keyed by a fixed relative
// source path and a logical label used in logs and reports.
type SideCopy struct {
	Label string
	Rel   string // slash-separated, converted per-platform at use
}

// sideCopies are the known auxiliary data sets collected per profile in
// addition to the configured subfolders. Each is independently best-effort.
var sideCopies = []SideCopy{
	{Label: "chrome bookmarks", Rel: "AppData/Local/Google/Chrome/User Data/Default/Bookmarks"},
	{Label: "edge bookmarks", Rel: "AppData/Local/Microsoft/Edge/User Data/Default/Bookmarks"},
	{Label: "firefox profiles", Rel: "AppData/Roaming/Mozilla/Firefox/Profiles"},
	{Label: "outlook signatures", Rel: "AppData/Roaming/Microsoft/Signatures"},
	{Label: "sticky notes", Rel: "AppData/Local/Packages/Microsoft.MicrosoftStickyNotes_8wekyb3d8bbwe/LocalState"},
}

// SideCopyLabels returns the logical labels of the auxiliary data sets, in
// collection order (used by the summary report).
func SideCopyLabels() []string {
	labels := make([]string, len(sideCopies))
	for i, sc := range sideCopies {
		labels[i] = sc.Label
	}
	return labels
}
