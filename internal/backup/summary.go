package backup

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/killo431/profilesave/pkg/utils"
)

const summaryFileName = "BackupSummary.txt"

// SummaryData carries everything rendered into the per-target summary.
type SummaryData struct {
	User      string
	Host      string
	Date      time.Time
	Stats     Stats
	Folders   []string
	SideItems []string
}

var labelCaser = cases.Title(language.English)

// WriteSummary renders the per-target textual summary report.
func WriteSummary(path string, data SummaryData) error {
	var b strings.Builder
	line := strings.Repeat("=", 50)

	b.WriteString(line + "\n")
	b.WriteString(" USER PROFILE BACKUP SUMMARY\n")
	b.WriteString(line + "\n")
	fmt.Fprintf(&b, "User:           %s\n", data.User)
	fmt.Fprintf(&b, "Host:           %s\n", data.Host)
	fmt.Fprintf(&b, "Date:           %s\n", data.Date.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Folders copied: %d\n", data.Stats.FoldersCopied)
	fmt.Fprintf(&b, "Files copied:   %d\n", data.Stats.FilesCopied)
	fmt.Fprintf(&b, "Bytes copied:   %s (%d bytes)\n",
		utils.FormatBytes(data.Stats.BytesCopied), data.Stats.BytesCopied)
	fmt.Fprintf(&b, "Files skipped:  %d (%s)\n",
		data.Stats.FilesSkipped, utils.FormatBytes(data.Stats.BytesSkipped))
	fmt.Fprintf(&b, "Errors:         %d\n", data.Stats.Errors)

	b.WriteString("\nAttempted folders:\n")
	for _, folder := range data.Folders {
		fmt.Fprintf(&b, "  - %s\n", folder)
	}

	if len(data.SideItems) > 0 {
		b.WriteString("\nAuxiliary data sets:\n")
		for _, item := range data.SideItems {
			fmt.Fprintf(&b, "  - %s\n", labelCaser.String(item))
		}
	}

	b.WriteString("\nNote: errors above are per-folder copy failures; see the\n")
	b.WriteString("run log and the per-folder copy logs for details.\n")
	b.WriteString(line + "\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write summary file: %w", err)
	}
	return nil
}
