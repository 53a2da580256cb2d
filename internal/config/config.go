// Package config loads and validates the process-wide backup configuration.
//
// Configuration comes from an optional env-style file (KEY=value, # comments)
// next to the binary, overridden by command-line flags. The resulting Config
// value is built once before dispatch and treated as read-only afterwards;
// tasks receive it by value and never consult ambient state.
package config

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/killo431/profilesave/internal/types"
	"github.com/killo431/profilesave/pkg/utils"
)

const (
	// DefaultConcurrency bounds how many profiles are backed up in parallel.
	// Chosen empirically to avoid saturating disk I/O on spinning media and
	// small NAS destinations.
	DefaultConcurrency = 4

	// DefaultCopyThreads is the per-copy multi-stream count passed to the
	// copy tool. Total concurrent streams = Concurrency * CopyThreads.
	DefaultCopyThreads = 8

	DefaultCopyRetries  = 2
	DefaultCopyWaitSec  = 5
	bytesPerMegabyte    = int64(1024 * 1024)
	defaultMaxFileSizeM = int64(1024) // 1 GB threshold when --skip-large is on
)

// Config holds the process-wide backup configuration.
type Config struct {
	// SourceRoot is the directory containing the user profiles.
	SourceRoot string

	// Destination is the backup destination root. Each target gets its own
	// subdirectory under a timestamped run directory.
	Destination string

	// Subfolders are the well-known profile subfolders copied per target.
	Subfolders []string

	// ExcludeProfiles are profile directory names never offered as targets.
	ExcludeProfiles []string

	// SkipLargeFiles enables the max-file-size filter.
	SkipLargeFiles bool

	// MaxFileSize is the size-skip threshold in bytes (0 = unlimited).
	// Only honored when SkipLargeFiles is true.
	MaxFileSize int64

	// Concurrency is the maximum number of targets processed in parallel.
	Concurrency int

	// Copy tool tuning.
	CopyThreads   int
	CopyRetries   int
	CopyRetryWait int

	// ArchiveEnabled creates a zip archive per completed target.
	ArchiveEnabled bool

	// EncryptEnabled encrypts per-target archives (implies ArchiveEnabled).
	EncryptEnabled bool

	// Schedule is an optional cron expression for scheduled runs.
	Schedule string

	// MetricsDir is the Prometheus textfile directory ("" = disabled).
	MetricsDir string

	// LogLevel is the run log verbosity.
	LogLevel types.LogLevel
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SourceRoot: defaultSourceRoot(),
		Subfolders: []string{
			"Desktop",
			"Documents",
			"Downloads",
			"Favorites",
			"Pictures",
			"Music",
			"Videos",
		},
		ExcludeProfiles: []string{
			"Public",
			"Default",
			"Default User",
			"All Users",
			"WDAGUtilityAccount",
		},
		SkipLargeFiles: false,
		MaxFileSize:    defaultMaxFileSizeM * bytesPerMegabyte,
		Concurrency:    DefaultConcurrency,
		CopyThreads:    DefaultCopyThreads,
		CopyRetries:    DefaultCopyRetries,
		CopyRetryWait:  DefaultCopyWaitSec,
		LogLevel:       types.LogLevelInfo,
	}
}

func defaultSourceRoot() string {
	if runtime.GOOS == "windows" {
		return `C:\Users`
	}
	return "/home"
}

// Load reads the configuration file at path on top of the defaults.
// A missing file is not an error; the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("open configuration file %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if utils.IsComment(line) {
			continue
		}
		key, value, ok := utils.SplitKeyValue(line)
		if !ok {
			return nil, fmt.Errorf("%s:%d: not a KEY=value line", path, lineNo)
		}
		if err := cfg.applyKey(key, value); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read configuration file %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) applyKey(key, value string) error {
	switch strings.ToUpper(key) {
	case "SOURCE_ROOT":
		c.SourceRoot = value
	case "BACKUP_DEST":
		c.Destination = value
	case "SUBFOLDERS":
		c.Subfolders = splitList(value)
	case "EXCLUDE_PROFILES":
		c.ExcludeProfiles = splitList(value)
	case "SKIP_LARGE_FILES":
		c.SkipLargeFiles = utils.ParseBool(value)
	case "MAX_FILE_SIZE_MB":
		mb, err := strconv.ParseInt(value, 10, 64)
		if err != nil || mb < 0 {
			return fmt.Errorf("invalid MAX_FILE_SIZE_MB %q", value)
		}
		c.MaxFileSize = mb * bytesPerMegabyte
	case "CONCURRENCY":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid CONCURRENCY %q", value)
		}
		c.Concurrency = n
	case "COPY_THREADS":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid COPY_THREADS %q", value)
		}
		c.CopyThreads = n
	case "COPY_RETRIES":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid COPY_RETRIES %q", value)
		}
		c.CopyRetries = n
	case "COPY_RETRY_WAIT_SEC":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid COPY_RETRY_WAIT_SEC %q", value)
		}
		c.CopyRetryWait = n
	case "ARCHIVE_ENABLED":
		c.ArchiveEnabled = utils.ParseBool(value)
	case "ENCRYPT_ENABLED":
		c.EncryptEnabled = utils.ParseBool(value)
	case "SCHEDULE":
		c.Schedule = value
	case "METRICS_DIR":
		c.MetricsDir = value
	case "LOG_LEVEL":
		c.LogLevel = parseLogLevel(value)
	default:
		// Unknown keys are ignored so older binaries tolerate newer files.
	}
	return nil
}

func parseLogLevel(value string) types.LogLevel {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return types.LogLevelDebug
	case "info":
		return types.LogLevelInfo
	case "warning":
		return types.LogLevelWarning
	case "error":
		return types.LogLevelError
	case "critical":
		return types.LogLevelCritical
	default:
		return types.LogLevelInfo
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that the configuration is usable for a backup run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Destination) == "" {
		return fmt.Errorf("no backup destination configured (set BACKUP_DEST or pass --dest)")
	}
	if strings.TrimSpace(c.SourceRoot) == "" {
		return fmt.Errorf("no source root configured")
	}
	if len(c.Subfolders) == 0 {
		return fmt.Errorf("no subfolders configured")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1, got %d", c.Concurrency)
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("max file size must be >= 0, got %d", c.MaxFileSize)
	}
	return nil
}

// Normalize applies derived settings after flags have been merged in.
func (c *Config) Normalize() {
	if c.EncryptEnabled {
		c.ArchiveEnabled = true
	}
	if c.Concurrency < 1 {
		c.Concurrency = DefaultConcurrency
	}
	if c.CopyThreads < 1 {
		c.CopyThreads = DefaultCopyThreads
	}
}

// IsExcludedProfile reports whether a profile directory name is excluded
// from target selection (system profiles, service accounts).
func (c *Config) IsExcludedProfile(name string) bool {
	for _, ex := range c.ExcludeProfiles {
		if strings.EqualFold(ex, name) {
			return true
		}
	}
	return false
}
