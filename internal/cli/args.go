package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/killo431/profilesave/internal/types"
	"github.com/killo431/profilesave/internal/version"
)

const (
	defaultConfigPath   = "./configs/backup.env"
	configSourceDefault = "default path"
	configSourceFlag    = "specified via --config/-c flag"
)

// Args holds the parsed command-line arguments
type Args struct {
	ConfigPath       string
	ConfigPathSource string
	LogLevel         types.LogLevel
	Destination      string
	SourceRoot       string
	Users            string
	Concurrency      int
	SkipLarge        bool
	MaxFileSizeMB    int64
	Archive          bool
	Encrypt          bool
	Schedule         string
	MetricsDir       string
	ForceCLI         bool
	AssumeYes        bool
	NoColor          bool
	ShowVersion      bool
	ShowHelp         bool
}

// Parse parses command-line arguments and returns Args struct
func Parse() *Args {
	args := &Args{}

	configFlag := newStringFlag(defaultConfigPath)

	flag.Var(configFlag, "config", "Path to configuration file")
	flag.Var(configFlag, "c", "Path to configuration file (shorthand)")

	var logLevelStr string
	flag.StringVar(&logLevelStr, "log-level", "",
		"Log level (debug|info|warning|error|critical)")
	flag.StringVar(&logLevelStr, "l", "",
		"Log level (shorthand)")

	flag.StringVar(&args.Destination, "dest", "",
		"Backup destination root (overrides configuration)")
	flag.StringVar(&args.Destination, "d", "",
		"Backup destination root (shorthand)")

	flag.StringVar(&args.SourceRoot, "source-root", "",
		"Profiles root to back up from (overrides configuration)")

	flag.StringVar(&args.Users, "users", "",
		"Comma-separated profile names to back up, or \"all\"")
	flag.StringVar(&args.Users, "u", "",
		"Profiles to back up (shorthand)")

	flag.IntVar(&args.Concurrency, "concurrency", 0,
		"Maximum number of profiles backed up in parallel (0 = configuration default)")

	flag.BoolVar(&args.SkipLarge, "skip-large", false,
		"Skip files larger than the configured size threshold")
	flag.Int64Var(&args.MaxFileSizeMB, "max-file-size-mb", 0,
		"Size threshold in MB used with --skip-large (0 = configuration default)")

	flag.BoolVar(&args.Archive, "archive", false,
		"Create a zip archive of each completed profile backup")
	flag.BoolVar(&args.Encrypt, "encrypt", false,
		"Encrypt per-profile archives with a passphrase (implies --archive)")

	flag.StringVar(&args.Schedule, "schedule", "",
		"Run the backup on a cron schedule instead of once (e.g. \"0 2 * * *\")")

	flag.StringVar(&args.MetricsDir, "metrics-dir", "",
		"Directory for the Prometheus textfile metrics export (empty = disabled)")

	flag.BoolVar(&args.ForceCLI, "cli", false,
		"Use CLI prompts instead of the TUI for interactive target selection")
	flag.BoolVar(&args.AssumeYes, "yes", false,
		"Assume yes on confirmation prompts (non-interactive runs)")
	flag.BoolVar(&args.AssumeYes, "y", false,
		"Assume yes (shorthand)")
	flag.BoolVar(&args.NoColor, "no-color", false,
		"Disable colored console output")

	flag.BoolVar(&args.ShowVersion, "version", false,
		"Show version information")
	flag.BoolVar(&args.ShowVersion, "v", false,
		"Show version information (shorthand)")

	flag.BoolVar(&args.ShowHelp, "help", false,
		"Show help message")
	flag.BoolVar(&args.ShowHelp, "h", false,
		"Show help message (shorthand)")

	flag.Usage = func() {
		printHelp(os.Stderr, os.Args[0])
	}

	flag.Parse()

	args.ConfigPath = configFlag.value
	if configFlag.set {
		args.ConfigPathSource = configSourceFlag
	} else {
		args.ConfigPathSource = configSourceDefault
	}

	if logLevelStr != "" {
		args.LogLevel = ParseLogLevel(logLevelStr)
	} else {
		args.LogLevel = types.LogLevelNone // Will be overridden by config
	}

	return args
}

// ParseLogLevel converts string to LogLevel
func ParseLogLevel(s string) types.LogLevel {
	switch s {
	case "debug", "5":
		return types.LogLevelDebug
	case "info", "4":
		return types.LogLevelInfo
	case "warning", "3":
		return types.LogLevelWarning
	case "error", "2":
		return types.LogLevelError
	case "critical", "1":
		return types.LogLevelCritical
	case "none", "0":
		return types.LogLevelNone
	default:
		return types.LogLevelInfo
	}
}

// ShowHelp displays help message and exits
func ShowHelp() {
	printHelp(os.Stderr, os.Args[0])
	os.Exit(0)
}

// ShowVersion displays version information and exits
func ShowVersion() {
	printVersion(os.Stdout)
	os.Exit(0)
}

func printHelp(w io.Writer, argv0 string) {
	fmt.Fprintf(w, "Usage: %s [options]\n\n", argv0)
	fmt.Fprintln(w, "ProfileSave - parallel user-profile backup")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Options:")
	flag.PrintDefaults()
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintf(w, "  %s --dest \\\\nas\\backups --users alice,bob\n", argv0)
	fmt.Fprintf(w, "  %s --users all --skip-large --max-file-size-mb 512\n", argv0)
	fmt.Fprintf(w, "  %s --schedule \"0 2 * * *\" --users all --yes\n", argv0)
}

func printVersion(w io.Writer) {
	fmt.Fprintln(w, "ProfileSave")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	if version.Commit != "" {
		fmt.Fprintf(w, "Commit: %s\n", version.Commit)
	}
	if version.Date != "" {
		fmt.Fprintf(w, "Built: %s\n", version.Date)
	}
}

type stringFlag struct {
	value string
	set   bool
}

func newStringFlag(defaultValue string) *stringFlag {
	return &stringFlag{value: defaultValue}
}

func (s *stringFlag) String() string {
	return s.value
}

func (s *stringFlag) Set(val string) error {
	s.value = val
	s.set = true
	return nil
}
