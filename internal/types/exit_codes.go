// Package types defines shared application data types.
package types

// ExitCode represents the application's exit codes.
type ExitCode int

const (
	// ExitSuccess - Execution completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGenericError - Unspecified generic error.
	ExitGenericError ExitCode = 1

	// ExitConfigError - Configuration error.
	ExitConfigError ExitCode = 2

	// ExitPreflightError - Pre-flight validation failed (destination, tooling).
	ExitPreflightError ExitCode = 3

	// ExitNoTargets - No valid backup targets were selected.
	ExitNoTargets ExitCode = 4

	// ExitBackupError - One or more targets failed during the backup run.
	ExitBackupError ExitCode = 5

	// ExitDiskSpaceError - Insufficient disk space on the destination.
	ExitDiskSpaceError ExitCode = 6

	// ExitScheduleError - Invalid schedule expression or scheduler failure.
	ExitScheduleError ExitCode = 7

	// ExitPanicError - Unhandled panic caught.
	ExitPanicError ExitCode = 8
)

// String returns a human-readable description of the exit code.
func (e ExitCode) String() string {
	switch e {
	case ExitSuccess:
		return "success"
	case ExitGenericError:
		return "generic error"
	case ExitConfigError:
		return "configuration error"
	case ExitPreflightError:
		return "preflight error"
	case ExitNoTargets:
		return "no targets selected"
	case ExitBackupError:
		return "backup error"
	case ExitDiskSpaceError:
		return "disk space error"
	case ExitScheduleError:
		return "schedule error"
	case ExitPanicError:
		return "panic error"
	default:
		return "unknown error"
	}
}

// Int returns the exit code as an integer.
func (e ExitCode) Int() int {
	return int(e)
}
