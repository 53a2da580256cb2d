package backup

import (
	"context"
	"os"

	"github.com/killo431/profilesave/internal/robocopy"
)

// Deps allows injecting the external dependencies of a backup run. Tests
// replace Copy with a fake so no external tool is ever executed.
type Deps struct {
	Copy     func(ctx context.Context, src, dst string, opts robocopy.Options) (robocopy.Outcome, error)
	Hostname func() (string, error)
}

// DefaultDeps returns Deps backed by the real copy tool.
func DefaultDeps() Deps {
	runner := robocopy.NewRunner(robocopy.Deps{})
	return Deps{
		Copy:     runner.Run,
		Hostname: os.Hostname,
	}
}

func (d *Deps) fillDefaults() {
	def := DefaultDeps()
	if d.Copy == nil {
		d.Copy = def.Copy
	}
	if d.Hostname == nil {
		d.Hostname = def.Hostname
	}
}
