package update

import (
	"os"
)

// ExecRestarter re-executes current binary with its original arguments and environment.
// Before is called first, typically to close gateway session.
type ExecRestarter struct {
	Before func()
}

// Restart implementation, returns only on failure
func (r *ExecRestarter) Restart() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	if r.Before != nil {
		r.Before()
	}

	return execSelf(exe, os.Args, os.Environ())
}
