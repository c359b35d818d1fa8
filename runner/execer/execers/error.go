package execers

import (
	"github.com/scootdev/squirm/runner/execer"
)

// ErrExecer fails every Exec with Err, as if the shell could not be started.
type ErrExecer struct {
	Err error
}

func (e *ErrExecer) Exec(command execer.Command) (execer.Process, error) {
	return nil, e.Err
}
