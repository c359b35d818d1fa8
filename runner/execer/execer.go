package execer

import (
	"context"
	"fmt"
	"io"

	scooterrors "github.com/scootdev/squirm/common/errors"
)

// Execer lets you run one Unix command. It knows nothing about launchers or
// parameters; it's a way to run a Unix process (or fake it).
// It's at the level of os/exec.

type Command struct {
	Argv []string
	// Added to the parent environment
	EnvVars map[string]string

	// nil discards output
	Stdout io.Writer
	Stderr io.Writer
}

type ProcessState int

const (
	UNKNOWN ProcessState = iota
	RUNNING
	COMPLETE
	FAILED
)

func (s ProcessState) IsDone() bool {
	return s == COMPLETE || s == FAILED
}

func (s ProcessState) String() string {
	switch s {
	case RUNNING:
		return "RUNNING"
	case COMPLETE:
		return "COMPLETE"
	case FAILED:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

type Execer interface {
	Exec(command Command) (Process, error)
}

type Process interface {
	// Blocks until the process exits.
	Wait() ProcessStatus
	// Terminates the process and everything it started, then reports its status.
	Abort() ProcessStatus
}

// ProcessStatus is the result of one process.
// COMPLETE means the process ran and exited with ExitCode (possibly nonzero).
// FAILED means we lost track of it or it was aborted; Error says why.
type ProcessStatus struct {
	State    ProcessState
	ExitCode scooterrors.ExitCode
	Error    string
}

func (s ProcessStatus) String() string {
	if s.Error != "" {
		return fmt.Sprintf("%v (exit %d): %s", s.State, s.ExitCode, s.Error)
	}
	return fmt.Sprintf("%v (exit %d)", s.State, s.ExitCode)
}

// Run execs command and blocks until it exits or ctx is done, whichever comes
// first. If ctx is already done nothing is started. On ctx done the process
// is aborted and ctx.Err() is returned along with the abort status, unless it
// had already exited. The returned error is only non-nil if the process could
// not be started or was aborted; a nonzero exit is reported in the status.
func Run(ctx context.Context, e Execer, command Command) (ProcessStatus, error) {
	if err := ctx.Err(); err != nil {
		return ProcessStatus{State: FAILED, Error: err.Error()}, err
	}
	p, err := e.Exec(command)
	if err != nil {
		return ProcessStatus{State: FAILED, Error: err.Error()}, err
	}

	doneCh := make(chan ProcessStatus, 1)
	go func() {
		doneCh <- p.Wait()
	}()

	select {
	case st := <-doneCh:
		return st, nil
	case <-ctx.Done():
		st := p.Abort()
		if st.State == COMPLETE {
			// Exited on its own before the abort landed.
			return st, nil
		}
		return st, ctx.Err()
	}
}
