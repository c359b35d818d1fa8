package execers

import (
	"sync"

	scooterrors "github.com/scootdev/squirm/common/errors"
	"github.com/scootdev/squirm/runner/execer"
)

// RecordingExecer remembers every command it was asked to run and completes
// each one immediately with ExitCode.
type RecordingExecer struct {
	ExitCode scooterrors.ExitCode

	mu       sync.Mutex
	commands []execer.Command
}

func NewRecordingExecer(exitCode scooterrors.ExitCode) *RecordingExecer {
	return &RecordingExecer{ExitCode: exitCode}
}

func (e *RecordingExecer) Exec(command execer.Command) (execer.Process, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	command.Argv = append([]string(nil), command.Argv...)
	e.commands = append(e.commands, command)
	return &recordedProcess{execer.ProcessStatus{State: execer.COMPLETE, ExitCode: e.ExitCode}}, nil
}

// Commands returns a copy of the commands seen so far, in order.
func (e *RecordingExecer) Commands() []execer.Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]execer.Command(nil), e.commands...)
}

// Last returns the argv of the most recent command, or nil if nothing ran.
func (e *RecordingExecer) Last() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.commands) == 0 {
		return nil
	}
	return e.commands[len(e.commands)-1].Argv
}

type recordedProcess struct {
	status execer.ProcessStatus
}

func (p *recordedProcess) Wait() execer.ProcessStatus  { return p.status }
func (p *recordedProcess) Abort() execer.ProcessStatus { return p.status }
