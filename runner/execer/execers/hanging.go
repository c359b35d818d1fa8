package execers

import (
	"sync"

	"github.com/scootdev/squirm/runner/execer"
)

// NewHangingExecer returns an Execer whose processes never exit on their own.
// Wait blocks until Abort is called, after which both report FAILED.
func NewHangingExecer() *HangingExecer {
	return &HangingExecer{}
}

type HangingExecer struct {
	mu      sync.Mutex
	aborted int
}

func (e *HangingExecer) Exec(command execer.Command) (execer.Process, error) {
	return &hangingProcess{parent: e, abortCh: make(chan struct{})}, nil
}

// Aborted reports how many processes were aborted.
func (e *HangingExecer) Aborted() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.aborted
}

type hangingProcess struct {
	parent  *HangingExecer
	once    sync.Once
	abortCh chan struct{}
}

var abortedStatus = execer.ProcessStatus{
	State:    execer.FAILED,
	ExitCode: -1,
	Error:    "Aborted",
}

func (p *hangingProcess) Wait() execer.ProcessStatus {
	<-p.abortCh
	return abortedStatus
}

func (p *hangingProcess) Abort() execer.ProcessStatus {
	p.once.Do(func() {
		p.parent.mu.Lock()
		p.parent.aborted++
		p.parent.mu.Unlock()
		close(p.abortCh)
	})
	return abortedStatus
}
