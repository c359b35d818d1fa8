package os

import (
	"os/exec"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	scooterrors "github.com/scootdev/squirm/common/errors"
	"github.com/scootdev/squirm/runner/execer"
)

// Implements runner/execer.Process
type process struct {
	cmd     *exec.Cmd
	setpgid bool
	ats     time.Duration // Abort timeout before SIGKILL

	doneCh chan struct{}
	mutex  sync.Mutex
	result execer.ProcessStatus
}

func newProcess(cmd *exec.Cmd, setpgid bool, ats time.Duration) *process {
	p := &process{cmd: cmd, setpgid: setpgid, ats: ats, doneCh: make(chan struct{})}
	go p.reap()
	return p
}

// reap is the only caller of cmd.Wait.
func (p *process) reap() {
	st := statusFromWait(p.cmd.Wait())
	log.WithFields(
		log.Fields{
			"pid":      p.cmd.Process.Pid,
			"exitCode": st.ExitCode,
			"state":    st.State,
		}).Debug("Process exited")
	p.mutex.Lock()
	p.result = st
	p.mutex.Unlock()
	close(p.doneCh)
}

// Wait for the process to finish.
// If the command finishes without error return the status COMPLETE and exit Code 0.
// If the command fails, and we can get the exit code from the command, return COMPLETE with the failing exit code.
// If the command was killed by a signal, the exit code is the negated signal number.
// If the command fails and we cannot get the exit code from the command, return FAILED and the error
// that prevented getting the exit code.
func (p *process) Wait() execer.ProcessStatus {
	<-p.doneCh
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.result
}

func statusFromWait(err error) (result execer.ProcessStatus) {
	if err == nil {
		result.State = execer.COMPLETE
		result.ExitCode = 0
		return result
	}
	if err, ok := err.(*exec.ExitError); ok {
		// the command returned an error, if we can get a WaitStatus from the error,
		// we can get the commands exit code
		if status, ok := err.Sys().(syscall.WaitStatus); ok {
			result.State = execer.COMPLETE
			if status.Signaled() {
				result.ExitCode = scooterrors.ExitCode(-int(status.Signal()))
			} else {
				result.ExitCode = scooterrors.ExitCode(status.ExitStatus())
			}
			return result
		}
		result.State = execer.FAILED
		result.Error = "Could not find WaitStatus from exiterr.Sys()"
		return result
	}

	result.State = execer.FAILED
	result.Error = err.Error()
	return result
}

// Attempt to SIGTERM the process, allowing for graceful exit.
// SIGKILL after the abort timeout.
func (p *process) Abort() execer.ProcessStatus {
	select {
	case <-p.doneCh:
		return p.Wait()
	default:
	}

	suffix := " (SIGTERM)"
	if err := p.signal(unix.SIGTERM); err != nil {
		log.WithFields(
			log.Fields{
				"pid":   p.cmd.Process.Pid,
				"error": err,
			}).Error("Error aborting command via SIGTERM")
	}

	select {
	case <-p.doneCh:
	case <-time.After(p.ats):
		log.WithFields(
			log.Fields{
				"pid":     p.cmd.Process.Pid,
				"timeout": p.ats,
			}).Info("Command hasn't exited, sending SIGKILL")
		if err := p.signal(unix.SIGKILL); err != nil {
			log.WithFields(
				log.Fields{
					"pid":   p.cmd.Process.Pid,
					"error": err,
				}).Error("Error killing command")
		}
		suffix = " (SIGKILL)"
		<-p.doneCh
	}

	st := p.Wait()
	st.State = execer.FAILED
	st.Error = "Aborted" + suffix
	return st
}

// signal delivers sig to the whole process group when we own one, else to the shell only.
func (p *process) signal(sig unix.Signal) error {
	pid := p.cmd.Process.Pid
	if !p.setpgid {
		return unix.Kill(pid, sig)
	}
	pgid, err := unix.Getpgid(pid)
	if err != nil {
		return err
	}
	return unix.Kill(-pgid, sig)
}
