package os

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/scootdev/squirm/runner/execer"
)

const (
	DefaultShell = "/bin/sh"

	// How long an aborted process gets between SIGTERM and SIGKILL
	DefaultAbortTimeout = 10 * time.Second
)

type Option func(*shellExecer)

// WithOwnProcessGroup starts each command as the leader of a new process
// group so Abort reaches everything it spawned. Without it the child shares
// our process group and a signal to the group stops both.
func WithOwnProcessGroup() Option {
	return func(e *shellExecer) { e.setpgid = true }
}

// WithAbortTimeout overrides DefaultAbortTimeout.
func WithAbortTimeout(d time.Duration) Option {
	return func(e *shellExecer) { e.abortTimeout = d }
}

// Implements runner/execer.Execer by handing the joined argv to a shell.
type shellExecer struct {
	shell        string
	setpgid      bool
	abortTimeout time.Duration
}

// NewShellExecer returns an Execer that joins a command's argv with spaces and
// runs it as '<shell> -c <line>', so shell syntax in any token is honored.
// An empty shell means DefaultShell.
func NewShellExecer(shell string, opts ...Option) execer.Execer {
	if shell == "" {
		shell = DefaultShell
	}
	e := &shellExecer{shell: shell, abortTimeout: DefaultAbortTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CommandLine is the string handed to the shell for argv.
func CommandLine(argv []string) string {
	return strings.Join(argv, " ")
}

func (e *shellExecer) Exec(command execer.Command) (execer.Process, error) {
	if len(command.Argv) == 0 {
		return nil, fmt.Errorf("No command specified.")
	}
	line := CommandLine(command.Argv)

	cmd := exec.Command(e.shell, "-c", line)
	cmd.Env = environ(command.EnvVars)
	cmd.Stdout = command.Stdout
	cmd.Stderr = command.Stderr
	if e.setpgid {
		// Sets pgid of all child processes to cmd's pid
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "couldn't start %q with %s", line, e.shell)
	}
	log.WithFields(
		log.Fields{
			"pid":     cmd.Process.Pid,
			"shell":   e.shell,
			"command": line,
		}).Debug("Started process")

	return newProcess(cmd, e.setpgid, e.abortTimeout), nil
}

// Use the parent environment plus whatever additional env vars are provided.
func environ(extra map[string]string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}
