// Package launcher wraps non-submitting parallel launchers (mpiexec, srun,
// lrun) behind one interface. A Launcher translates a launcher-agnostic
// Params into its own flags, refuses parameters it has no flag for, and runs
// the result as a single shell-interpreted child process.
package launcher

import (
	"context"
	"io"
	"os"
	"time"

	uuid "github.com/nu7hatch/gouuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	scooterrors "github.com/scootdev/squirm/common/errors"
	"github.com/scootdev/squirm/common/stats"
	"github.com/scootdev/squirm/runner/execer"
	osexecer "github.com/scootdev/squirm/runner/execer/os"
)

// Exported to every launched command so its output can be correlated with our logs.
const InvocationIDEnvVar = "SQUIRM_INVOCATION_ID"

type Launcher interface {
	Type() Type

	// ExecutableName is the launcher binary, used both as the first token of
	// every command and for probing the search path.
	ExecutableName() string

	// Supports reports whether the launcher has a flag for k.
	Supports(k Key) bool

	// BuildCommand returns the full command line that runs argv under the
	// launcher with params applied. It fails with *UnsupportedParameterError on
	// the first present key, in Keys order, that the launcher can't express.
	// argv is never modified.
	BuildCommand(argv []string, params Params) ([]string, error)

	// Execute builds the command and runs it, blocking until it exits.
	// A nonzero exit is returned as *ProcessError, a failure to spawn as an
	// ExitCodeError carrying CouldNotExecExitCode. Canceling ctx aborts the child.
	Execute(ctx context.Context, argv []string, params Params) error
}

type Option func(*variant)

// WithExecer sets how built commands are run. The default is a shell execer.
func WithExecer(e execer.Execer) Option {
	return func(v *variant) { v.ex = e }
}

// WithStats records launch counters and latencies under the launcher's type.
func WithStats(stat stats.StatsReceiver) Option {
	return func(v *variant) { v.stat = stat }
}

// WithOutput redirects the child's stdout and stderr, which otherwise go to ours.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(v *variant) { v.stdout, v.stderr = stdout, stderr }
}

// flagRule renders one parameter value as launcher flag tokens.
type flagRule func(v int) []string

// variant is the one implementation behind every launcher type; the types
// differ only in executable name and flag table.
type variant struct {
	typ        Type
	executable string
	flags      map[Key]flagRule

	ex     execer.Execer
	stat   stats.StatsReceiver
	stdout io.Writer
	stderr io.Writer
}

func newVariant(typ Type, opts []Option) *variant {
	v := &variant{
		typ:        typ,
		executable: executables[typ],
		flags:      flagTables[typ],
		ex:         osexecer.NewShellExecer(""),
		stat:       stats.NilStatsReceiver(),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.stat = v.stat.Scope(string(typ))
	return v
}

func (v *variant) Type() Type             { return v.typ }
func (v *variant) ExecutableName() string { return v.executable }

func (v *variant) Supports(k Key) bool {
	_, ok := v.flags[k]
	return ok
}

func (v *variant) BuildCommand(argv []string, params Params) ([]string, error) {
	keys := params.Keys()
	for _, k := range keys {
		if !v.Supports(k) {
			v.stat.Counter(stats.LauncherUnsupportedParamCounter).Inc(1)
			return nil, &UnsupportedParameterError{Launcher: v.typ, Key: k}
		}
	}

	cmd := make([]string, 0, 1+2*len(keys)+len(argv))
	cmd = append(cmd, v.executable)
	for _, k := range keys {
		value, _ := params.Get(k)
		cmd = append(cmd, v.flags[k](value)...)
	}
	return append(cmd, argv...), nil
}

func (v *variant) Execute(ctx context.Context, argv []string, params Params) error {
	cmd, err := v.BuildCommand(argv, params)
	if err != nil {
		return err
	}
	line := osexecer.CommandLine(cmd)
	id := newInvocationID()
	logger := log.WithFields(
		log.Fields{
			"launcher":     v.typ,
			"command":      line,
			"invocationID": id,
		})

	logger.Info("Launching command")
	v.stat.Counter(stats.LauncherExecuteCounter).Inc(1)
	defer v.stat.Precision(time.Millisecond).Latency(stats.LauncherExecuteLatency_ms).Time().Stop()

	st, err := execer.Run(ctx, v.ex, execer.Command{
		Argv:    cmd,
		EnvVars: map[string]string{InvocationIDEnvVar: id},
		Stdout:  v.stdout,
		Stderr:  v.stderr,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.WithField("status", st).Info("Launch aborted")
			return errors.Wrapf(ctxErr, "%s launch of %q aborted", v.typ, line)
		}
		v.stat.Counter(stats.LauncherStartErrCounter).Inc(1)
		return scooterrors.NewError(errors.Wrapf(err, "%s couldn't launch %q", v.typ, line), scooterrors.CouldNotExecExitCode)
	}
	if st.State != execer.COMPLETE {
		v.stat.Counter(stats.LauncherStartErrCounter).Inc(1)
		return errors.Errorf("%s launch of %q ended in state %v: %s", v.typ, line, st.State, st.Error)
	}
	if st.ExitCode != 0 {
		v.stat.Counter(stats.LauncherFailureCounter).Inc(1)
		logger.WithField("exitCode", st.ExitCode).Warn("Command failed")
		return &ProcessError{ExitCode: st.ExitCode, Command: line}
	}
	logger.Debug("Command succeeded")
	return nil
}

func newInvocationID() string {
	id, err := uuid.NewV4()
	if err != nil {
		// Only fails if the system's random source does.
		return "unknown"
	}
	return id.String()
}
