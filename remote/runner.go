package remote

import (
	"context"
	"errors"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/scootdev/squirm/common/stats"
	"github.com/scootdev/squirm/launcher"
)

// DefaultInterpreter runs code strings under MPI-aware Python.
var DefaultInterpreter = []string{"python3", "-m", "mpi4py"}

// Runner launches code strings and registered operations in parallel through
// a Launcher. A failure in any task surfaces only as *launcher.ProcessError.
type Runner struct {
	Launcher launcher.Launcher

	// Prefix for RunCode. Defaults to DefaultInterpreter.
	Interpreter []string

	// The binary Call launches, which must Serve the same operations.
	// Defaults to the running executable.
	Self []string

	// If set, Call refuses operations it doesn't contain before launching.
	Registry *Registry

	// Defaults to a nil receiver.
	Stat stats.StatsReceiver
}

func NewRunner(l launcher.Launcher, reg *Registry) *Runner {
	return &Runner{Launcher: l, Registry: reg}
}

// RunCode runs '<interpreter> -c <code>' in every task.
func (r *Runner) RunCode(ctx context.Context, code string, params launcher.Params) error {
	interp := r.Interpreter
	if len(interp) == 0 {
		interp = DefaultInterpreter
	}
	r.stat().Counter(stats.RemoteRunCodeCounter).Inc(1)
	return r.Launcher.Execute(ctx, withCode(interp, code), params)
}

// Call encodes op with its arguments and runs '<self> -c <code>' in every task.
// Serialization problems are reported before anything is launched.
func (r *Runner) Call(ctx context.Context, op string, args []interface{}, kwargs map[string]interface{}, params launcher.Params) error {
	if r.Registry != nil {
		if _, ok := r.Registry.Lookup(op); !ok {
			return &UnknownOperationError{Op: op}
		}
	}
	code, err := EncodeCall(op, args, kwargs)
	if err != nil {
		var serr *SerializationError
		if errors.As(err, &serr) {
			r.stat().Counter(stats.RemoteSerializationErrCounter).Inc(1)
		}
		return err
	}
	self, err := r.self()
	if err != nil {
		return err
	}

	log.WithFields(
		log.Fields{
			"op":       op,
			"launcher": r.Launcher.Type(),
			"params":   params,
		}).Debug("Calling remote operation")
	r.stat().Counter(stats.RemoteCallCounter).Inc(1)
	return r.Launcher.Execute(ctx, withCode(self, code), params)
}

func (r *Runner) self() ([]string, error) {
	if len(r.Self) > 0 {
		return r.Self, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "couldn't locate the running executable")
	}
	return []string{ShellQuote(exe)}, nil
}

func (r *Runner) stat() stats.StatsReceiver {
	if r.Stat == nil {
		return stats.NilStatsReceiver()
	}
	return r.Stat
}

func withCode(prefix []string, code string) []string {
	argv := make([]string, 0, len(prefix)+2)
	argv = append(argv, prefix...)
	return append(argv, "-c", ShellQuote(code))
}

// ShellQuote wraps s in single quotes so the launch shell passes it through
// as one word.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
