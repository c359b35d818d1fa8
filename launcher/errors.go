package launcher

import (
	"fmt"
	"strings"

	scooterrors "github.com/scootdev/squirm/common/errors"
)

// UnsupportedParameterError is returned, before anything is spawned, when a
// launcher is given a parameter it has no flag for.
type UnsupportedParameterError struct {
	Launcher Type
	Key      Key
}

func (e *UnsupportedParameterError) Error() string {
	return fmt.Sprintf("%s launcher does not support parameter '%s'", e.Launcher, e.Key)
}

// ProcessError is returned when a launched command exits with a nonzero status.
// Failures inside the parallel job are indistinguishable from each other here.
type ProcessError struct {
	ExitCode scooterrors.ExitCode
	Command  string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("execution failed with exit code %d", e.ExitCode)
}

func (e *ProcessError) GetExitCode() scooterrors.ExitCode {
	return e.ExitCode
}

// UnknownLauncherError is returned when a launcher is requested by a name
// outside of Types.
type UnknownLauncherError struct {
	Name string
}

func (e *UnknownLauncherError) Error() string {
	names := make([]string, 0, len(Types))
	for _, t := range Types {
		names = append(names, string(t))
	}
	return fmt.Sprintf("unknown launcher type %q (want one of %s)", e.Name, strings.Join(names, ", "))
}

// NoLauncherFoundError is returned by auto-detection when none of the
// launcher executables is on the search path.
type NoLauncherFoundError struct {
	Searched []string
}

func (e *NoLauncherFoundError) Error() string {
	return fmt.Sprintf("unable to detect a launcher: none of %s found on PATH", strings.Join(e.Searched, ", "))
}
