package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scooterrors "github.com/scootdev/squirm/common/errors"
	"github.com/scootdev/squirm/launcher"
	"github.com/scootdev/squirm/remote"
	"github.com/scootdev/squirm/tests/testhelpers"
)

func builtins() *remote.Registry {
	reg := remote.NewRegistry()
	remote.RegisterBuiltins(reg)
	return reg
}

// 'call' launches the test binary itself.
func TestMain(m *testing.M) {
	if handled, code := remote.Serve(builtins(), os.Args); handled {
		os.Exit(code)
	}
	os.Exit(m.Run())
}

func runCLI(t *testing.T, env map[string]string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	c := NewCLI(builtins())
	c.lookup = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	c.SetOutput(&stdout, &stderr)
	c.SetArgs(args)
	err := c.Exec(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestCommand(t *testing.T) {
	out, _, err := runCLI(t, nil, "--launcher", "slurm", "command", "-n", "4", "-N", "2", "--", "echo", "-x", "hi")
	require.NoError(t, err)
	assert.Equal(t, "srun -n 4 -N 2 echo -x hi\n", out)

	out, _, err = runCLI(t, nil, "--launcher", "lclsf", "command", "-g", "0", "hostname")
	require.NoError(t, err)
	assert.Equal(t, "lrun -g 0 hostname\n", out)
}

func TestCommandUnsupported(t *testing.T) {
	_, _, err := runCLI(t, nil, "--launcher", "basic", "command", "-g", "1", "--", "true")
	var unsupported *launcher.UnsupportedParameterError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, launcher.GPUsPerTask, unsupported.Key)
	assert.Equal(t, 1, ExitCode(err))
}

func TestWhich(t *testing.T) {
	testhelpers.IsolateFakeLaunchers(t, "mpiexec", "srun")

	out, _, err := runCLI(t, nil, "which")
	require.NoError(t, err)
	assert.Equal(t, "slurm srun\n", out)

	out, _, err = runCLI(t, map[string]string{launcher.TypeEnvVar: "lclsf"}, "which")
	require.NoError(t, err)
	assert.Equal(t, "lclsf lrun\n", out)

	out, _, err = runCLI(t, map[string]string{launcher.TypeEnvVar: "lclsf"}, "--launcher", "basic", "which")
	require.NoError(t, err)
	assert.Equal(t, "basic mpiexec\n", out)
}

func TestWhichNothingFound(t *testing.T) {
	testhelpers.IsolateFakeLaunchers(t)

	_, _, err := runCLI(t, nil, "which")
	var notFound *launcher.NoLauncherFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, int(scooterrors.ConfigurationFailureExitCode), ExitCode(err))
}

func TestBadConfig(t *testing.T) {
	_, _, err := runCLI(t, nil, "--launcher", "pbs", "which")
	assert.Equal(t, int(scooterrors.ConfigurationFailureExitCode), ExitCode(err))

	_, _, err = runCLI(t, nil, "--log_level", "loud", "which")
	assert.Equal(t, int(scooterrors.ConfigurationFailureExitCode), ExitCode(err))
}

func TestExec(t *testing.T) {
	testhelpers.InstallFakeLaunchers(t, "mpiexec")

	_, _, err := runCLI(t, nil, "--launcher", "basic", "exec", "-n", "2", "--", "true")
	assert.NoError(t, err)

	_, _, err = runCLI(t, nil, "--launcher", "basic", "exec", "-n", "2", "--", "exit", "3")
	var perr *launcher.ProcessError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, ExitCode(err))
}

func TestRun(t *testing.T) {
	testhelpers.InstallFakeLaunchers(t, "srun")
	dir := t.TempDir()
	cfg := dir + "/squirm.yaml"
	require.NoError(t, os.WriteFile(cfg, []byte("interpreter: [sh]\n"), 0644))

	_, _, err := runCLI(t, nil, "--config", cfg, "--launcher", "slurm", "run", "exit 5")
	assert.Equal(t, 5, ExitCode(err))

	_, _, err = runCLI(t, nil, "--config", cfg, "--launcher", "slurm", "run", "test -n \"$SQUIRM_INVOCATION_ID\"")
	assert.NoError(t, err)
}

func TestCall(t *testing.T) {
	testhelpers.InstallFakeLaunchers(t, "mpiexec")

	_, _, err := runCLI(t, nil, "--launcher", "basic", "call", "-n", "2",
		"--kwarg", "want=[hello, 3, true]", "expect", "hello", "3", "true")
	assert.NoError(t, err)

	_, _, err = runCLI(t, nil, "--launcher", "basic", "call",
		"--kwarg", "want=[hello]", "expect", "goodbye")
	assert.Equal(t, int(scooterrors.OperationFailureExitCode), ExitCode(err))

	_, _, err = runCLI(t, nil, "--launcher", "basic", "call", "nope")
	var unknown *remote.UnknownOperationError
	assert.True(t, errors.As(err, &unknown))

	_, _, err = runCLI(t, nil, "--launcher", "basic", "call", "--kwarg", "novalue", "echo")
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	testhelpers.InstallFakeLaunchers(t, "mpiexec")

	_, stderr, err := runCLI(t, nil, "--launcher", "basic", "--stats", "exec", "true")
	require.NoError(t, err)
	assert.Contains(t, stderr, "launcherExecuteCounter")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(&launcher.ProcessError{ExitCode: 2}))
	assert.Equal(t, 143, ExitCode(&launcher.ProcessError{ExitCode: -15}))
	assert.Equal(t, 64, ExitCode(scooterrors.NewError(errors.New("x"), 64)))
	assert.Equal(t, 1, ExitCode(errors.New("x")))
}

func TestExitCodeShellMissing(t *testing.T) {
	cfg := t.TempDir() + "/squirm.yaml"
	require.NoError(t, os.WriteFile(cfg, []byte("shell: /nonexistent/sh\n"), 0644))

	_, _, err := runCLI(t, nil, "--config", cfg, "--launcher", "basic", "exec", "true")
	require.Error(t, err)
	assert.Equal(t, int(scooterrors.CouldNotExecExitCode), ExitCode(err))
}
