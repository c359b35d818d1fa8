package remote_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scooterrors "github.com/scootdev/squirm/common/errors"
	"github.com/scootdev/squirm/common/stats"
	"github.com/scootdev/squirm/launcher"
	"github.com/scootdev/squirm/remote"
	"github.com/scootdev/squirm/runner/execer/execers"
	"github.com/scootdev/squirm/tests/testhelpers"
)

func testRegistry() *remote.Registry {
	reg := remote.NewRegistry()
	remote.RegisterBuiltins(reg)
	return reg
}

// The test binary doubles as the launched task.
func TestMain(m *testing.M) {
	if handled, code := remote.Serve(testRegistry(), os.Args); handled {
		os.Exit(code)
	}
	os.Exit(m.Run())
}

func TestCallRoundTrip(t *testing.T) {
	testhelpers.InstallFakeLaunchers(t, "mpiexec")

	var stdout bytes.Buffer
	r := remote.NewRunner(launcher.NewBasic(launcher.WithOutput(&stdout, os.Stderr)), testRegistry())
	stat := stats.DefaultStatsReceiver()
	r.Stat = stat
	params := launcher.NewParams(launcher.WithTasks(2))

	args := []interface{}{"hello", 3, 2.5, true, "it's"}
	err := r.Call(context.Background(), "expect", args, map[string]interface{}{"want": args}, params)
	assert.NoError(t, err)

	err = r.Call(context.Background(), "expect", args, map[string]interface{}{"want": []interface{}{"other"}}, params)
	var perr *launcher.ProcessError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, scooterrors.OperationFailureExitCode, perr.ExitCode)

	err = r.Call(context.Background(), "echo", []interface{}{"Hello,", "world!"}, nil, params)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!\nHello, world!\n", stdout.String())
	assert.EqualValues(t, 3, stat.Counter(stats.RemoteCallCounter).Count())
}

func TestCallUnknownOperation(t *testing.T) {
	testhelpers.InstallFakeLaunchers(t, "mpiexec")

	ex := execers.NewRecordingExecer(0)
	r := remote.NewRunner(launcher.NewBasic(launcher.WithExecer(ex)), testRegistry())
	err := r.Call(context.Background(), "nope", nil, nil, launcher.NewParams())
	var unknown *remote.UnknownOperationError
	assert.True(t, errors.As(err, &unknown))
	assert.Empty(t, ex.Commands())

	// Without a local registry the launched side rejects it.
	r = remote.NewRunner(launcher.NewBasic(), nil)
	err = r.Call(context.Background(), "nope", nil, nil, launcher.NewParams())
	var perr *launcher.ProcessError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, scooterrors.UnknownOperationExitCode, perr.ExitCode)
}

func TestCallSerializationFailsBeforeLaunch(t *testing.T) {
	ex := execers.NewRecordingExecer(0)
	stat := stats.DefaultStatsReceiver()
	r := remote.NewRunner(launcher.NewBasic(launcher.WithExecer(ex)), nil)
	r.Stat = stat

	err := r.Call(context.Background(), "echo", []interface{}{func() {}}, nil, launcher.NewParams())
	var serr *remote.SerializationError
	assert.True(t, errors.As(err, &serr))
	assert.Empty(t, ex.Commands())
	assert.EqualValues(t, 1, stat.Counter(stats.RemoteSerializationErrCounter).Count())
}

func TestCallCommandLine(t *testing.T) {
	ex := execers.NewRecordingExecer(0)
	r := remote.NewRunner(launcher.NewLCLSF(launcher.WithExecer(ex)), nil)
	r.Self = []string{"/opt/app"}

	require.NoError(t, r.Call(context.Background(), "echo", []interface{}{"x"}, nil,
		launcher.NewParams(launcher.WithTasks(4))))
	argv := ex.Last()
	require.Len(t, argv, 6)
	assert.Equal(t, []string{"lrun", "-n", "4", "/opt/app", "-c"}, argv[:5])

	code := argv[5][1 : len(argv[5])-1]
	inv, err := remote.DecodeCall(code)
	require.NoError(t, err)
	assert.Equal(t, "echo", inv.Op)
	assert.Equal(t, remote.Args{"x"}, inv.Args)
}

func TestRunCode(t *testing.T) {
	testhelpers.InstallFakeLaunchers(t, "srun")

	var stdout bytes.Buffer
	r := remote.NewRunner(launcher.NewSlurm(launcher.WithOutput(&stdout, os.Stderr)), nil)
	r.Interpreter = []string{"sh"}

	err := r.RunCode(context.Background(), `printf '%s\n' "it's"`, launcher.NewParams(launcher.WithTasks(2)))
	require.NoError(t, err)
	assert.Equal(t, "it's\nit's\n", stdout.String())

	err = r.RunCode(context.Background(), "exit 4", launcher.NewParams())
	var perr *launcher.ProcessError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, scooterrors.ExitCode(4), perr.ExitCode)
}

func TestRunCodeDefaultInterpreter(t *testing.T) {
	ex := execers.NewRecordingExecer(0)
	r := remote.NewRunner(launcher.NewBasic(launcher.WithExecer(ex)), nil)
	require.NoError(t, r.RunCode(context.Background(), "print(1)", launcher.NewParams()))
	assert.Equal(t, []string{"mpiexec", "python3", "-m", "mpi4py", "-c", "'print(1)'"}, ex.Last())
}
