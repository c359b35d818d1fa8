package execer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scootdev/squirm/runner/execer"
	"github.com/scootdev/squirm/runner/execer/execers"
)

func TestRunComplete(t *testing.T) {
	e := execers.NewRecordingExecer(3)
	st, err := execer.Run(context.Background(), e, execer.Command{Argv: []string{"false"}})
	require.NoError(t, err)
	assert.Equal(t, execer.COMPLETE, st.State)
	assert.EqualValues(t, 3, st.ExitCode)
	assert.Equal(t, []string{"false"}, e.Last())
}

func TestRunExecError(t *testing.T) {
	boom := errors.New("no shell")
	st, err := execer.Run(context.Background(), &execers.ErrExecer{Err: boom}, execer.Command{Argv: []string{"true"}})
	assert.Equal(t, boom, err)
	assert.Equal(t, execer.FAILED, st.State)
	assert.Equal(t, "no shell", st.Error)
}

func TestRunCancelAborts(t *testing.T) {
	e := execers.NewHangingExecer()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	st, err := execer.Run(ctx, e, execer.Command{Argv: []string{"sleep", "1000"}})
	assert.Equal(t, context.DeadlineExceeded, err)
	assert.Equal(t, execer.FAILED, st.State)
	assert.Equal(t, 1, e.Aborted())
}

func TestProcessStateString(t *testing.T) {
	assert.Equal(t, "COMPLETE", execer.COMPLETE.String())
	assert.Equal(t, "UNKNOWN", execer.ProcessState(42).String())
	assert.True(t, execer.FAILED.IsDone())
	assert.False(t, execer.RUNNING.IsDone())
	assert.Equal(t, "COMPLETE (exit 2)", execer.ProcessStatus{State: execer.COMPLETE, ExitCode: 2}.String())
}

func TestRunAlreadyCanceled(t *testing.T) {
	e := execers.NewRecordingExecer(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, err := execer.Run(ctx, e, execer.Command{Argv: []string{"true"}})
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, execer.FAILED, st.State)
	assert.Empty(t, e.Commands())
}

// cancelOnExec cancels the run's context from inside Exec and hands back a
// process that has already exited, so Run sees both at once.
type cancelOnExec struct {
	cancel context.CancelFunc
}

func (e *cancelOnExec) Exec(command execer.Command) (execer.Process, error) {
	e.cancel()
	return exited{}, nil
}

type exited struct{}

func (exited) Wait() execer.ProcessStatus  { return execer.ProcessStatus{State: execer.COMPLETE} }
func (exited) Abort() execer.ProcessStatus { return execer.ProcessStatus{State: execer.COMPLETE} }

func TestRunExitedBeforeAbortIsNotAnError(t *testing.T) {
	for i := 0; i < 50; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		st, err := execer.Run(ctx, &cancelOnExec{cancel: cancel}, execer.Command{Argv: []string{"true"}})
		require.NoError(t, err)
		assert.Equal(t, execer.COMPLETE, st.State)
		assert.EqualValues(t, 0, st.ExitCode)
	}
}
