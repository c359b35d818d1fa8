package cli

import (
	"github.com/spf13/cobra"

	"github.com/scootdev/squirm/remote"
)

type runCmd struct{}

func (c *runCmd) registerFlags() *cobra.Command {
	return &cobra.Command{
		Use:   "run code",
		Short: "run a code string under the configured interpreter in parallel",
		Args:  cobra.ExactArgs(1),
	}
}

func (c *runCmd) run(cl *CLI, cmd *cobra.Command, args []string) error {
	l, err := cl.launcher()
	if err != nil {
		return err
	}
	r := remote.NewRunner(l, cl.registry)
	r.Interpreter = cl.cfg.Interpreter
	r.Stat = cl.stat
	return r.RunCode(cmd.Context(), args[0], cl.params(cmd))
}
