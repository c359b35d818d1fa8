package cli

import (
	"github.com/spf13/cobra"
)

type execCmd struct{}

func (c *execCmd) registerFlags() *cobra.Command {
	r := &cobra.Command{
		Use:   "exec [flags] -- command [args...]",
		Short: "run a command in parallel",
		Args:  cobra.MinimumNArgs(1),
	}
	r.Flags().SetInterspersed(false)
	return r
}

func (c *execCmd) run(cl *CLI, cmd *cobra.Command, args []string) error {
	l, err := cl.launcher()
	if err != nil {
		return err
	}
	return l.Execute(cmd.Context(), args, cl.params(cmd))
}
