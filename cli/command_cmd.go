package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	osexecer "github.com/scootdev/squirm/runner/execer/os"
)

type commandCmd struct{}

func (c *commandCmd) registerFlags() *cobra.Command {
	r := &cobra.Command{
		Use:   "command [flags] -- command [args...]",
		Short: "print the launch command without running it",
		Args:  cobra.MinimumNArgs(1),
	}
	r.Flags().SetInterspersed(false)
	return r
}

func (c *commandCmd) run(cl *CLI, cmd *cobra.Command, args []string) error {
	l, err := cl.launcher()
	if err != nil {
		return err
	}
	argv, err := l.BuildCommand(args, cl.params(cmd))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cl.stdout, osexecer.CommandLine(argv))
	return err
}
