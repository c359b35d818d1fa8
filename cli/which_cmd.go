package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type whichCmd struct{}

func (c *whichCmd) registerFlags() *cobra.Command {
	return &cobra.Command{
		Use:   "which",
		Short: "print the launcher that would be used",
		Args:  cobra.NoArgs,
	}
}

func (c *whichCmd) run(cl *CLI, cmd *cobra.Command, args []string) error {
	l, err := cl.launcher()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cl.stdout, "%s %s\n", l.Type(), l.ExecutableName())
	return err
}
